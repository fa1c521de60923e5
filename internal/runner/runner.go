package runner

import (
	"fmt"
	"io"
	"os"

	"halva/pkg/code"
	"halva/pkg/color"
	"halva/pkg/interpreter"
	"halva/pkg/loader"

	"github.com/charmbracelet/log"
)

type Runner struct {
	Help       bool   // Show help message
	Verbose    bool   // Enable verbose output
	NoColor    bool   // Disable colored output
	SourceFile string // Path to the program document (empty = stdin)
	InputFile  string // Path to the interpreted program's input (empty = stdin)
}

// Run loads the program document, builds the interpreter, and executes it.
// The returned int is the process exit code for the non-error paths: 0 when
// the program fell off the end, or the EXIT-supplied code.
func (opts *Runner) Run() (int, error) {
	if opts.SourceFile == "" && opts.InputFile == "" {
		return 0, interpreter.Errorf(interpreter.ErrUsage,
			"at least one of the source and input files must be given, the other defaults to stdin")
	}

	source, err := openOrStdin(opts.SourceFile)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	input, err := openOrStdin(opts.InputFile)
	if err != nil {
		return 0, err
	}
	defer input.Close()

	log.Info("Loading program", "source", displayName(opts.SourceFile))

	instrs, err := loader.Load(source)
	if err != nil {
		return 0, err
	}

	it, err := interpreter.New(instrs, interpreter.WithInput(input))
	if err != nil {
		return 0, err
	}

	log.Info("Program loaded", "instructions", len(it.Program()))

	if opts.Verbose {
		listProgram(it.Program())
	}

	return it.Run()
}

// openOrStdin opens path for reading, falling back to stdin for the empty
// path.
func openOrStdin(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, interpreter.Errorf(interpreter.ErrInputOpen, "cannot open %s: %v", path, err)
	}

	return f, nil
}

func displayName(path string) string {
	if path == "" {
		return "<stdin>"
	}

	return path
}

// listProgram prints the sorted instruction sequence to stderr, colored the
// same way as the rest of the diagnostics.
func listProgram(instrs []code.Instruction) {
	fmt.Fprintln(os.Stderr, color.GreenText("=== Loaded Program ==="))
	for i, in := range instrs {
		args := ""
		for _, a := range in.Args {
			args += " " + color.BlueText(a.String())
		}

		fmt.Fprintf(os.Stderr, "%s: %s%s\n",
			color.CyanText(fmt.Sprintf("%d", i)),
			color.YellowText(string(in.Opcode)),
			args)
	}
}
