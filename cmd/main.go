package main

import (
	"flag"
	"fmt"
	"os"

	"halva/internal/logger"
	"halva/internal/runner"
	"halva/pkg/color"
	"halva/pkg/interpreter"

	"github.com/charmbracelet/log"
)

// Main entry point for the Halva interpreter.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.StringVar(&options.SourceFile, "s", "", "Program document (XML); defaults to stdin")
	flag.StringVar(&options.InputFile, "i", "", "Input for the interpreted program; defaults to stdin")

	flag.Parse()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options]\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if flag.NArg() > 0 {
		log.Error("Unexpected arguments", "args", flag.Args())
		os.Exit(interpreter.ErrUsage.Code())
	}

	exitCode, err := options.Run()
	if err != nil {
		log.Error("Execution failed", "error", err)
		os.Exit(interpreter.CodeOf(err))
	}

	os.Exit(exitCode)
}
