package stack

// Stack is a small LIFO used for local frames, return addresses, and the
// data stack.
type Stack[T any] struct {
	a []T
}

// New creates a stack, optionally seeded bottom-to-top with elm.
func New[T any](elm ...T) *Stack[T] {
	return &Stack[T]{a: append([]T(nil), elm...)}
}

// Push adds an element to the top of the stack.
func (s *Stack[T]) Push(v T) {
	s.a = append(s.a, v)
}

// Pop removes and returns the top element; ok is false on an empty stack.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.a) == 0 {
		return zero, false
	}

	v := s.a[len(s.a)-1]
	s.a = s.a[:len(s.a)-1]
	return v, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.a) == 0 {
		return zero, false
	}

	return s.a[len(s.a)-1], true
}

// Size returns the number of stacked elements.
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Items returns the underlying elements, bottom first.
func (s *Stack[T]) Items() []T {
	return s.a
}
