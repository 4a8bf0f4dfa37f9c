package engine

// Stack is a last-in first-out stack of saved scope positions. Every Push
// must be matched by a Pop in reverse order; popping an empty Stack is a
// programming error and panics with [ErrContract].
type Stack[T any] struct {
	items []T
}

// Push saves v.
func (s *Stack[T]) Push(v T) { s.items = append(s.items, v) }

// Pop removes and returns the most recently pushed value.
func (s *Stack[T]) Pop() T {
	n := len(s.items)
	if n == 0 {
		panic(ErrContract.Wrapf("pop from empty stack"))
	}

	v := s.items[n-1]

	var zero T

	s.items[n-1] = zero
	s.items = s.items[:n-1]

	return v
}

// Peek returns the most recently pushed value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T

		return zero, false
	}

	return s.items[len(s.items)-1], true
}

// Depth returns the number of values on the stack.
func (s *Stack[T]) Depth() int { return len(s.items) }
