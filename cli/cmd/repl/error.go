package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds    = errors.New("index out of range")
	ErrUnknownKey     = errors.New("unknown key")
	ErrUnknownCommand = errors.New("unknown command (try 'help')")
	ErrMissingArg     = errors.New("missing argument")
)
