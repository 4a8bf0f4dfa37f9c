package engine

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// ErrCondition is a kind of ErrResolution: errors.Is reports true for both.
var (
	ErrLoad       = NewError("load failed")
	ErrResolution = NewError("unresolved key")
	ErrCycle      = NewError("recursive reference")
	ErrContract   = NewError("scope stack misuse")
	ErrCondition  = ErrResolution.kindOf("condition failed")
)

// Error represents an error with structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	kind  *Error // sentinel this error was derived from
	root  bool
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg, root: true}
}

// kindOf returns a new sentinel that also matches e.
func (e *Error) kindOf(msg string) *Error {
	return &Error{msg: msg, kind: e, root: true}
}

func (e *Error) derive() *Error {
	c := *e
	if e.root {
		c.kind = e
		c.root = false
	}

	return &c
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	}

	return e.msg + ": " + e.err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for k := e; k != nil; k = k.kind {
		if k == t {
			return true
		}
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// Wrapf returns a copy of e wrapping a new error with the given message
// parts joined by spaces.
func (e *Error) Wrapf(parts ...string) *Error {
	return e.Wrap(errors.New(strings.Join(parts, " ")))
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.derive()
	c.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return c
}
