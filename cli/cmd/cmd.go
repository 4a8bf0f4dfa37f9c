package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	scriptKey  struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Script describes the Marefile a command operates on and the keys
// injected around it.
type Script struct {
	// File is the path of the Marefile.
	File string
	// Define lists "key=value" pairs injected with command-line precedence.
	Define []string
	// Default lists "key=value" pairs injected with default precedence.
	Default []string
}

// WithScript returns a new context.Context containing s.
func WithScript(ctx context.Context, s Script) context.Context {
	return context.WithValue(ctx, scriptKey{}, s)
}

func scriptFrom(ctx context.Context) Script {
	s, _ := ctx.Value(scriptKey{}).(Script)

	return s
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}
