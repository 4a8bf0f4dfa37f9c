package cmd

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/mare/engine"
)

type diagnosticsKey struct{}

// WithDiagnostics returns a new context.Context whose commands print
// script diagnostics to w instead of os.Stderr.
func WithDiagnostics(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, diagnosticsKey{}, w)
}

func diagnosticsFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(diagnosticsKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stderr
}

// printer is an [engine.Sink] writing one line per diagnostic, styled when
// w is a terminal.
type printer struct {
	w        io.Writer
	location lipgloss.Style
	message  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)

	return &printer{
		w:        w,
		location: r.NewStyle().Bold(true),
		message:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Diagnose implements [engine.Sink].
func (p *printer) Diagnose(d engine.Diagnostic) {
	_, _ = io.WriteString(p.w, p.format(d)+"\n")
}

func (p *printer) format(d engine.Diagnostic) string {
	loc := d.File
	if d.Line > 0 {
		loc += ":" + strconv.Itoa(d.Line)
	}

	if loc == "" {
		return p.message.Render(d.Message)
	}

	return p.location.Render(loc+":") + " " + p.message.Render(d.Message)
}
