package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/lang"
)

// Keys lists the keys of a key.
type Keys struct {
	Path string `arg:"" help:"Dotted key path (default: root)." optional:""`
}

// Run executes the keys command.
func (k *Keys) Run(ctx context.Context) error {
	eng, err := open(ctx)
	if err != nil {
		return err
	}

	if err := navigate(eng, k.Path); err != nil {
		return err
	}

	return writeLines(outputFrom(ctx), eng.Keys())
}

// Text prints the interpolated text of a key.
type Text struct {
	Join bool `help:"Print all words on one line, quoted where needed." short:"j"`

	Path string `arg:"" help:"Dotted key path (default: root)." optional:""`
}

// Run executes the text command.
func (t *Text) Run(ctx context.Context) error {
	eng, err := open(ctx)
	if err != nil {
		return err
	}

	if err := navigate(eng, t.Path); err != nil {
		return err
	}

	words := eng.Text()
	if t.Join {
		return writeLines(outputFrom(ctx), []string{lang.JoinWords(words)})
	}

	return writeLines(outputFrom(ctx), words)
}

// Origin prints where a key was declared.
type Origin struct {
	Path string `arg:"" help:"Dotted key path."`
}

// injectedOrigin is printed for keys without a textual origin.
const injectedOrigin = "-"

// Run executes the origin command.
func (o *Origin) Run(ctx context.Context) error {
	eng, err := open(ctx)
	if err != nil {
		return err
	}

	parent, key := splitPath(o.Path)
	if err := navigate(eng, parent); err != nil {
		return err
	}

	if !eng.HasKey(key, true) {
		return ErrUnknownKey.With(slog.String("key", o.Path))
	}

	origin := eng.KeyOrigin(key)
	if origin == "" {
		origin = injectedOrigin
	}

	return writeLines(outputFrom(ctx), []string{origin})
}

// Dump prints the resolved tree below a key.
type Dump struct {
	Format engine.DumpFormat `default:"json" help:"Output format (json, yaml)." short:"F"`
	Indent int               `default:"2"    help:"Indent width, 0 for compact JSON." short:"i"`

	Path string `arg:"" help:"Dotted key path (default: root)." optional:""`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	eng, err := open(ctx)
	if err != nil {
		return err
	}

	if err := navigate(eng, d.Path); err != nil {
		return err
	}

	return eng.Dump(outputFrom(ctx), d.Format, d.Indent)
}

// Check resolves every key of the script and reports all diagnostics.
type Check struct{}

// Run executes the check command.
func (*Check) Run(ctx context.Context) error {
	eng, err := open(ctx)
	if err != nil {
		return err
	}

	if !eng.Check() {
		return ErrDiagnostics.With(
			slog.String("file", eng.File()),
			slog.Int("count", eng.Diagnostics()),
		)
	}

	return nil
}

func writeLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")

	return err
}
