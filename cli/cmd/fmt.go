package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/mare/lang"
	"github.com/ardnew/mare/log"
)

// stdinSource names standard input as a source.
const stdinSource = "-"

// Fmt rewrites a Marefile in canonical form.
type Fmt struct {
	Indent int  `default:"2" help:"Indent width for nested blocks." short:"i"`
	Write  bool `help:"Write the result to the source file instead of stdout." short:"w"`

	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	name, r := f.Source, io.Reader(os.Stdin)

	if f.Source == stdinSource {
		name = ""
	} else {
		file, err := os.Open(f.Source)
		if err != nil {
			return ErrFormat.Wrap(err).With(slog.String("source", f.Source))
		}
		defer file.Close()

		r = file
	}

	block, err := lang.ParseReader(ctx, name, r,
		lang.WithoutIncludes(),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return ErrFormat.Wrap(err).With(slog.String("source", f.Source))
	}

	var buf bytes.Buffer

	if err := lang.Format(ctx, &buf, block, f.Indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("source", f.Source))
	}

	if !f.Write || f.Source == stdinSource {
		_, err = buf.WriteTo(outputFrom(ctx))

		return err
	}

	info, err := os.Stat(f.Source)
	if err != nil {
		return ErrFormat.Wrap(err).With(slog.String("source", f.Source))
	}

	err = os.WriteFile(f.Source, buf.Bytes(), info.Mode().Perm())
	if err != nil {
		return ErrFormat.Wrap(err).With(slog.String("source", f.Source))
	}

	log.DebugContext(ctx, "formatted", slog.String("source", f.Source))

	return nil
}
