package cmd

import (
	"context"
	"path/filepath"

	"github.com/ardnew/mare/cli/cmd/repl"
	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/log"
)

// historyFile is the REPL history file name in the cache directory.
const historyFile = "history.utf8"

// Repl browses the keys of the script interactively.
type Repl struct {
	NoHistory bool `help:"Do not read or save command history."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	diags := new(engine.Collector)

	eng, err := openWith(ctx, diags)
	if err != nil {
		p := newPrinter(diagnosticsFrom(ctx))
		for _, d := range diags.Diagnostics() {
			p.Diagnose(d)
		}

		return err
	}

	return repl.Run(ctx, eng, diags, r.historyPath(ctx), log.Default())
}

func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	dir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok || dir == "" {
		return ""
	}

	return filepath.Join(dir, historyFile)
}
