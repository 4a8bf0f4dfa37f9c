package cmd

import (
	"cmp"
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/lang"
	"github.com/ardnew/mare/log"
	"github.com/ardnew/mare/pkg"
)

// open loads the script described by ctx, printing diagnostics as they are
// found. See [openWith].
func open(ctx context.Context) (*engine.Engine, error) {
	return openWith(ctx, newPrinter(diagnosticsFrom(ctx)))
}

// openWith loads the script described by ctx and injects the builtin keys,
// then the user's default and command-line keys, at the root. Diagnostics
// go to sink.
func openWith(ctx context.Context, sink engine.Sink) (*engine.Engine, error) {
	s := scriptFrom(ctx)
	file := cmp.Or(s.File, pkg.Script)

	eng := engine.New(
		sink,
		engine.WithLogger(log.Default()),
		engine.WithParseOptions(lang.WithLogger(log.Default())),
	)

	if !eng.Load(ctx, file) {
		return nil, ErrLoad.With(
			slog.String("file", file),
			slog.Int("diagnostics", eng.Diagnostics()),
		)
	}

	eng.EnterRootKey()
	eng.AddDefaultValue("host", runtime.GOOS)
	eng.AddDefaultValue("arch", runtime.GOARCH)
	eng.AddDefaultValue("mareDir", lang.JoinWords([]string{eng.MareDir()}))

	for _, def := range s.Default {
		if err := inject(eng, def, eng.AddDefaultValue); err != nil {
			return nil, err
		}
	}

	for _, def := range s.Define {
		if err := inject(eng, def, eng.AddCommandLineKey); err != nil {
			return nil, err
		}
	}

	log.DebugContext(ctx, "script ready",
		slog.String("file", file),
		slog.Int("defaults", len(s.Default)),
		slog.Int("defines", len(s.Define)),
	)

	return eng, nil
}

// inject adds the "key=value" pair def with add. A dotted key such as
// "a.b=v" adds b to the key a, creating a if needed. A missing "=" adds
// an empty key.
func inject(eng *engine.Engine, def string, add func(key, value string)) error {
	key, value, _ := strings.Cut(def, "=")

	path := strings.Split(key, ".")
	if slices.Contains(path, "") {
		return ErrBadDefine.With(slog.String("define", def))
	}

	eng.EnterRootKey()
	defer eng.EnterRootKey()

	for _, name := range path[:len(path)-1] {
		eng.EnterNewKey(name)
	}

	add(path[len(path)-1], value)

	return nil
}

// navigate moves the cursor of eng to the dotted key path, starting from
// the root. The empty path and "." name the root.
func navigate(eng *engine.Engine, path string) error {
	eng.EnterRootKey()

	if path == "" || path == "." {
		return nil
	}

	for _, key := range strings.Split(path, ".") {
		if !eng.EnterKey(key, true) {
			return ErrUnknownKey.With(slog.String("key", path))
		}
	}

	return nil
}

// splitPath splits a dotted key path into its parent path and last key.
func splitPath(path string) (parent, key string) {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i], path[i+1:]
	}

	return "", path
}
