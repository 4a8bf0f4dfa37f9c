package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/lang"
	"github.com/ardnew/mare/log"
)

// resolve returns a [kong.ConfigurationLoader] for the configuration file
// at path, written as a Marefile. Flag values are the keys of key:
//
//	config = {
//	  log-level = debug
//	  log-pretty = false
//	  define = "os=linux" "cc=gcc"
//	}
//
// The text of each key is its value; slice flags take every word, other
// flags take the words joined by spaces. Keys may spell hyphens in flag
// names as underscores. Conditions, inheritance and interpolation work as
// in any Marefile. Command-line flags override config file values.
//
// Diagnostics in the file are logged and never fail the command.
func resolve(
	ctx context.Context,
	path, key string,
) func(r io.Reader) (kong.Resolver, error) {
	sink := engine.SinkFunc(func(d engine.Diagnostic) {
		log.WarnContext(ctx, "config", slog.Any("diagnostic", d))
	})

	return func(r io.Reader) (kong.Resolver, error) {
		return loadConfig(ctx, sink, path, key, r), nil
	}
}

// loadConfig reads the keys of key from the Marefile r, reporting
// diagnostics to sink. A file that fails to load yields no keys.
func loadConfig(
	ctx context.Context,
	sink engine.Sink,
	path, key string,
	r io.Reader,
) config {
	eng := engine.New(sink,
		engine.WithLogger(log.Default()),
		engine.WithParseOptions(lang.WithLogger(log.Default())),
	)

	if !eng.LoadReader(ctx, path, r) || !eng.EnterKey(key, false) {
		return config{}
	}

	cfg := make(config)

	for _, name := range eng.Keys() {
		if text, ok := eng.TextOf(name, true); ok {
			cfg[name] = text
		}
	}

	return cfg
}

// config implements [kong.Resolver] with the words of each key.
type config map[string][]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	words, ok := c[flag.Name]
	if !ok {
		words, ok = c[strings.ReplaceAll(flag.Name, "-", "_")]
	}

	if !ok {
		return nil, nil //nolint:nilnil
	}

	if flag.IsSlice() {
		values := make([]any, len(words))
		for i, w := range words {
			values[i] = w
		}

		return values, nil
	}

	if len(words) == 0 && flag.IsBool() {
		return true, nil
	}

	return strings.Join(words, " "), nil
}
