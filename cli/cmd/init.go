package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mare/lang"
	"github.com/ardnew/mare/log"
	"github.com/ardnew/mare/profile"
)

// Init generates a configuration file with the current flag values.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	err = lang.Format(ctx, file, configBlock(ktx), lang.DefaultIndent)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configBlock returns a script declaring [ConfigKey] with one key per flag
// that has a value, in the order the flags are defined.
func configBlock(ktx *kong.Context) *lang.Block {
	ignore := []string{"help", "version", "force", profile.Tag}

	var body []lang.Statement

	for _, flag := range ktx.Flags() {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		words := flagWords(ktx.FlagValue(flag))
		if len(words) == 0 {
			continue
		}

		value := &lang.Block{Statements: make([]lang.Statement, len(words))}
		for j, w := range words {
			value.Statements[j] = &lang.Word{Text: w}
		}

		body = append(body, &lang.Assign{Name: flag.Name, Value: value})
	}

	return &lang.Block{Statements: []lang.Statement{
		&lang.Assign{Name: ConfigKey, Value: &lang.Block{Statements: body}},
	}}
}

// flagWords returns the words of a flag value, or nil if it is unset.
func flagWords(val any) []string {
	switch v := val.(type) {
	case nil:
		return nil

	case bool:
		return []string{strconv.FormatBool(v)}

	case string:
		if v == "" {
			return nil
		}

		return []string{v}

	case []string:
		return v

	case fmt.Stringer:
		if s := v.String(); s != "" {
			return []string{s}
		}

		return nil

	default:
		return []string{fmt.Sprint(v)}
	}
}
