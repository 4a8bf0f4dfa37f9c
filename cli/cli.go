package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mare/cli/cmd"
	"github.com/ardnew/mare/pkg"
)

// CLI is the top-level command-line interface for mare.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit."`

	File    string   `default:"${script}" help:"Marefile to load."                                   short:"f" type:"path"`
	Define  []string `help:"Add key=value with command-line precedence (dotted keys allowed)." placeholder:"KEY=VALUE" sep:"none" short:"D"`
	Default []string `help:"Add key=value with default precedence (dotted keys allowed)."      placeholder:"KEY=VALUE" sep:"none"`

	Keys   cmd.Keys   `cmd:"" default:"withargs" help:"List the keys of a key."`
	Text   cmd.Text   `cmd:""                    help:"Print the interpolated text of a key."`
	Origin cmd.Origin `cmd:""                    help:"Print where a key was declared."`
	Dump   cmd.Dump   `cmd:""                    help:"Print the resolved tree below a key."`
	Check  cmd.Check  `cmd:""                    help:"Resolve every key and report all diagnostics."`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a Marefile."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
	Repl   cmd.Repl   `cmd:""                    help:"Browse keys interactively."`
}

// Run executes the mare CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"script":             pkg.Script,
		"version":            pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags apply before parsing, wherever they appear.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, configFilePath, cmd.ConfigKey), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithScript(ctx, cmd.Script{
		File:    cli.File,
		Define:  cli.Define,
		Default: cli.Default,
	})

	// TimeLayout and Caller are only applied here.
	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
