// Package log provides leveled structured logging on top of [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options
// applied at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("Kitchen"))
//
//	logger.Info("loaded", slog.String("file", "Marefile"))
//
// The zero Logger discards all records, which lets library types hold a
// Logger field that callers may leave unset.
//
// # Levels
//
// In addition to the four [slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-lookup tracing in the engine.
//
// # Package-level logger
//
// [Config] adjusts the logger used by the package-level functions
// ([Trace], [Debug], [Info], [Warn], [Error] and their Context variants).
// Functions without a context argument use [DefaultContextProvider].
//
// # Pretty output
//
// [WithPretty] switches to a colorized handler for terminals. Text format
// prints one line per record; JSON format prints an indented object.
package log
