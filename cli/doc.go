// Package cli contains the command line interface for mare.
//
// # Usage
//
//	mare [flags] <command> [args]
//
// Query commands load a Marefile (default "Marefile", see --file) and
// answer questions about its keys. Key paths are dotted:
//
//	mare keys targets
//	mare text targets.app.sources
//	mare origin targets.app
//	mare dump --format yaml configurations
//	mare check
//
// # Injected keys
//
// Before a command runs, the root key receives, in increasing precedence:
//   - builtin defaults: host, arch and mareDir
//   - --default key=value
//   - the script's own declarations
//   - --define/-D key=value, which always wins
//
// # Configuration
//
// Flag defaults are read from a JSON file and from a Marefile-syntax file
// in the user configuration directory. The latter holds one key per flag
// inside the key "config"; "mare init" writes it from the current flags.
//
// # Logging options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: text or json
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, ...)
//   - --[no-]log-caller, --[no-]log-pretty
//
// # Profiling options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: profile output directory
package cli
