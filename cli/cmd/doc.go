// Package cmd implements the mare subcommands.
//
// Every query command loads the Marefile named by the global --file flag
// into an [engine.Engine], injects builtin and user keys, then navigates to
// a dotted key path such as "targets.app" before answering.
package cmd

const (
	// CacheIdentifier is the kong variable holding the path to the runtime
	// cache directory.
	CacheIdentifier = "cacheDir"

	// ConfigIdentifier is the kong variable holding the path to the
	// configuration file.
	ConfigIdentifier = "configPath"

	// ConfigKey is the key of the configuration file whose keys hold flag
	// values.
	ConfigKey = "config"
)
