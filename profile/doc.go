// Package profile provides optional runtime profiling for mare.
//
// Profiling is built on [github.com/pkg/profile] and is compiled in only
// when the binary is built with the [Tag] build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Config.Start] always returns a no-op stopper and [Modes]
// returns nil, so callers never need to guard on the build configuration.
//
// A profiler is described by a [Config] and started with [Config.Start]:
//
//	stop := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	).Start()
//	defer stop.Stop()
//
// Profiles are written into the configured directory and can be inspected
// with "go tool pprof". Mode "trace" writes an execution trace for
// "go tool trace" instead.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
