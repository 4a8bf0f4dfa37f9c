package profile

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Config describes a profiler. The zero value disables profiling.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a [Config].
type Option func(Config) Config

// Make returns a Config with all of the given options applied.
func Make(opts ...Option) Config {
	var c Config

	return c.With(opts...)
}

// With returns a copy of c with opts applied in order.
func (c Config) With(opts ...Option) Config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start starts the profiler described by c.
//
// If c has no mode, or the binary was built without the pprof tag, Start
// returns a no-op. Both Start and the returned Stop are always safe to call.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

// WithMode sets the profiling mode. See [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath sets the directory profiles are written into.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

type ignore struct{}

func (ignore) Stop() {}
