package engine

import (
	"log/slog"
	"strconv"
	"sync"
)

// Diagnostic is an error found in script content. File and Line locate the
// statement that caused it and are empty for keys without a textual origin.
type Diagnostic struct {
	Err     error
	File    string
	Message string
	Line    int
}

// String formats d as "file:line: message".
func (d Diagnostic) String() string {
	switch {
	case d.File == "" && d.Line <= 0:
		return d.Message
	case d.Line <= 0:
		return d.File + ": " + d.Message
	}

	return d.File + ":" + strconv.Itoa(d.Line) + ": " + d.Message
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", d.File),
		slog.Int("line", d.Line),
		slog.String("message", d.Message),
	)
}

// Sink receives every diagnostic an [Engine] reports. The engine never stops
// on a diagnostic; the caller decides which are fatal.
type Sink interface {
	Diagnose(d Diagnostic)
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(Diagnostic)

// Diagnose calls f(d).
func (f SinkFunc) Diagnose(d Diagnostic) { f(d) }

// Collector is a [Sink] that records diagnostics in order.
// It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Diagnose implements [Sink].
func (c *Collector) Diagnose(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Diagnostic(nil), c.diags...)
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.diags)
}

// Reset discards the recorded diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diags = nil
}
