package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller != DefaultCaller {
		t.Errorf("expected caller %v, got %v", DefaultCaller, logger.caller)
	}
}

func TestLogger_ZeroValueDiscards(t *testing.T) {
	var logger Logger

	logger.Trace("nothing")
	logger.Error("nothing", slog.Int("n", 1))

	if logger.Level() != DefaultLevel {
		t.Errorf("expected zero logger level %v, got %v", DefaultLevel, logger.Level())
	}

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on zero logger should stay zero")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"trace enabled at trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"trace filtered at debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"info filtered at warn", LevelWarn, func(l Logger) { l.Info("msg") }, false},
		{"warn enabled at warn", LevelWarn, func(l Logger) { l.Warn("msg") }, true},
		{"error enabled at error", LevelError, func(l Logger) { l.Error("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("expected output=%v, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_JSONRecord(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	logger.Trace("lookup", slog.String("key", "flags"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", rec["level"])
	}

	if rec["msg"] != "lookup" || rec["key"] != "flags" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   bool
	}{
		{"RFC3339", true},
		{"kitchen", true},
		{"none", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithTimeLayout(tt.layout), WithLevel(LevelInfo)).Info("x")

			if got := strings.Contains(buf.String(), "time="); got != tt.want {
				t.Errorf("layout %q: expected time present=%v, got %q", tt.layout, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_CallerReportsCallSite(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithLevel(LevelInfo)).Info("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller to point at the test file, got %q", buf.String())
	}
}

func TestLogger_WrapKeepsSettings(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if wrapped.Format() != FormatJSON {
		t.Errorf("expected wrapped format json, got %v", wrapped.Format())
	}

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("unexpected levels base=%v wrapped=%v", base.Level(), wrapped.Level())
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithLevel(LevelInfo))

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.With(slog.Int("worker", i)).Info("tick")
			_ = logger.Wrap(WithPretty(true)).Level()
		}()
	}

	wg.Wait()

	if got := strings.Count(buf.String(), "tick"); got != 8 {
		t.Errorf("expected 8 records, got %d", got)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestPretty_KeepsWithAttrs(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithPretty(true), WithFormat(format), WithLevel(LevelInfo))
			logger.With(slog.String("file", "Marefile")).Info("loaded", slog.Int("keys", 3))

			out := buf.String()
			for _, want := range []string{"file", "Marefile", "keys", "3", "loaded", "INFO"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output %q", want, out)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"INFO+2", Level(slog.LevelInfo + 2)},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("expected JSON")
	}

	if ParseFormat("text") != FormatText {
		t.Error("expected text")
	}

	if ParseFormat("yaml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}
}

func TestLevelsAndFormats(t *testing.T) {
	var levels []string
	for l := range Levels() {
		levels = append(levels, l)
	}

	if strings.Join(levels, ",") != "trace,debug,info,warn,error" {
		t.Errorf("unexpected levels %v", levels)
	}

	var formats []string
	for f := range Formats() {
		formats = append(formats, f)
	}

	if strings.Join(formats, ",") != "text,json" {
		t.Errorf("unexpected formats %v", formats)
	}
}

func TestPackageFunctions_UseDefaultLogger(t *testing.T) {
	defaultMu.Lock()
	original := defaultLog
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Trace, "TRACE"},
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %s in %q", tt.level, out)
			}

			if !strings.Contains(out, `"key":"value"`) {
				t.Errorf("expected attribute in %q", out)
			}
		})
	}
}
