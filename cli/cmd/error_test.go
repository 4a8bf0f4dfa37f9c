package cmd

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrWriteConfig.With(slog.String("file", "x")).Wrap(cause)

	if got, want := err.Error(), "write configuration file: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrWriteConfig) {
		t.Error("errors.Is(err, ErrWriteConfig) = false")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}

	if errors.Is(err, ErrFormat) {
		t.Error("errors.Is(err, ErrFormat) = true")
	}

	if errors.Is(ErrWriteConfig, err) {
		t.Error("sentinel matched a derived error")
	}

	attrs := err.LogValue().Group()
	if len(attrs) != 3 || attrs[2].Key != "file" {
		t.Errorf("LogValue() = %v", attrs)
	}
}
