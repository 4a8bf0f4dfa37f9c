package cmd

import (
	"bytes"
	"testing"

	"github.com/ardnew/mare/engine"
)

func TestPrinter(t *testing.T) {
	tests := []struct {
		d    engine.Diagnostic
		want string
	}{
		{engine.Diagnostic{File: "Marefile", Line: 3, Message: "unknown key"}, "Marefile:3: unknown key\n"},
		{engine.Diagnostic{File: "Marefile", Message: "no such file"}, "Marefile: no such file\n"},
		{engine.Diagnostic{Message: "bare"}, "bare\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		newPrinter(&buf).Diagnose(tt.d)

		if got := buf.String(); got != tt.want {
			t.Errorf("Diagnose(%v) wrote %q, want %q", tt.d, got, tt.want)
		}
	}
}
