package lang

import (
	"errors"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError_Format(t *testing.T) {
	pos := Position{File: "Marefile", Line: 2, Column: 3}

	tests := []struct {
		name string
		err  *Error
		want string
		msg  string
	}{
		{
			name: "sentinel",
			err:  ErrParse,
			want: "syntax error",
			msg:  "syntax error",
		},
		{
			name: "wrapped",
			err:  ErrParse.Wrap(errors.New("unexpected '}'")),
			want: "syntax error: unexpected '}'",
			msg:  "syntax error: unexpected '}'",
		},
		{
			name: "positioned",
			err:  ErrParse.WithPosition(pos).Wrap(errors.New("unexpected '}'")),
			want: "Marefile:2:3: syntax error: unexpected '}'",
			msg:  "syntax error: unexpected '}'",
		},
		{
			name: "cause only",
			err:  WrapError(fs.ErrNotExist),
			want: "file does not exist",
			msg:  "file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error(): expected %q, got %q", tt.want, got)
			}

			if got := tt.err.Message(); got != tt.msg {
				t.Errorf("Message(): expected %q, got %q", tt.msg, got)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := ErrInclude.
		WithPosition(Position{File: "a", Line: 1}).
		Wrap(fs.ErrNotExist).
		With(slog.String("path", "b"))

	if !errors.Is(err, ErrInclude) {
		t.Error("expected derived error to match its sentinel")
	}

	if errors.Is(err, ErrParse) {
		t.Error("expected derived error not to match another sentinel")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected derived error to match its cause")
	}

	if ErrInclude.Position().IsValid() {
		t.Error("expected sentinel to stay unmodified")
	}
}

func TestErrors(t *testing.T) {
	var none Errors
	if none.Err() != nil {
		t.Error("expected empty list to convert to nil")
	}

	list := Errors{
		ErrParse.WithPosition(Position{File: "f", Line: 1, Column: 1}),
		ErrUnterminated.WithPosition(Position{File: "f", Line: 4, Column: 2}),
	}

	err := list.Err()

	want := "f:1:1: syntax error\nf:4:2: unterminated"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	if !errors.Is(err, ErrUnterminated) {
		t.Error("expected list to match a contained sentinel")
	}

	var e *Error
	if !errors.As(err, &e) || e.Position().Line != 1 {
		t.Errorf("expected As to find first error, got %v", e)
	}
}

func TestPosition(t *testing.T) {
	if s := (Position{}).String(); s != "" {
		t.Errorf("expected empty origin for zero position, got %q", s)
	}

	if s := (Position{File: "Marefile", Line: 7, Column: 9}).String(); s != "Marefile:7" {
		t.Errorf("expected %q, got %q", "Marefile:7", s)
	}
}
