package lang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"  a b\tc\n", []string{"a", "b", "c"}},
		{`"a b" c`, []string{"a b", "c"}},
		{`-DNAME="x y" z`, []string{"-DNAME=x y", "z"}},
		{`""`, []string{""}},
		{`"say \"hi\"\n"`, []string{"say \"hi\"\n"}},
		{`C:\path`, []string{`C:\path`}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitWords(tt.input)); diff != "" {
				t.Errorf("SplitWords(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestJoinWords(t *testing.T) {
	words := []string{"a", "b c", "", `q"`, `back\slash`, "tab\there"}

	got := JoinWords(words)

	want := `a "b c" "" "q\"" "back\\slash" "tab\there"`
	if got != want {
		t.Errorf("JoinWords: expected %s, got %s", want, got)
	}

	if diff := cmp.Diff(words, SplitWords(got)); diff != "" {
		t.Errorf("SplitWords(JoinWords) mismatch (-want +got):\n%s", diff)
	}
}
