package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"second_word", "cd app", 6, "app", 3, 6},
		{"path", "ls app/sub", 10, "app/sub", 3, 10},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"after_space", "cd ", 3, "", 3, 3},
		{"hyphenated", "text log-level", 14, "log-level", 5, 14},
		{"cursor_past_end", "ls", 10, "ls", 0, 2},
		{"empty", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSplitLeaf(t *testing.T) {
	tests := []struct {
		word, parent, leaf string
	}{
		{"app", "", "app"},
		{"app/", "app", ""},
		{"app/su", "app", "su"},
		{"/app", "/", "app"},
		{"../x", "..", "x"},
		{"", "", ""},
	}

	for _, tt := range tests {
		parent, leaf := splitLeaf(tt.word)
		if parent != tt.parent || leaf != tt.leaf {
			t.Errorf("splitLeaf(%q) = (%q, %q), want (%q, %q)",
				tt.word, parent, leaf, tt.parent, tt.leaf)
		}
	}
}

func TestSession_Complete(t *testing.T) {
	s := newTestSession(t, "app = {\n  sources = a.c b.c\n  flags = -O2\n}\napi\nother\n")

	strs := func(c completion) []string {
		var out []string
		for _, m := range c.matches {
			out = append(out, m.Str)
		}

		return out
	}

	tests := []struct {
		name      string
		input     string
		want      []string
		wantStart int
	}{
		{"empty line", "", nil, 0},
		{"command", "ori", []string{"origin"}, 0},
		{"all keys", "ls ", []string{"app", "api", "other"}, 3},
		{"fuzzy key", "ls ap", []string{"api", "app"}, 3},
		{"child keys", "text app/", []string{"sources", "flags"}, 9},
		{"child prefix", "text app/fl", []string{"flags"}, 9},
		{"unknown parent", "ls nope/x", nil, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.complete(tt.input, len(tt.input))

			if diff := cmp.Diff(tt.want, strs(c)); diff != "" {
				t.Errorf("complete(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}

			if c.start != tt.wantStart || c.end != len(tt.input) {
				t.Errorf("complete(%q) bounds = [%d, %d), want [%d, %d)",
					tt.input, c.start, c.end, tt.wantStart, len(tt.input))
			}
		})
	}

	if s.pwd() != "/" {
		t.Errorf("completion moved the session to %s", s.pwd())
	}
}

func TestRank(t *testing.T) {
	matches := fuzzy.Matches{
		{Str: "late", Index: 3, Score: 5},
		{Str: "best", Index: 2, Score: 9},
		{Str: "first", Index: 0, Score: 5},
		{Str: "second", Index: 1, Score: 5},
	}

	var got []string
	for _, m := range rank(matches) {
		got = append(got, m.Str)
	}

	want := []string{"best", "first", "second", "late"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rank mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	s := newTestSession(t, "alpha\nbeta\ngamma\n")
	c := s.complete("ls ", 3)

	if got := renderCandidateBar(nil, -1, 80); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q, want empty", got)
	}

	bar := renderCandidateBar(c.matches, -1, 80)
	for _, want := range []string{"a", "b", "g"} {
		if !containsPlain(bar, want) {
			t.Errorf("bar %q does not contain %q", bar, want)
		}
	}
}
