package lang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignorePositions = cmpopts.IgnoreTypes(Position{})

func value(stmts ...Statement) *Block { return &Block{Statements: stmts} }

func word(text string) *Word { return &Word{Text: text} }

func TestParseString_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "assign word",
			input: `name = myApp`,
			want: []Statement{
				&Assign{Name: "name", Value: value(word("myApp"))},
			},
		},
		{
			name:  "assign words",
			input: `configurations = Debug Release`,
			want: []Statement{
				&Assign{Name: "configurations", Value: value(word("Debug"), word("Release"))},
			},
		},
		{
			name:  "quoted string keeps references",
			input: `greeting = "Hello, ${Name}!"`,
			want: []Statement{
				&Assign{Name: "greeting", Value: value(
					&Word{Text: "Hello, ${Name}!", Quoted: true},
				)},
			},
		},
		{
			name:  "escape sequences",
			input: `s = "a\"b\\c\td"`,
			want: []Statement{
				&Assign{Name: "s", Value: value(&Word{Text: "a\"b\\c\td", Quoted: true})},
			},
		},
		{
			name:  "whole-word reference",
			input: `all = ${flags} -g -I${root}/include`,
			want: []Statement{
				&Assign{Name: "all", Value: value(
					&Reference{Name: "flags"},
					word("-g"),
					word("-I${root}/include"),
				)},
			},
		},
		{
			name:  "append",
			input: `flags += -O2`,
			want: []Statement{
				&Assign{Name: "flags", Append: true, Value: value(word("-O2"))},
			},
		},
		{
			name:  "block value",
			input: "cfg = {\n  a = 1\n  b\n}",
			want: []Statement{
				&Assign{Name: "cfg", Value: value(
					&Assign{Name: "a", Value: value(word("1"))},
					word("b"),
				)},
			},
		},
		{
			name:  "empty value",
			input: "empty =\nnone = {}",
			want: []Statement{
				&Assign{Name: "empty", Value: value()},
				&Assign{Name: "none", Value: value()},
			},
		},
		{
			name:  "inherit with body",
			input: "app : base other {\n  x = 1\n}",
			want: []Statement{
				&Assign{Name: "app", Value: value(
					&Inherit{Name: "base"},
					&Inherit{Name: "other"},
					&Assign{Name: "x", Value: value(word("1"))},
				)},
			},
		},
		{
			name:  "inherit without body",
			input: `app : base`,
			want: []Statement{
				&Assign{Name: "app", Value: value(&Inherit{Name: "base"})},
			},
		},
		{
			name:  "if else chain",
			input: "if a == \"b\" {\n  x\n} else if c {\n  y\n} else {\n  z\n}",
			want: []Statement{
				&If{
					Condition: `a == "b"`,
					Then:      value(word("x")),
					Else: &If{
						Condition: "c",
						Then:      value(word("y")),
						Else:      value(word("z")),
					},
				},
			},
		},
		{
			name:  "if without else",
			input: "if (x || y) && !z { w }\nnext",
			want: []Statement{
				&If{Condition: "(x || y) && !z", Then: value(word("w"))},
				word("next"),
			},
		},
		{
			name:  "separators and comments",
			input: "a = 1; b = 2 # comment\n/* block\ncomment */ c // trailing",
			want: []Statement{
				&Assign{Name: "a", Value: value(word("1"))},
				&Assign{Name: "b", Value: value(word("2"))},
				word("c"),
			},
		},
		{
			name:  "words containing operators",
			input: "defines = FOO=1 BAR\nurl = http://example.com/x\nsrc/main.cpp",
			want: []Statement{
				&Assign{Name: "defines", Value: value(word("FOO=1"), word("BAR"))},
				&Assign{Name: "url", Value: value(word("http://example.com/x"))},
				word("src/main.cpp"),
			},
		},
		{
			name:  "line continuation",
			input: "flags = -a \\\n  -b",
			want: []Statement{
				&Assign{Name: "flags", Value: value(word("-a"), word("-b"))},
			},
		},
		{
			name:  "hyphenated and dotted names",
			input: "build-type = debug\nlib.so = x",
			want: []Statement{
				&Assign{Name: "build-type", Value: value(word("debug"))},
				&Assign{Name: "lib.so", Value: value(word("x"))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(t.Context(), "Marefile", tt.input, WithoutCache())
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got.Statements, ignorePositions); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseString_Positions(t *testing.T) {
	src := "a = 1\n\n  b : base {\n    c\n  }\n"

	got, err := ParseString(t.Context(), "dir/Marefile", src, WithoutCache())
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	a := got.Statements[0].(*Assign)
	b := got.Statements[1].(*Assign)
	c := b.Value.Statements[1].(*Word)

	tests := []struct {
		name string
		got  Position
		want Position
	}{
		{"a", a.Pos(), Position{File: "dir/Marefile", Line: 1, Column: 1}},
		{"a value", a.Value.Statements[0].Pos(), Position{File: "dir/Marefile", Line: 1, Column: 5}},
		{"b", b.Pos(), Position{File: "dir/Marefile", Line: 3, Column: 3}},
		{"base", b.Value.Statements[0].Pos(), Position{File: "dir/Marefile", Line: 3, Column: 7}},
		{"c", c.Pos(), Position{File: "dir/Marefile", Line: 4, Column: 5}},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected position %+v, got %+v", tt.name, tt.want, tt.got)
		}
	}

	if s := b.Pos().String(); s != "dir/Marefile:3" {
		t.Errorf("expected origin %q, got %q", "dir/Marefile:3", s)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel []*Error
		lines    []int
		kept     int // statements recovered
	}{
		{
			name:     "unterminated string",
			input:    "a = \"oops\nb = 1",
			sentinel: []*Error{ErrUnterminated},
			lines:    []int{1},
			kept:     1,
		},
		{
			name:     "unclosed block",
			input:    "a = {\n  b = 1\n",
			sentinel: []*Error{ErrUnterminated},
			lines:    []int{1},
			kept:     0,
		},
		{
			name:     "recovers after each error",
			input:    "= x\nok = 1\n}\nb : 'bad'\nc",
			sentinel: []*Error{ErrParse, ErrParse, ErrParse},
			lines:    []int{1, 3, 4},
			kept:     2,
		},
		{
			name:     "if without brace",
			input:    "if a == b\nx",
			sentinel: []*Error{ErrParse},
			lines:    []int{1},
			kept:     1,
		},
		{
			name:     "dangling else",
			input:    "else { x }\ny",
			sentinel: []*Error{ErrParse},
			lines:    []int{1},
			kept:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(t.Context(), "Marefile", tt.input, WithoutCache())
			if err == nil {
				t.Fatal("expected error")
			}

			var list Errors
			if !errors.As(err, &list) {
				t.Fatalf("expected Errors, got %T", err)
			}

			if len(list) != len(tt.sentinel) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.sentinel), len(list), err)
			}

			for i, e := range list {
				if !errors.Is(e, tt.sentinel[i]) {
					t.Errorf("error %d: expected %v, got %v", i, tt.sentinel[i], e)
				}

				if e.Position().Line != tt.lines[i] {
					t.Errorf("error %d: expected line %d, got %d (%v)", i, tt.lines[i], e.Position().Line, e)
				}
			}

			if len(got.Statements) != tt.kept {
				t.Errorf("expected %d recovered statements, got %d", tt.kept, len(got.Statements))
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseFile_Include(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "Marefile")

	writeFile(t, filepath.Join(dir, "common.mare"), "shared = yes\n")
	writeFile(t, main, "include \"common.mare\"\nlocal = 1\n")

	got, err := ParseFile(t.Context(), main, WithoutCache())
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := []Statement{
		&Include{Path: "common.mare", Body: value(
			&Assign{Name: "shared", Value: value(word("yes"))},
		)},
		&Assign{Name: "local", Value: value(word("1"))},
	}

	if diff := cmp.Diff(want, got.Statements, ignorePositions); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	inc := got.Statements[0].(*Include)
	if file := inc.Body.Statements[0].Pos().File; filepath.Base(file) != "common.mare" {
		t.Errorf("expected included positions in common.mare, got %q", file)
	}

	got, err = ParseFile(t.Context(), main, WithoutCache(), WithoutIncludes())
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if body := got.Statements[0].(*Include).Body; body != nil {
		t.Errorf("expected nil body without includes, got %v", body.Statements)
	}
}

func TestParseFile_IncludeErrors(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.mare"), "include b.mare\n")
	writeFile(t, filepath.Join(dir, "b.mare"), "include a.mare\n")
	writeFile(t, filepath.Join(dir, "c.mare"), "include missing.mare\nx\n")

	_, err := ParseFile(t.Context(), filepath.Join(dir, "a.mare"), WithoutCache())
	if !errors.Is(err, ErrIncludeCycle) {
		t.Errorf("expected include cycle, got %v", err)
	}

	got, err := ParseFile(t.Context(), filepath.Join(dir, "c.mare"), WithoutCache())
	if !errors.Is(err, ErrInclude) {
		t.Errorf("expected include failure, got %v", err)
	}

	if len(got.Statements) != 2 {
		t.Errorf("expected include statement and word, got %d statements", len(got.Statements))
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(t.Context(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestParseString_Cache(t *testing.T) {
	ClearCache()

	src := "cached = yes"

	first, err := ParseString(t.Context(), "Marefile", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, _ := ParseString(t.Context(), "Marefile", src)
	if first != second {
		t.Error("expected identical input to hit the cache")
	}

	other, _ := ParseString(t.Context(), "Other", src)
	if other == first {
		t.Error("expected a different file name to miss the cache")
	}

	uncached, _ := ParseString(t.Context(), "Marefile", src, WithoutCache())
	if uncached == first {
		t.Error("expected WithoutCache to bypass the cache")
	}

	ClearCache()

	third, _ := ParseString(t.Context(), "Marefile", src)
	if third == first {
		t.Error("expected ClearCache to discard entries")
	}
}

func TestWalk(t *testing.T) {
	got, err := ParseString(t.Context(), "", "a = { b = c }\nif x { d } else { e }", WithoutCache())
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var words []string

	Walk(got, func(s Statement) bool {
		if w, ok := s.(*Word); ok {
			words = append(words, w.Text)
		}

		return true
	})

	if diff := cmp.Diff([]string{"c", "d", "e"}, words); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}
