package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// DefaultIndent is the indent width used by [FormatString].
const DefaultIndent = 2

// Format writes b to w as canonical Marefile source, indenting nested
// blocks by indent spaces. Included files are not expanded; their include
// statements are written as they appeared.
func Format(ctx context.Context, w io.Writer, b *Block, indent int, opts ...Option) error {
	o := makeOptions(opts...)

	f := &formatter{indent: strings.Repeat(" ", max(indent, 0))}
	if b != nil {
		f.statements(b.Statements, 0)
	}

	n, err := io.WriteString(w, f.sb.String())

	o.logger.TraceContext(ctx, "format",
		slog.Int("bytes", n),
		slog.Int("indent", indent),
	)

	if err != nil {
		return WrapError(err)
	}

	return nil
}

// FormatString returns b as canonical Marefile source.
func FormatString(b *Block) string {
	var sb strings.Builder

	_ = Format(context.Background(), &sb, b, DefaultIndent)

	return sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent string
}

func (f *formatter) line(depth int, text string) {
	for range depth {
		f.sb.WriteString(f.indent)
	}

	f.sb.WriteString(text)
	f.sb.WriteByte('\n')
}

func (f *formatter) statements(list []Statement, depth int) {
	for _, s := range list {
		f.statement(s, depth)
	}
}

func (f *formatter) statement(s Statement, depth int) {
	switch s := s.(type) {
	case *Word, *Reference:
		f.line(depth, term(s))

	case *Assign:
		f.assign(s, depth)

	case *If:
		f.line(depth, "if "+s.Condition+" {")
		f.statements(s.Then.Statements, depth+1)
		f.elseChain(s.Else, depth)

	case *Include:
		f.line(depth, "include "+quoteString(s.Path))

	case *Block:
		f.line(depth, "{")
		f.statements(s.Statements, depth+1)
		f.line(depth, "}")
	}
}

func (f *formatter) elseChain(s Statement, depth int) {
	switch s := s.(type) {
	case nil:
		f.line(depth, "}")

	case *If:
		f.line(depth, "} else if "+s.Condition+" {")
		f.statements(s.Then.Statements, depth+1)
		f.elseChain(s.Else, depth)

	case *Block:
		f.line(depth, "} else {")
		f.statements(s.Statements, depth+1)
		f.line(depth, "}")
	}
}

func (f *formatter) assign(s *Assign, depth int) {
	var body []Statement
	if s.Value != nil {
		body = s.Value.Statements
	}

	bases := s.Value.Inherits()
	body = body[len(bases):]

	var head string

	switch {
	case len(bases) > 0 && !s.Append:
		head = s.Name + " : " + strings.Join(bases, " ")
		if len(body) == 0 {
			f.line(depth, head)

			return
		}

	case s.Append:
		head = s.Name + " +="

	default:
		head = s.Name + " ="
	}

	if len(body) == 0 {
		f.line(depth, head+" {}")

		return
	}

	if terms, ok := inlineTerms(body); ok && len(bases) == 0 {
		f.line(depth, head+" "+terms)

		return
	}

	f.line(depth, head+" {")
	f.statements(body, depth+1)
	f.line(depth, "}")
}

// inlineTerms joins list onto one line if it holds only words and
// references.
func inlineTerms(list []Statement) (string, bool) {
	parts := make([]string, 0, len(list))

	for _, s := range list {
		switch s.(type) {
		case *Word, *Reference:
			parts = append(parts, term(s))
		default:
			return "", false
		}
	}

	return strings.Join(parts, " "), true
}

func term(s Statement) string {
	switch s := s.(type) {
	case *Reference:
		return "${" + s.Name + "}"

	case *Word:
		if s.Quoted || needsQuote(s.Text) {
			return quoteString(s.Text)
		}

		return s.Text
	}

	return ""
}

func needsQuote(text string) bool {
	switch text {
	case "", "if", "else", "include":
		return true
	}

	if strings.HasPrefix(text, "#") ||
		strings.HasPrefix(text, "//") ||
		strings.HasPrefix(text, "/*") {
		return true
	}

	if _, ok := referenceName(text); ok {
		return true
	}

	return strings.ContainsFunc(text, func(r rune) bool {
		switch r {
		case '{', '}', ';', '"', '=', ':', '\\':
			return true
		}

		return r == '\n' || isBlank(r)
	})
}
