package lang

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/mare/log"
)

// Option configures parsing.
type Option func(*options)

type options struct {
	logger   log.Logger
	includes bool
	cache    bool
}

func makeOptions(opts ...Option) options {
	o := options{includes: true, cache: true}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger used for parse tracing.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithoutIncludes leaves the Body of every [*Include] nil instead of reading
// the included file.
func WithoutIncludes() Option {
	return func(o *options) { o.includes = false }
}

// WithoutCache parses the input even if an identical input was parsed
// before.
func WithoutCache() Option {
	return func(o *options) { o.cache = false }
}

// ParseString parses src as the contents of the file name. The name is used
// for positions and to resolve relative include paths; it may be empty.
//
// The returned Block is never nil. If any syntax errors were found, the
// error is an [Errors] listing all of them and the Block holds every
// statement that could be recovered.
func ParseString(
	ctx context.Context,
	name, src string,
	opts ...Option,
) (*Block, error) {
	return parseCached(ctx, name, []byte(src), makeOptions(opts...))
}

func parse(ctx context.Context, name string, data []byte, o options) (*Block, Errors) {
	p := newParser(ctx, name, data, o)
	if name != "" {
		if abs, err := filepath.Abs(name); err == nil {
			p.stack = []string{abs}
		}
	}

	b := p.parseFile()

	o.logger.TraceContext(ctx, "parse complete",
		slog.String("file", name),
		slog.Int("source_bytes", len(data)),
		slog.Int("statements", len(b.Statements)),
		slog.Int("errors", len(p.errs)),
	)

	return b, p.errs
}

type parser struct {
	ctx   context.Context
	input []byte
	pos   int
	line  int
	col   int
	file  string
	dir   string
	stack []string // absolute paths of the files being included
	errs  Errors
	opts  options
}

type mark struct{ pos, line, col int }

func newParser(ctx context.Context, name string, data []byte, o options) *parser {
	dir := "."
	if name != "" {
		dir = filepath.Dir(name)
	}

	return &parser{
		ctx:   ctx,
		input: data,
		line:  1,
		col:   1,
		file:  name,
		dir:   dir,
		opts:  o,
	}
}

func (p *parser) parseFile() *Block {
	return &Block{
		Position:   p.position(),
		Statements: p.parseStatements(false),
	}
}

// parseStatements parses statements until EOF or, if nested, until a
// closing brace, which is left unconsumed.
func (p *parser) parseStatements(nested bool) []Statement {
	var list []Statement

	for {
		p.skipSpace(true)

		if p.eof() {
			return list
		}

		if p.peek() == '}' {
			if nested {
				return list
			}

			p.fail(p.position(), ErrParse, "unexpected '}'")
			p.advance()

			continue
		}

		stmts, ok := p.parseStatement()
		if !ok {
			p.recover()

			continue
		}

		list = append(list, stmts...)
	}
}

func (p *parser) parseStatement() ([]Statement, bool) {
	pos := p.position()

	if p.peek() == '=' || p.peek() == ':' {
		p.fail(pos, ErrParse, "unexpected '"+string(p.peek())+"'")

		return nil, false
	}

	if !isIdentifierStart(p.peek()) {
		return p.parseTerms()
	}

	start := p.save()
	name := p.scanName()
	next := p.peek()

	p.skipSpace(false)

	switch {
	case p.peekN(2) == "+=":
		p.advanceN(2)

		return p.parseAssign(pos, name, true)

	case p.peek() == '=' && p.peekN(2) != "==":
		p.advance()

		return p.parseAssign(pos, name, false)

	case p.peek() == ':' && isBreak(p.peekAt(1)):
		p.advance()

		return p.parseInherit(pos, name)
	}

	switch {
	case name == "if" && (isBlank(next) || next == '(' || next == '!'):
		s, ok := p.parseIf(pos)

		return []Statement{s}, ok

	case name == "include" && (isBlank(next) || next == '"'):
		s, ok := p.parseInclude(pos)

		return []Statement{s}, ok

	case name == "else" && (isBlank(next) || next == '{'):
		p.fail(pos, ErrParse, "else without if")

		return nil, false
	}

	p.restore(start)

	return p.parseTerms()
}

func (p *parser) parseAssign(pos Position, name string, appendTo bool) ([]Statement, bool) {
	value := &Block{Position: p.position()}

	terms, ok := p.parseTerms()
	value.Statements = terms

	return []Statement{&Assign{
		Position: pos,
		Name:     name,
		Append:   appendTo,
		Value:    value,
	}}, ok
}

// parseInherit parses the base list and optional body following
// "name :".
func (p *parser) parseInherit(pos Position, name string) ([]Statement, bool) {
	value := &Block{Position: p.position()}

	for {
		p.skipSpace(false)

		if p.atLineEnd() {
			break
		}

		if p.peek() == '{' {
			body, ok := p.parseBraced()
			if body != nil {
				value.Statements = append(value.Statements, body.Statements...)
			}

			if !ok {
				return nil, false
			}

			break
		}

		if !isIdentifierStart(p.peek()) {
			p.fail(p.position(), ErrParse, "expected base key name or '{'")

			return nil, false
		}

		value.Statements = append(value.Statements, &Inherit{
			Position: p.position(),
			Name:     p.scanName(),
		})
	}

	return []Statement{&Assign{Position: pos, Name: name, Value: value}}, true
}

// parseTerms parses words, strings, references and blocks up to the end
// of the line.
func (p *parser) parseTerms() ([]Statement, bool) {
	var terms []Statement

	for {
		p.skipSpace(false)

		if p.atLineEnd() {
			return terms, true
		}

		pos := p.position()

		switch p.peek() {
		case '{':
			body, ok := p.parseBraced()
			if body != nil {
				terms = append(terms, body.Statements...)
			}

			if !ok {
				return terms, false
			}

		case '"':
			text, ok := p.scanQuoted()
			if !ok {
				return terms, false
			}

			terms = append(terms, &Word{Position: pos, Text: text, Quoted: true})

		default:
			text := p.scanWord()
			if name, ok := referenceName(text); ok {
				terms = append(terms, &Reference{Position: pos, Name: name})
			} else {
				terms = append(terms, &Word{Position: pos, Text: text})
			}
		}
	}
}

func (p *parser) parseBraced() (*Block, bool) {
	pos := p.position()

	if !p.expect('{') {
		p.fail(pos, ErrParse, "expected '{'")

		return nil, false
	}

	b := &Block{Position: pos, Statements: p.parseStatements(true)}

	if !p.expect('}') {
		p.fail(pos, ErrUnterminated, "block")

		return b, false
	}

	return b, true
}

func (p *parser) parseIf(pos Position) (*If, bool) {
	stmt := &If{Position: pos}

	cond, ok := p.captureCondition()
	if !ok {
		return stmt, false
	}

	stmt.Condition = cond

	if stmt.Then, ok = p.parseBraced(); !ok {
		return stmt, false
	}

	after := p.save()

	p.skipSpace(true)

	if !p.matchKeyword("else") {
		p.restore(after)

		return stmt, true
	}

	p.skipSpace(false)

	if epos := p.position(); p.matchKeyword("if") {
		nested, ok := p.parseIf(epos)
		stmt.Else = nested

		return stmt, ok
	}

	body, ok := p.parseBraced()
	if body != nil {
		stmt.Else = body
	}

	return stmt, ok
}

// captureCondition returns the raw condition text preceding the opening
// brace of an if statement. Brackets and string literals may contain
// braces and newlines.
func (p *parser) captureCondition() (string, bool) {
	p.skipSpace(false)

	start, pos := p.pos, p.position()
	depth := 0

	for !p.eof() {
		switch ch := p.peek(); {
		case ch == '"' || ch == '\'' || ch == '`':
			if !p.skipString(ch) {
				return "", false
			}

			continue

		case ch == '(' || ch == '[':
			depth++

		case ch == ')' || ch == ']':
			depth--

		case ch == '{' && depth <= 0:
			cond := strings.TrimSpace(string(p.input[start:p.pos]))
			if cond == "" {
				p.fail(pos, ErrParse, "missing condition")

				return "", false
			}

			return cond, true

		case ch == '\n' && depth <= 0:
			p.fail(pos, ErrParse, "expected '{' after condition")

			return "", false
		}

		p.advance()
	}

	p.fail(pos, ErrParse, "expected '{' after condition")

	return "", false
}

func (p *parser) parseInclude(pos Position) (*Include, bool) {
	stmt := &Include{Position: pos}

	p.skipSpace(false)

	switch {
	case p.atLineEnd():
		p.fail(p.position(), ErrParse, "expected include path")

		return stmt, false

	case p.peek() == '"':
		path, ok := p.scanQuoted()
		if !ok {
			return stmt, false
		}

		stmt.Path = path

	default:
		stmt.Path = p.scanWord()
	}

	if p.opts.includes {
		stmt.Body = p.include(pos, stmt.Path)
	}

	return stmt, true
}

// include parses the file at path relative to the including file's
// directory. Errors are recorded against the include statement; syntax
// errors inside the included file keep their own positions.
func (p *parser) include(pos Position, path string) *Block {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	if slices.Contains(p.stack, abs) {
		p.errs = append(p.errs, ErrIncludeCycle.WithPosition(pos).
			Wrap(errors.New(strings.Join(append(p.stack, abs), " -> "))))

		return nil
	}

	data, err := readSource(abs)
	if err != nil {
		p.errs = append(p.errs, ErrInclude.WithPosition(pos).Wrap(err).
			With(slog.String("path", abs)))

		return nil
	}

	child := newParser(p.ctx, abs, data, p.opts)
	child.stack = append(p.stack[:len(p.stack):len(p.stack)], abs)
	body := child.parseFile()
	p.errs = append(p.errs, child.errs...)

	p.opts.logger.TraceContext(p.ctx, "include",
		slog.String("file", abs),
		slog.Int("depth", len(child.stack)),
	)

	return body
}

// recover skips to the end of the current statement: the next newline or
// semicolon outside braces, or an unmatched closing brace.
func (p *parser) recover() {
	depth := 0

	for !p.eof() {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return
			}

			depth--
		case '\n', ';':
			if depth == 0 {
				p.advance()

				return
			}
		}

		p.advance()
	}
}

func (p *parser) fail(pos Position, sentinel *Error, detail string) {
	p.errs = append(p.errs, sentinel.WithPosition(pos).Wrap(errors.New(detail)))
}

// Scanning

func (p *parser) scanName() string {
	start := p.pos

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	for !p.eof() {
		ch := p.peek()
		if (ch == '-' || ch == '+' || ch == '.' || ch == '@') &&
			isIdentifierContinue(p.peekAt(1)) {
			p.advance()

			for !p.eof() && isIdentifierContinue(p.peek()) {
				p.advance()
			}

			continue
		}

		break
	}

	return string(p.input[start:p.pos])
}

// scanWord scans a bare word. "${...}" sequences are taken whole so that a
// reference may contain any character but '}'.
func (p *parser) scanWord() string {
	start := p.pos

	for !p.eof() {
		ch := p.peek()

		if ch == '$' && p.peekAt(1) == '{' {
			for !p.eof() && p.peek() != '}' && p.peek() != '\n' {
				p.advance()
			}

			if p.peek() == '}' {
				p.advance()
			}

			continue
		}

		if unicode.IsSpace(ch) || ch == '{' || ch == '}' || ch == ';' || ch == '"' {
			break
		}

		p.advance()
	}

	return string(p.input[start:p.pos])
}

func (p *parser) scanQuoted() (string, bool) {
	pos := p.position()

	p.advance() // opening quote

	var sb strings.Builder

	for !p.eof() {
		ch := p.peek()

		switch ch {
		case '"':
			p.advance()

			return sb.String(), true

		case '\n':
			p.fail(pos, ErrUnterminated, "string literal")

			return sb.String(), false

		case '\\':
			p.advance()

			switch esc := p.peek(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\':
				sb.WriteRune(esc)
			default:
				sb.WriteByte('\\')

				continue
			}

			p.advance()

		default:
			sb.WriteRune(ch)
			p.advance()
		}
	}

	p.fail(pos, ErrUnterminated, "string literal")

	return sb.String(), false
}

func (p *parser) skipString(quote rune) bool {
	pos := p.position()

	p.advance()

	for !p.eof() {
		switch p.peek() {
		case '\\':
			p.advance()
		case quote:
			p.advance()

			return true
		}

		p.advance()
	}

	p.fail(pos, ErrUnterminated, "string literal")

	return false
}

func (p *parser) matchKeyword(kw string) bool {
	if p.peekN(len(kw)) != kw || isIdentifierContinue(p.peekAt(len(kw))) {
		return false
	}

	p.advanceN(len(kw))

	return true
}

// referenceName reports whether word consists of exactly one "${name}".
func referenceName(word string) (string, bool) {
	inner, ok := strings.CutPrefix(word, "${")
	if !ok {
		return "", false
	}

	inner, ok = strings.CutSuffix(inner, "}")
	if !ok || inner == "" || strings.ContainsAny(inner, "${} \t") {
		return "", false
	}

	return inner, true
}

// Helper methods

func (p *parser) save() mark { return mark{p.pos, p.line, p.col} }

func (p *parser) restore(m mark) { p.pos, p.line, p.col = m.pos, m.line, m.col }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

// peekAt returns the rune n runes past the current one.
func (p *parser) peekAt(n int) rune {
	i := p.pos

	for ; n > 0 && i < len(p.input); n-- {
		_, size := utf8.DecodeRune(p.input[i:])
		i += size
	}

	if i >= len(p.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[i:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) advanceN(n int) {
	for range n {
		p.advance()
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) atLineEnd() bool {
	switch p.peek() {
	case 0, '\n', ';', '}':
		return true
	}

	return false
}

func (p *parser) position() Position {
	return Position{File: p.file, Line: p.line, Column: p.col}
}

// skipSpace skips blanks, comments and escaped newlines. With newlines set
// it also skips line breaks and semicolons.
func (p *parser) skipSpace(newlines bool) {
	for !p.eof() {
		switch ch := p.peek(); {
		case ch == '\n' || ch == ';':
			if !newlines {
				return
			}

			p.advance()

		case isBlank(ch):
			p.advance()

		case ch == '\\' && (p.peekAt(1) == '\n' || p.peekN(3) == "\\\r\n"):
			p.advanceN(2)

			if p.peek() == '\n' {
				p.advance()
			}

		case ch == '#' || p.peekN(2) == "//":
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}

		case p.peekN(2) == "/*":
			p.advanceN(2)

			for !p.eof() && p.peekN(2) != "*/" {
				p.advance()
			}

			p.advanceN(2)

		default:
			return
		}
	}
}

// Character classification

func isBlank(r rune) bool { return r != '\n' && unicode.IsSpace(r) }

func isBreak(r rune) bool { return r == 0 || r == '{' || unicode.IsSpace(r) }

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
