package lang

import (
	"strings"
	"unicode"
)

// SplitWords splits s at runs of whitespace. Double quotes group text
// containing whitespace into one word and are removed; a backslash inside
// quotes escapes the next character, with \n, \t and \r denoting control
// characters.
func SplitWords(s string) []string {
	var (
		words  []string
		sb     strings.Builder
		inWord bool
		quoted bool
		escape bool
	)

	for _, r := range s {
		switch {
		case escape:
			switch r {
			case 'n':
				r = '\n'
			case 't':
				r = '\t'
			case 'r':
				r = '\r'
			}

			sb.WriteRune(r)

			escape = false

		case quoted && r == '\\':
			escape = true

		case r == '"':
			quoted = !quoted
			inWord = true

		case !quoted && unicode.IsSpace(r):
			if inWord {
				words = append(words, sb.String())
				sb.Reset()

				inWord = false
			}

		default:
			sb.WriteRune(r)

			inWord = true
		}
	}

	if inWord {
		words = append(words, sb.String())
	}

	return words
}

// JoinWords joins words with single spaces, quoting any word that
// [SplitWords] would otherwise split or drop.
func JoinWords(words []string) string {
	quoted := make([]string, len(words))

	for i, w := range words {
		if w == "" || strings.ContainsFunc(w, func(r rune) bool {
			return unicode.IsSpace(r) || r == '"' || r == '\\'
		}) {
			w = quoteString(w)
		}

		quoted[i] = w
	}

	return strings.Join(quoted, " ")
}

// quoteString encloses s in double quotes, escaping quotes, backslashes and
// control characters the parser understands.
func quoteString(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
