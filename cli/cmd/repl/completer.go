package repl

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// wordBounds returns the whitespace-delimited word at the cursor position
// and its byte boundaries within input. The word is empty when the cursor
// follows whitespace or is at the start of an empty line.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if unicode.IsSpace(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if unicode.IsSpace(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// splitLeaf splits a key path argument into the path of its parent and
// the last, possibly partial, key.
func splitLeaf(word string) (parent, leaf string) {
	i := strings.LastIndexByte(word, '/')
	if i < 0 {
		return "", word
	}

	parent = word[:i]
	if parent == "" {
		parent = "/"
	}

	return parent, word[i+1:]
}

// completion is the set of candidates for the text at the cursor. Choosing
// a candidate replaces input[start:end].
type completion struct {
	matches    fuzzy.Matches
	start, end int
}

// complete returns the completion for input with the cursor at cursor. The
// first word completes command names; later words complete keys relative
// to the session path.
func (s *session) complete(input string, cursor int) completion {
	word, start, end := wordBounds(input, cursor)

	if strings.TrimSpace(input[:start]) == "" {
		if word == "" {
			return completion{start: start, end: end}
		}

		return completion{
			matches: fuzzy.Find(word, commands),
			start:   start,
			end:     end,
		}
	}

	parent, leaf := splitLeaf(word)
	start = end - len(leaf)

	candidates := s.keysAt(parent)
	if len(candidates) == 0 {
		return completion{start: start, end: end}
	}

	if leaf == "" {
		matches := make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return completion{matches: matches, start: start, end: end}
	}

	return completion{
		matches: rank(fuzzy.Find(leaf, candidates)),
		start:   start,
		end:     end,
	}
}

// rank orders matches by descending score. Equal scores keep the
// declaration order of their candidates.
func rank(matches fuzzy.Matches) fuzzy.Matches {
	slices.SortStableFunc(matches, func(a, b fuzzy.Match) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.Index, b.Index))
	})

	return matches
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. The selected candidate is highlighted while tabbing.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// emphasized.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
