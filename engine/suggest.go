package engine

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions limits the names offered for a misspelled key.
const maxSuggestions = 3

// suggest returns a " (did you mean ...)" hint listing the visible key
// names of ns and its ancestors that fuzzily match name, or the empty
// string.
func (e *Engine) suggest(ns int, name string) string {
	var (
		candidates []string
		seen       = make(map[string]struct{})
	)

	for cur := ns; cur >= 0; cur = e.spaces[cur].parent {
		for _, en := range e.entries(cur, true) {
			if strings.ContainsAny(en.name, "${} \t") || en.name == name {
				continue
			}

			if _, ok := seen[en.name]; !ok {
				seen[en.name] = struct{}{}
				candidates = append(candidates, en.name)
			}
		}
	}

	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}

	var hint []string

	for _, m := range matches {
		if len(hint) == maxSuggestions {
			break
		}

		hint = append(hint, quote(m.Str))
	}

	return " (did you mean " + strings.Join(hint, ", ") + "?)"
}
