package engine

import (
	"strings"

	"github.com/ardnew/mare/lang"
)

// expand returns the keys of ns with references expanded, at most limit of
// them if limit is positive. It reports false if ns is already being
// expanded further up the call stack.
func (e *Engine) expand(ns, limit int) ([]string, bool) {
	if _, busy := e.expanding[ns]; busy {
		return nil, false
	}

	e.expanding[ns] = struct{}{}
	defer delete(e.expanding, ns)

	list := e.entries(ns, true)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	text := make([]string, len(list))
	for i, en := range list {
		text[i] = e.interpolate(en.owner, en.name, en.origin)
	}

	return text, true
}

// interpolate replaces each "${name}" in raw with the first text value of
// the key name, resolved from ns. "$$" is a literal "$". References that
// cannot be resolved are reported at origin and replaced with nothing.
func (e *Engine) interpolate(ns int, raw string, origin lang.Position) string {
	if !strings.Contains(raw, "$") {
		return raw
	}

	var sb strings.Builder

	sb.Grow(len(raw))

	for rest := raw; rest != ""; {
		i := strings.IndexByte(rest, '$')
		if i < 0 {
			sb.WriteString(rest)

			break
		}

		sb.WriteString(rest[:i])
		rest = rest[i:]

		switch {
		case strings.HasPrefix(rest, "$$"):
			sb.WriteByte('$')

			rest = rest[2:]

		case strings.HasPrefix(rest, "${"):
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				sb.WriteString(rest)

				rest = ""

				continue
			}

			sb.WriteString(e.substitute(ns, rest[2:end], origin))

			rest = rest[end+1:]

		default:
			sb.WriteByte('$')

			rest = rest[1:]
		}
	}

	return sb.String()
}

func (e *Engine) substitute(ns int, name string, origin lang.Position) string {
	b, ok := e.resolveScript(ns, name, -1)
	if !ok {
		e.diagnose(origin, ErrResolution.Wrapf("unknown key", quote(name)+e.suggest(ns, name)))

		return ""
	}

	text, ok := e.expand(b.space, 1)
	if !ok {
		e.diagnose(origin, ErrCycle.Wrapf("key", quote(name), "refers to itself"))

		return ""
	}

	return first(text)
}
