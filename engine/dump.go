package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DumpFormat selects the encoding written by [Engine.Dump].
type DumpFormat int

// Dump formats.
const (
	DumpJSON DumpFormat = iota
	DumpYAML
)

// DumpFormats returns the names accepted by [DumpFormat.UnmarshalText].
func DumpFormats() []string { return []string{"json", "yaml"} }

func (f DumpFormat) String() string {
	if f == DumpYAML {
		return "yaml"
	}

	return "json"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *DumpFormat) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "json":
		*f = DumpJSON
	case "yaml", "yml":
		*f = DumpYAML
	default:
		return NewError("invalid dump format").Wrapf(string(text))
	}

	return nil
}

// Tree is a resolved namespace: an ordered map from expanded key names to
// nil for keys without keys of their own, a []string of text for keys
// whose keys are all empty, or a nested Tree.
type Tree = orderedmap.OrderedMap[string, any]

// Tree returns the resolved keys of the current namespace.
func (e *Engine) Tree() *Tree {
	return e.tree(e.cursor, make(map[int]struct{}))
}

func (e *Engine) tree(ns int, active map[int]struct{}) *Tree {
	active[ns] = struct{}{}
	defer delete(active, ns)

	m := orderedmap.New[string, any]()

	for _, en := range e.entries(ns, true) {
		m.Set(e.interpolate(en.owner, en.name, en.origin), e.node(en.space, active))
	}

	return m
}

func (e *Engine) node(ns int, active map[int]struct{}) any {
	if _, ok := active[ns]; ok {
		return nil
	}

	list := e.entries(ns, true)
	if len(list) == 0 {
		return nil
	}

	for _, en := range list {
		if len(e.entries(en.space, true)) > 0 {
			return e.tree(ns, active)
		}
	}

	text, _ := e.expand(ns, 0)

	return text
}

// Dump writes the resolved keys of the current namespace to w. A positive
// indent pretty-prints the output.
func (e *Engine) Dump(w io.Writer, format DumpFormat, indent int) error {
	t := e.Tree()

	var (
		data []byte
		err  error
	)

	switch format {
	case DumpYAML:
		if indent <= 0 {
			indent = 2
		}

		data, err = yaml.MarshalWithOptions(mapSlice(t), yaml.Indent(indent))

	default:
		data, err = t.MarshalJSON()
		if err == nil && indent > 0 {
			var buf bytes.Buffer
			if err = json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err == nil {
				data = append(buf.Bytes(), '\n')
			}
		} else if err == nil {
			data = append(data, '\n')
		}
	}

	if err != nil {
		return NewError("dump failed").Wrap(err)
	}

	if _, err := w.Write(data); err != nil {
		return NewError("dump failed").Wrap(err)
	}

	return nil
}

// mapSlice converts t to the ordered form goccy/go-yaml encodes.
func mapSlice(t *Tree) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, t.Len())

	for p := t.Oldest(); p != nil; p = p.Next() {
		v := p.Value
		if sub, ok := v.(*Tree); ok {
			v = mapSlice(sub)
		}

		ms = append(ms, yaml.MapItem{Key: p.Key, Value: v})
	}

	return ms
}

// Check compiles every namespace reachable from the root and expands all
// text, reporting what it finds to the sink. It returns true if no
// diagnostics were reported since the last load.
func (e *Engine) Check() bool {
	visited := make(map[int]struct{})

	var walk func(int)

	walk = func(ns int) {
		if _, ok := visited[ns]; ok {
			return
		}

		visited[ns] = struct{}{}

		for _, en := range e.entries(ns, true) {
			e.interpolate(en.owner, en.name, en.origin)
			walk(en.space)
		}
	}

	walk(e.root)

	return e.count == 0
}
