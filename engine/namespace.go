package engine

import (
	"log/slog"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ardnew/mare/lang"
)

// Layer is the precedence layer a binding was added at.
type Layer uint8

// Precedence layers, lowest first.
const (
	LayerDefault Layer = iota
	LayerScript
	LayerCommandLine
)

func (l Layer) String() string {
	switch l {
	case LayerDefault:
		return "default"
	case LayerScript:
		return "script"
	case LayerCommandLine:
		return "command-line"
	}

	return "unknown"
}

// state is the compilation state of a namespace.
type state uint8

const (
	uncompiled state = iota
	compiled
)

// binding associates a key name with the namespace holding its value.
// The owner is the namespace whose statements declared the key; names and
// values are interpolated there.
type binding struct {
	origin lang.Position
	space  int
	owner  int
	layer  Layer
	// placed reports whether a command-line binding has taken the position
	// of its script declaration.
	placed bool
}

type entry struct {
	name string
	binding
}

type linkStatus uint8

const (
	linkUnresolved linkStatus = iota
	linkResolving
	linkResolved
	linkMissing
)

// link is a declared inheritance. Its target is resolved on first use.
type link struct {
	origin lang.Position
	target int
	status linkStatus
}

type bindings = orderedmap.OrderedMap[string, binding]

// space is one namespace in the engine's arena. It is both a navigable
// scope (its keys) and a value source (the text of its keys).
type space struct {
	vars     *bindings
	defaults *bindings
	inherits *orderedmap.OrderedMap[string, *link]
	prefix   *binding // value extended by "+="
	body     []lang.Statement
	appendTo string // name resolved outward for "+=" without a local prefix
	parent   int
	unnamed  int
	state    state
}

func (s *space) lookup(m *bindings, name string) (binding, bool) {
	if m == nil {
		return binding{}, false
	}

	return m.Get(name)
}

func (s *space) setVar(name string, b binding) {
	if s.vars == nil {
		s.vars = orderedmap.New[string, binding]()
	}

	s.vars.Set(name, b)
}

func (s *space) setDefault(name string, b binding) {
	if s.defaults == nil {
		s.defaults = orderedmap.New[string, binding]()
	}

	s.defaults.Set(name, b)
}

// reset drops compiled state and script bindings. Injected bindings stay.
func (s *space) reset() {
	s.state = uncompiled
	s.inherits = nil
	s.unnamed = -1

	if s.vars == nil {
		return
	}

	var script []string

	for p := s.vars.Oldest(); p != nil; p = p.Next() {
		if p.Value.layer == LayerScript {
			script = append(script, p.Key)
		}
	}

	for _, name := range script {
		s.vars.Delete(name)
	}

	for p := s.vars.Oldest(); p != nil; p = p.Next() {
		p.Value.placed = false
	}
}

func (e *Engine) newSpace(parent int, body []lang.Statement) int {
	e.spaces = append(e.spaces, &space{
		parent:  parent,
		unnamed: -1,
		body:    body,
	})

	return len(e.spaces) - 1
}

// newLeaf returns an empty compiled namespace.
func (e *Engine) newLeaf(parent int) int {
	ns := e.newSpace(parent, nil)
	e.spaces[ns].state = compiled

	return ns
}

// newValue returns a namespace whose keys are the words of value.
func (e *Engine) newValue(parent int, value string) int {
	words := lang.SplitWords(value)

	body := make([]lang.Statement, len(words))
	for i, w := range words {
		body[i] = &lang.Word{Text: w}
	}

	return e.newSpace(parent, body)
}

// compile applies the statements of ns once. The namespace is marked
// compiled first, so lookups made while compiling see the bindings added so
// far instead of recursing.
func (e *Engine) compile(ns int) {
	s := e.spaces[ns]

	switch s.state {
	case compiled:
		return
	case uncompiled:
	}

	s.state = compiled

	e.logger.Trace("compile",
		slog.Int("space", ns),
		slog.Int("statements", len(s.body)),
	)

	switch {
	case s.prefix != nil:
		e.splice(ns, s.prefix.space)
	case s.appendTo != "":
		if b, ok := e.resolveScript(s.parent, s.appendTo, ns); ok {
			e.splice(ns, b.space)
		}
	}

	for _, stmt := range s.body {
		e.apply(ns, stmt)
	}
}

func (e *Engine) apply(ns int, stmt lang.Statement) {
	switch stmt := stmt.(type) {
	case *lang.Block:
		for _, c := range stmt.Statements {
			e.apply(ns, c)
		}

	case *lang.Word:
		e.bindScript(ns, stmt.Text, binding{
			origin: stmt.Position,
			space:  e.newLeaf(ns),
			owner:  ns,
			layer:  LayerScript,
		})

	case *lang.Assign:
		e.assign(ns, stmt)

	case *lang.Inherit:
		s := e.spaces[ns]
		if s.inherits == nil {
			s.inherits = orderedmap.New[string, *link]()
		}

		if _, ok := s.inherits.Get(stmt.Name); !ok {
			s.inherits.Set(stmt.Name, &link{origin: stmt.Position, target: -1})
		}

	case *lang.Reference:
		b, ok := e.resolveScript(ns, stmt.Name, ns)
		if !ok {
			e.diagnose(stmt.Position, ErrResolution.Wrapf(
				"unknown key", quote(stmt.Name)+e.suggest(ns, stmt.Name)))

			return
		}

		e.splice(ns, b.space)

	case *lang.If:
		if e.condition(ns, stmt) {
			e.apply(ns, stmt.Then)
		} else if stmt.Else != nil {
			e.apply(ns, stmt.Else)
		}

	case *lang.Include:
		if stmt.Body != nil {
			e.apply(ns, stmt.Body)
		}
	}
}

func (e *Engine) assign(ns int, a *lang.Assign) {
	var body []lang.Statement
	if a.Value != nil {
		body = a.Value.Statements
	}

	child := e.newSpace(ns, body)

	if a.Append {
		s := e.spaces[ns]
		if prev, ok := s.lookup(s.vars, a.Name); ok {
			e.spaces[child].prefix = &prev
		} else if prev, ok := s.lookup(s.defaults, a.Name); ok {
			e.spaces[child].prefix = &prev
		} else {
			e.spaces[child].appendTo = a.Name
		}
	}

	e.bindScript(ns, a.Name, binding{
		origin: a.Position,
		space:  child,
		owner:  ns,
		layer:  LayerScript,
	})
}

// bindScript binds a key declared by script content. A later declaration
// replaces an earlier one in place; command-line bindings are never
// replaced, but move to the position of the first script declaration.
func (e *Engine) bindScript(ns int, name string, b binding) {
	s := e.spaces[ns]

	if cur, ok := s.lookup(s.vars, name); ok && cur.layer == LayerCommandLine {
		// The first declaration decides the position of the key.
		if !cur.placed {
			cur.placed = true
			s.vars.Set(name, cur)
			_ = s.vars.MoveToBack(name)
		}

		return
	}

	s.setVar(name, b)
}

// splice binds every key of src into ns.
func (e *Engine) splice(ns, src int) {
	for _, en := range e.entries(src, true) {
		b := en.binding
		b.layer = LayerScript

		e.bindScript(ns, en.name, b)
	}
}

// entries lists the keys of ns: local keys, then keys of inherited
// namespaces in declaration order, then defaults. The first binding of each
// name wins.
func (e *Engine) entries(ns int, inherit bool) []entry {
	var (
		list    []entry
		seen    = make(map[string]struct{})
		visited = make(map[int]struct{})
	)

	var collect func(int)

	collect = func(ns int) {
		if _, ok := visited[ns]; ok {
			return
		}

		visited[ns] = struct{}{}

		e.compile(ns)

		s := e.spaces[ns]

		add := func(m *bindings) {
			if m == nil {
				return
			}

			for p := m.Oldest(); p != nil; p = p.Next() {
				if _, ok := seen[p.Key]; !ok {
					seen[p.Key] = struct{}{}
					list = append(list, entry{name: p.Key, binding: p.Value})
				}
			}
		}

		add(s.vars)

		if inherit && s.inherits != nil {
			for p := s.inherits.Oldest(); p != nil; p = p.Next() {
				if t, ok := e.inheritTarget(ns, p.Key, p.Value); ok {
					collect(t)
				}
			}
		}

		add(s.defaults)
	}

	collect(ns)

	return list
}

// member finds name in ns: local keys, then inherited namespaces, then
// defaults. Namespaces already in visited are skipped, which bounds the
// search on inheritance cycles. Bindings of the namespace exclude are
// ignored.
func (e *Engine) member(
	ns int,
	name string,
	visited map[int]struct{},
	exclude int,
) (binding, bool) {
	if _, ok := visited[ns]; ok {
		return binding{}, false
	}

	visited[ns] = struct{}{}

	e.compile(ns)

	s := e.spaces[ns]

	if b, ok := s.lookup(s.vars, name); ok && b.space != exclude {
		return b, true
	}

	if s.inherits != nil {
		for p := s.inherits.Oldest(); p != nil; p = p.Next() {
			t, ok := e.inheritTarget(ns, p.Key, p.Value)
			if !ok {
				continue
			}

			if b, ok := e.member(t, name, visited, exclude); ok {
				return b, true
			}
		}
	}

	if b, ok := s.lookup(s.defaults, name); ok && b.space != exclude {
		return b, true
	}

	return binding{}, false
}

// resolveScript finds name in ns or the closest lexical ancestor that
// declares it.
func (e *Engine) resolveScript(ns int, name string, exclude int) (binding, bool) {
	visited := make(map[int]struct{})

	for cur := ns; cur >= 0; cur = e.spaces[cur].parent {
		if b, ok := e.member(cur, name, visited, exclude); ok {
			return b, true
		}
	}

	return binding{}, false
}

// inheritTarget returns the namespace the inheritance name of ns refers to.
// The name is resolved from the enclosing scope of ns, never from ns
// itself, and the result is cached in l.
func (e *Engine) inheritTarget(ns int, name string, l *link) (int, bool) {
	switch l.status {
	case linkResolved:
		return l.target, true
	case linkResolving, linkMissing:
		return -1, false
	case linkUnresolved:
	}

	l.status = linkResolving

	from := e.spaces[ns].parent
	if from < 0 {
		from = ns
	}

	b, ok := e.resolveScript(from, name, ns)
	if !ok {
		l.status = linkMissing

		e.diagnose(l.origin, ErrResolution.Wrapf(
			"unknown base key", quote(name)+e.suggest(from, name)))

		return -1, false
	}

	l.status = linkResolved
	l.target = b.space

	e.logger.Trace("inherit",
		slog.String("name", name),
		slog.Int("space", ns),
		slog.Int("target", b.space),
	)

	return l.target, true
}

func quote(name string) string { return `"` + name + `"` }
