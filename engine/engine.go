package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/ardnew/mare/lang"
	"github.com/ardnew/mare/log"
)

// Engine resolves the keys of a loaded Marefile.
//
// An Engine holds a cursor into its namespace tree. Navigation methods move
// the cursor; query methods read keys relative to it. Namespaces compile
// lazily the first time their keys are needed.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	sink      Sink
	logger    log.Logger
	spaces    []*space
	path      []int // namespaces the cursor was entered from
	stash     Stack[frame]
	expanding map[int]struct{}
	reported  map[string]struct{}
	parseOpts []lang.Option
	file      string
	mareDir   string
	root      int
	cursor    int
	count     int
}

type frame struct {
	path   []int
	cursor int
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithParseOptions sets options passed to the Marefile parser on load.
func WithParseOptions(opts ...lang.Option) Option {
	return func(e *Engine) { e.parseOpts = append(e.parseOpts, opts...) }
}

// New returns an Engine with an empty root namespace. Every diagnostic is
// delivered to sink, which may be nil.
func New(sink Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = SinkFunc(func(Diagnostic) {})
	}

	e := &Engine{
		sink:      sink,
		expanding: make(map[int]struct{}),
		reported:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.root = e.newLeaf(-1)
	e.cursor = e.root

	return e
}

// Load parses file and makes it the script of the root namespace. Every
// syntax error is reported to the sink; Load returns false if there were
// any. Keys injected before Load are kept.
func (e *Engine) Load(ctx context.Context, file string) bool {
	b, err := lang.ParseFile(ctx, file, e.parseOpts...)

	return e.attach(ctx, file, b, err)
}

// LoadString is like [Engine.Load] but parses src as the contents of name.
func (e *Engine) LoadString(ctx context.Context, name, src string) bool {
	b, err := lang.ParseString(ctx, name, src, e.parseOpts...)

	return e.attach(ctx, name, b, err)
}

// LoadReader is like [Engine.Load] but parses everything read from r as the
// contents of name.
func (e *Engine) LoadReader(ctx context.Context, name string, r io.Reader) bool {
	b, err := lang.ParseReader(ctx, name, r, e.parseOpts...)

	return e.attach(ctx, name, b, err)
}

func (e *Engine) attach(ctx context.Context, name string, b *lang.Block, err error) bool {
	clear(e.reported)

	e.count = 0
	e.file = name
	e.mareDir = filepath.Dir(name)

	if abs, aerr := filepath.Abs(e.mareDir); aerr == nil {
		e.mareDir = abs
	}

	if err != nil {
		var list lang.Errors

		switch {
		case errors.As(err, &list):
			for _, le := range list {
				e.diagnose(le.Position(), ErrLoad.Wrap(le))
			}
		default:
			e.diagnose(lang.Position{File: name}, ErrLoad.Wrap(err))
		}
	}

	root := e.spaces[e.root]
	root.reset()
	root.body = b.Statements

	e.cursor = e.root
	e.path = nil

	e.logger.DebugContext(ctx, "load",
		slog.String("file", name),
		slog.Int("statements", len(b.Statements)),
		slog.Bool("ok", err == nil),
	)

	return err == nil
}

// File returns the name of the loaded file.
func (e *Engine) File() string { return e.file }

// MareDir returns the directory containing the loaded file, for resolving
// paths relative to it.
func (e *Engine) MareDir() string { return e.mareDir }

// Diagnostics returns the number of diagnostics reported since the last
// load.
func (e *Engine) Diagnostics() int { return e.count }

func (e *Engine) diagnose(pos lang.Position, err *Error) {
	d := Diagnostic{
		Err:     err,
		File:    pos.File,
		Line:    pos.Line,
		Message: err.Error(),
	}

	var le *lang.Error
	if errors.As(err, &le) && le.Position().IsValid() {
		d.Message = err.msg + ": " + le.Message()
	}

	key := d.String()
	if _, ok := e.reported[key]; ok {
		return
	}

	e.reported[key] = struct{}{}
	e.count++

	e.logger.Debug("diagnostic", slog.Any("diagnostic", d))
	e.sink.Diagnose(d)
}

// Navigation

// EnterKey moves the cursor to the key named key. Local keys are searched
// first, then, if allowInheritance is set, the keys of inherited
// namespaces in declaration order, then defaults. The cursor does not move
// if the key does not exist.
func (e *Engine) EnterKey(key string, allowInheritance bool) bool {
	b, ok := e.lookup(e.cursor, key, allowInheritance)
	if !ok {
		return false
	}

	e.enter(b.space)

	return true
}

// EnterUnnamedKey moves the cursor to the anonymous namespace of the
// current key, creating it if needed. Names not found in the anonymous
// namespace resolve in its parent.
func (e *Engine) EnterUnnamedKey() {
	e.compile(e.cursor)

	s := e.spaces[e.cursor]
	if s.unnamed < 0 {
		s.unnamed = e.newLeaf(e.cursor)
	}

	e.enter(s.unnamed)
}

// EnterNewKey moves the cursor to the key named key, creating an empty
// default key if the current namespace does not declare one.
func (e *Engine) EnterNewKey(key string) {
	e.compile(e.cursor)

	s := e.spaces[e.cursor]

	b, ok := s.lookup(s.vars, key)
	if !ok {
		b, ok = s.lookup(s.defaults, key)
	}

	if !ok {
		b = binding{space: e.newLeaf(e.cursor), owner: e.cursor, layer: LayerDefault}
		s.setDefault(key, b)
	}

	e.enter(b.space)
}

// EnterRootKey moves the cursor to the root namespace.
func (e *Engine) EnterRootKey() {
	e.cursor = e.root
	e.path = e.path[:0]
}

// LeaveKey moves the cursor back to the namespace it was entered from. It
// returns false at the root.
func (e *Engine) LeaveKey() bool {
	if len(e.path) == 0 {
		parent := e.spaces[e.cursor].parent
		if parent < 0 {
			return false
		}

		e.cursor = parent

		return true
	}

	e.cursor = e.path[len(e.path)-1]
	e.path = e.path[:len(e.path)-1]

	return true
}

// Path returns the number of keys entered since the root.
func (e *Engine) Path() int { return len(e.path) }

func (e *Engine) enter(ns int) {
	e.compile(ns)

	e.path = append(e.path, e.cursor)
	e.cursor = ns
}

// pushKey saves the cursor and moves it to ns.
func (e *Engine) pushKey(ns int) {
	e.stash.Push(frame{path: e.path, cursor: e.cursor})

	e.path = nil
	e.cursor = ns
}

// popKey restores the cursor saved by the matching pushKey.
func (e *Engine) popKey() {
	f := e.stash.Pop()

	e.path = f.path
	e.cursor = f.cursor
}

// Depth returns the number of saved cursors. It is zero whenever no query
// is in progress.
func (e *Engine) Depth() int { return e.stash.Depth() }

// Queries

func (e *Engine) lookup(ns int, key string, inherit bool) (binding, bool) {
	e.compile(ns)

	if inherit {
		return e.member(ns, key, make(map[int]struct{}), -1)
	}

	s := e.spaces[ns]

	if b, ok := s.lookup(s.vars, key); ok {
		return b, true
	}

	return s.lookup(s.defaults, key)
}

// HasKey reports whether key exists in the current namespace.
func (e *Engine) HasKey(key string, allowInheritance bool) bool {
	_, ok := e.lookup(e.cursor, key, allowInheritance)

	return ok
}

// KeyOrigin returns the "file:line" of the statement that declared the
// effective value of key, or the empty string if key does not exist or was
// injected.
func (e *Engine) KeyOrigin(key string) string {
	b, ok := e.lookup(e.cursor, key, true)
	if !ok {
		return ""
	}

	return b.origin.String()
}

// Keys returns the names of the keys of the current namespace in
// declaration order. Local keys shadow inherited keys of the same name.
func (e *Engine) Keys() []string {
	return names(e.entries(e.cursor, true))
}

// KeysOf returns the names of the keys of key. It reports false if key does
// not exist.
func (e *Engine) KeysOf(key string, allowInheritance bool) ([]string, bool) {
	b, ok := e.lookup(e.cursor, key, allowInheritance)
	if !ok {
		return nil, false
	}

	return names(e.entries(b.space, true)), true
}

// FirstKey returns the first of [Engine.Keys], or the empty string.
func (e *Engine) FirstKey() string {
	return first(e.Keys())
}

// FirstKeyOf returns the first of [Engine.KeysOf], or the empty string.
func (e *Engine) FirstKeyOf(key string, allowInheritance bool) string {
	keys, _ := e.KeysOf(key, allowInheritance)

	return first(keys)
}

// Text returns the keys of the current namespace with "${name}"
// references expanded.
func (e *Engine) Text() []string {
	text, _ := e.expand(e.cursor, 0)

	return text
}

// TextOf returns the keys of key with references expanded. It reports
// false if key does not exist.
func (e *Engine) TextOf(key string, allowInheritance bool) ([]string, bool) {
	b, ok := e.lookup(e.cursor, key, allowInheritance)
	if !ok {
		return nil, false
	}

	text, _ := e.expand(b.space, 0)

	return text, true
}

func names(list []entry) []string {
	out := make([]string, len(list))
	for i, en := range list {
		out[i] = en.name
	}

	return out
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}

	return list[0]
}

// Injection

// AddDefaultKey adds an empty key with the lowest precedence to the
// current namespace.
func (e *Engine) AddDefaultKey(key string) {
	e.spaces[e.cursor].setDefault(key, binding{
		space: e.newLeaf(e.cursor),
		owner: e.cursor,
		layer: LayerDefault,
	})
}

// AddDefaultValue adds key with the lowest precedence to the current
// namespace. The value is split into words, each becoming a key of key.
func (e *Engine) AddDefaultValue(key, value string) {
	e.spaces[e.cursor].setDefault(key, binding{
		space: e.newValue(e.cursor, value),
		owner: e.cursor,
		layer: LayerDefault,
	})
}

// AddDefaultMap adds key with the lowest precedence to the current
// namespace, with one default key per entry of m in sorted order.
func (e *Engine) AddDefaultMap(key string, m map[string]string) {
	ns := e.newLeaf(e.cursor)
	s := e.spaces[ns]

	for _, k := range slices.Sorted(maps.Keys(m)) {
		s.setDefault(k, binding{
			space: e.newValue(ns, m[k]),
			owner: ns,
			layer: LayerDefault,
		})
	}

	e.spaces[e.cursor].setDefault(key, binding{
		space: ns,
		owner: e.cursor,
		layer: LayerDefault,
	})
}

// AddCommandLineKey adds key with the highest precedence to the current
// namespace. Script declarations of key are ignored except for the
// position they give key among its siblings; a later call replaces the
// value of an earlier one.
func (e *Engine) AddCommandLineKey(key, value string) {
	e.spaces[e.cursor].setVar(key, binding{
		space: e.newValue(e.cursor, value),
		owner: e.cursor,
		layer: LayerCommandLine,
	})
}

// Reset discards the compiled state and script keys of the current
// namespace. The next query recompiles it, resolving inherited keys again.
// Injected keys are kept.
func (e *Engine) Reset() {
	e.spaces[e.cursor].reset()

	e.logger.Trace("reset", slog.Int("space", e.cursor))
}
