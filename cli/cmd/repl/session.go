package repl

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/lang"
)

// commands are the names a session understands, in help order.
var commands = []string{
	"cd", "ls", "text", "origin", "dump", "pwd", "reset", "help", "clear", "quit",
}

func helpMessage() string {
	return `
Commands:

  cd [key]       Enter key ("a/b" for nested keys, ".." for the parent, "/" for the root)
  ls [key]       List the keys of the current key or of key
  text [key]     Print the interpolated text of the current key or of key
  origin key     Print where key was declared
  dump [key]     Print the resolved tree below the current key or key as YAML
  pwd            Print the current key path
  reset          Recompile the current key
  help           Print this help
  clear          Clear screen
  quit           Exit

Press Tab / Shift-Tab to cycle through completions, Up/Down for history,
Ctrl+C on an empty line or Ctrl+D to exit.
`
}

// result is the outcome of one command.
type result struct {
	out         []string
	diagnostics []engine.Diagnostic
	clear       bool
	quit        bool
}

// session interprets commands against an engine. The engine cursor is
// moved to the session's path before every query.
type session struct {
	eng   *engine.Engine
	diags *engine.Collector
	path  []string
}

func newSession(eng *engine.Engine, diags *engine.Collector) *session {
	return &session{eng: eng, diags: diags}
}

// pwd returns the current key path.
func (s *session) pwd() string { return "/" + strings.Join(s.path, "/") }

// exec runs one command line.
func (s *session) exec(line string) (res result, err error) {
	defer func() {
		res.diagnostics = s.diags.Diagnostics()
		s.diags.Reset()
	}()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return res, nil
	}

	name, args := fields[0], fields[1:]
	arg := strings.Join(args, " ")

	switch name {
	case "q", "quit", "exit":
		res.quit = true

	case "h", "help":
		res.out = []string{helpMessage()}

	case "c", "clear":
		res.clear = true

	case "pwd":
		res.out = []string{s.pwd()}

	case "cd":
		if arg == "" {
			arg = "/"
		}

		path, err := s.resolve(arg)
		if err != nil {
			return res, err
		}

		s.path = path

	case "ls":
		err = s.query(arg, func() error {
			res.out = s.eng.Keys()

			return nil
		})

	case "text":
		err = s.query(arg, func() error {
			res.out = []string{lang.JoinWords(s.eng.Text())}

			return nil
		})

	case "dump":
		err = s.query(arg, func() (err error) {
			res.out, err = dumpLines(s.eng)

			return err
		})

	case "origin":
		if arg == "" {
			return res, fmt.Errorf("origin: %w", ErrMissingArg)
		}

		res.out, err = s.origin(arg)

	case "reset":
		if err = s.enter(s.path); err == nil {
			s.eng.Reset()
		}

	default:
		return res, fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}

	return res, err
}

// query runs fn with the engine cursor at the key named by arg.
func (s *session) query(arg string, fn func() error) error {
	if _, err := s.resolve(arg); err != nil {
		return err
	}

	return fn()
}

type dumper interface {
	Dump(w io.Writer, format engine.DumpFormat, indent int) error
}

// dumpLines returns the YAML dump of d as one output entry.
func dumpLines(d dumper) ([]string, error) {
	var buf bytes.Buffer

	if err := d.Dump(&buf, engine.DumpYAML, 2); err != nil {
		return nil, err
	}

	return []string{strings.TrimRight(buf.String(), "\n")}, nil
}

func (s *session) origin(arg string) ([]string, error) {
	path, err := s.resolve(arg)
	if err != nil {
		return nil, err
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("%q: %w", arg, ErrUnknownKey)
	}

	if err := s.enter(path[:len(path)-1]); err != nil {
		return nil, err
	}

	origin := s.eng.KeyOrigin(path[len(path)-1])
	if origin == "" {
		origin = "-"
	}

	return []string{origin}, nil
}

// resolve returns the absolute key path named by arg relative to the
// session path, verifying that every key exists. Keys are separated by
// "/"; ".." names the parent and a leading "/" the root.
func (s *session) resolve(arg string) ([]string, error) {
	path := slices.Clone(s.path)
	if strings.HasPrefix(arg, "/") {
		path = nil
	}

	for seg := range strings.SplitSeq(arg, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		default:
			path = append(path, seg)
		}
	}

	if err := s.enter(path); err != nil {
		return nil, err
	}

	return path, nil
}

// enter moves the engine cursor to path, starting from the root.
func (s *session) enter(path []string) error {
	s.eng.EnterRootKey()

	for i, key := range path {
		if !s.eng.EnterKey(key, true) {
			return fmt.Errorf("%q: %w", "/"+strings.Join(path[:i+1], "/"), ErrUnknownKey)
		}
	}

	return nil
}

// keysAt returns the keys of the key named by parent relative to the
// session path, or nil if it does not exist.
func (s *session) keysAt(parent string) []string {
	if _, err := s.resolve(parent); err != nil {
		return nil
	}

	return s.eng.Keys()
}
