package lang

import (
	"strconv"
)

// Position identifies a location in a Marefile. Lines and columns are
// 1-based; the zero Position marks a statement with no textual origin.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether p refers to a source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "file:line", or the empty string for an invalid Position.
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}

	return p.File + ":" + strconv.Itoa(p.Line)
}

// Pos returns p. Embedding Position gives every statement its origin.
func (p Position) Pos() Position { return p }

// Statement is a node of a parsed Marefile.
//
// The concrete types are [*Block], [*Word], [*Assign], [*Inherit],
// [*Reference], [*If], and [*Include].
type Statement interface {
	Pos() Position
	statement()
}

// Block is a brace-delimited statement list, or the top level of a file.
type Block struct {
	Position
	Statements []Statement
}

// Word is a bare or quoted term. It declares a key named by its text.
type Word struct {
	Position
	Text   string
	Quoted bool
}

// Assign declares a nested key whose value is compiled from Value.
// With Append set (the "+=" operator), Value extends the key's previous
// value instead of replacing it.
type Assign struct {
	Position
	Value  *Block
	Name   string
	Append bool
}

// Inherit declares that lookups in the enclosing key fall back to the
// key Name, resolved from the enclosing key's scope.
type Inherit struct {
	Position
	Name string
}

// Reference is a term consisting of a single "${Name}". It splices the
// keys of Name into the enclosing key.
type Reference struct {
	Position
	Name string
}

// If applies Then when Condition holds, otherwise Else. Else is nil, a
// [*Block], or another [*If].
type If struct {
	Position
	Then      *Block
	Else      Statement
	Condition string
}

// Include is an "include" directive. Body holds the parsed statements of
// the included file; Path is the path as written.
type Include struct {
	Position
	Body *Block
	Path string
}

func (*Block) statement()     {}
func (*Word) statement()      {}
func (*Assign) statement()    {}
func (*Inherit) statement()   {}
func (*Reference) statement() {}
func (*If) statement()        {}
func (*Include) statement()   {}

// Inherits returns the names of the leading [*Inherit] statements of b,
// which is how "name : Base Other { ... }" is represented.
func (b *Block) Inherits() []string {
	if b == nil {
		return nil
	}

	var names []string

	for _, s := range b.Statements {
		in, ok := s.(*Inherit)
		if !ok {
			break
		}

		names = append(names, in.Name)
	}

	return names
}

// Walk calls fn for every statement reachable from s in source order,
// descending into blocks, assignments, conditional branches and included
// files. Returning false from fn skips the statement's children.
func Walk(s Statement, fn func(Statement) bool) {
	if s == nil || !fn(s) {
		return
	}

	switch s := s.(type) {
	case *Block:
		for _, c := range s.Statements {
			Walk(c, fn)
		}
	case *Assign:
		if s.Value != nil {
			Walk(s.Value, fn)
		}
	case *If:
		if s.Then != nil {
			Walk(s.Then, fn)
		}

		Walk(s.Else, fn)
	case *Include:
		if s.Body != nil {
			Walk(s.Body, fn)
		}
	}
}
