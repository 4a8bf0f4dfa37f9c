package engine

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/mare/log"
)

// hyphenPatcher rejoins hyphenated key names that expr-lang parsed as
// subtraction. "build-mode" parses as build - mode; when build-mode names a
// visible key, the subtraction becomes the identifier build-mode. Member
// chains such as file.is-dir are rejoined against maps of the builtin
// environment.
type hyphenPatcher struct {
	known  func(name string) bool
	env    map[string]any
	logger log.Logger
}

// Visit implements ast.Visitor.
func (p *hyphenPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "-" {
		return
	}

	right, ok := bin.Right.(*ast.IdentifierNode)
	if !ok {
		return
	}

	base, prefix, ok := hyphenChain(bin.Left)
	if !ok {
		return
	}

	combined := prefix + "-" + right.Value

	if base == nil {
		if p.hasTopLevel(combined) {
			ast.Patch(node, &ast.IdentifierNode{Value: combined})
			p.trace(combined, "identifier")
		}

		return
	}

	path, ok := memberPath(base)
	if !ok || !p.hasChild(path, combined) {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     base,
		Property: &ast.StringNode{Value: combined},
	})
	p.trace(combined, "member")
}

func (p *hyphenPatcher) trace(name, kind string) {
	p.logger.Trace("patch hyphenated",
		slog.String("name", name),
		slog.String("kind", kind),
	)
}

// hyphenChain returns the text of an unpatched subtraction chain ending in
// n and the node it is a member of, or a nil base for a bare identifier
// chain.
func hyphenChain(n ast.Node) (base ast.Node, name string, ok bool) {
	switch n := n.(type) {
	case *ast.IdentifierNode:
		return nil, n.Value, true

	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, "", false
		}

		return n.Node, prop.Value, true

	case *ast.BinaryNode:
		right, ok := n.Right.(*ast.IdentifierNode)
		if n.Operator != "-" || !ok {
			return nil, "", false
		}

		base, name, ok := hyphenChain(n.Left)
		if !ok {
			return nil, "", false
		}

		return base, name + "-" + right.Value, true
	}

	return nil, "", false
}

// memberPath returns the segments of an identifier or member chain.
func memberPath(n ast.Node) ([]string, bool) {
	switch n := n.(type) {
	case *ast.IdentifierNode:
		return []string{n.Value}, true

	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, false
		}

		base, ok := memberPath(n.Node)
		if !ok {
			return nil, false
		}

		return append(base, prop.Value), true
	}

	return nil, false
}

func (p *hyphenPatcher) hasTopLevel(name string) bool {
	if p.known != nil && p.known(name) {
		return true
	}

	_, ok := p.env[name]

	return ok
}

// hasChild reports whether the builtin map at path has the key name.
func (p *hyphenPatcher) hasChild(path []string, name string) bool {
	var cur any = p.env

	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}

		if cur, ok = m[seg]; !ok {
			return false
		}
	}

	m, ok := cur.(map[string]any)
	if !ok {
		return false
	}

	_, ok = m[name]

	return ok
}
