package engine

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/ardnew/mare/lang"
)

// condition evaluates the expression of an if statement declared in ns.
// Identifiers name keys visible from ns, or builtins. A key with text
// evaluates to its text joined by spaces; a key without text is true.
// Evaluation errors are reported and count as false.
func (e *Engine) condition(ns int, stmt *lang.If) bool {
	e.pushKey(ns)
	defer e.popKey()

	result, err := e.evaluate(stmt.Condition)
	if err != nil {
		e.diagnose(stmt.Position, ErrCondition.Wrap(err).
			With(slog.String("condition", stmt.Condition)))

		return false
	}

	ok := truthy(result)

	e.logger.Trace("condition",
		slog.String("expr", stmt.Condition),
		slog.String("type", resultTypeName(result)),
		slog.Bool("result", ok),
	)

	return ok
}

// evaluate compiles and runs src against the keys visible from the cursor.
func (e *Engine) evaluate(src string) (any, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	env := makeEnvCache()
	env["env"] = envFunc(buildProcessEnvMap(nil))

	patch := &hyphenPatcher{
		known:  func(name string) bool { return e.hasName(name) },
		env:    env,
		logger: e.logger,
	}

	ast.Walk(&tree.Node, patch)

	idents := &identCollector{}
	ast.Walk(&tree.Node, idents)

	for _, name := range idents.names {
		if v, ok := e.conditionValue(name); ok {
			env[name] = v
		}
	}

	program, err := expr.Compile(src,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.Patch(patch),
	)
	if err != nil {
		return nil, err
	}

	return expr.Run(program, env)
}

func (e *Engine) hasName(name string) bool {
	_, ok := e.resolveScript(e.cursor, name, -1)

	return ok
}

func (e *Engine) conditionValue(name string) (any, bool) {
	b, ok := e.resolveScript(e.cursor, name, -1)
	if !ok {
		return nil, false
	}

	text, _ := e.expand(b.space, 0)
	if len(text) == 0 {
		return true, true
	}

	return strings.Join(text, " "), true
}

// identCollector records the distinct identifiers of an expression.
type identCollector struct {
	names []string
	seen  map[string]struct{}
}

// Visit implements ast.Visitor.
func (c *identCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}

	if _, dup := c.seen[id.Value]; !dup {
		c.seen[id.Value] = struct{}{}
		c.names = append(c.names, id.Value)
	}
}

// truthy converts the result of a condition to a bool.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	default:
		return true
	}
}

// resultTypeName returns a string representation of a value's type.
func resultTypeName(v any) string {
	if v == nil {
		return "nil"
	}

	switch v.(type) {
	case bool:
		return "bool"
	case int, int8, int16, int32, int64:
		return "int"
	case uint, uint8, uint16, uint32, uint64:
		return "uint"
	case float32, float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
