package flowruntime

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"time"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// evalScope resolves identifiers for condition/duration/argument expression
// text captured verbatim by the flow analyzer (spec §4.4: "condition is
// captured as uninterpreted source text to be evaluated by the runtime").
// The identifiers true, false and nil resolve to their constants before the
// context is consulted; every other bare name resolves against the current
// context. time.Second/Minute/... selectors resolve to their durations, so
// duration expressions like "5*time.Second" evaluate without requiring a
// real import.
type evalScope struct {
	ctx *blueprint.Context
}

var timeConstants = map[string]time.Duration{
	"Nanosecond":  time.Nanosecond,
	"Microsecond": time.Microsecond,
	"Millisecond": time.Millisecond,
	"Second":      time.Second,
	"Minute":      time.Minute,
	"Hour":        time.Hour,
}

// evalExpr parses and evaluates a single Go expression against scope.
func evalExpr(exprText string, scope evalScope) (any, error) {
	expr, err := parser.ParseExpr(exprText)
	if err != nil {
		return nil, fmt.Errorf("flowruntime: invalid expression %q: %w", exprText, err)
	}
	return scope.eval(expr)
}

func (s evalScope) eval(e ast.Expr) (any, error) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return s.eval(n.X)
	case *ast.Ident:
		return s.ident(n.Name)
	case *ast.BasicLit:
		return literalValue(n)
	case *ast.UnaryExpr:
		return s.unary(n)
	case *ast.BinaryExpr:
		return s.binary(n)
	case *ast.SelectorExpr:
		return s.selector(n)
	default:
		return nil, fmt.Errorf("flowruntime: unsupported expression form %T", e)
	}
}

func (s evalScope) ident(name string) (any, error) {
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil":
		return nil, nil
	}
	if s.ctx != nil {
		if v, ok := s.ctx.Get(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("flowruntime: identifier %q not found in context", name)
}

func literalValue(lit *ast.BasicLit) (any, error) {
	switch lit.Kind {
	case token.INT:
		return strconv.ParseInt(lit.Value, 0, 64)
	case token.FLOAT:
		return strconv.ParseFloat(lit.Value, 64)
	case token.STRING:
		return strconv.Unquote(lit.Value)
	case token.CHAR:
		return strconv.UnquoteChar(lit.Value[1:len(lit.Value)-1], '\'')
	default:
		return nil, fmt.Errorf("flowruntime: unsupported literal kind %v", lit.Kind)
	}
}

func (s evalScope) unary(n *ast.UnaryExpr) (any, error) {
	v, err := s.eval(n.X)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.NOT:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("flowruntime: ! applied to non-bool %v", v)
		}
		return !b, nil
	case token.SUB:
		return negate(v)
	default:
		return nil, fmt.Errorf("flowruntime: unsupported unary operator %v", n.Op)
	}
}

func negate(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return -n, nil
	case float64:
		return -n, nil
	default:
		return nil, fmt.Errorf("flowruntime: - applied to non-numeric %v", v)
	}
}

func (s evalScope) binary(n *ast.BinaryExpr) (any, error) {
	left, err := s.eval(n.X)
	if err != nil {
		return nil, err
	}
	// Short-circuit && and ||.
	if n.Op == token.LAND || n.Op == token.LOR {
		lb, ok := left.(bool)
		if !ok {
			return nil, fmt.Errorf("flowruntime: %v applied to non-bool %v", n.Op, left)
		}
		if n.Op == token.LAND && !lb {
			return false, nil
		}
		if n.Op == token.LOR && lb {
			return true, nil
		}
		right, err := s.eval(n.Y)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, fmt.Errorf("flowruntime: %v applied to non-bool %v", n.Op, right)
		}
		return rb, nil
	}

	right, err := s.eval(n.Y)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Op, left, right)
}

func applyBinary(op token.Token, left, right any) (any, error) {
	if op == token.EQL {
		return reflect.DeepEqual(left, right), nil
	}
	if op == token.NEQ {
		return !reflect.DeepEqual(left, right), nil
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("flowruntime: operator %v needs numeric operands, got %v and %v", op, left, right)
	}
	switch op {
	case token.LSS:
		return lf < rf, nil
	case token.LEQ:
		return lf <= rf, nil
	case token.GTR:
		return lf > rf, nil
	case token.GEQ:
		return lf >= rf, nil
	case token.ADD:
		return combineNumeric(left, right, lf+rf), nil
	case token.SUB:
		return combineNumeric(left, right, lf-rf), nil
	case token.MUL:
		return combineNumeric(left, right, lf*rf), nil
	case token.QUO:
		return combineNumeric(left, right, lf/rf), nil
	default:
		return nil, fmt.Errorf("flowruntime: unsupported binary operator %v", op)
	}
}

// combineNumeric keeps the result as a time.Duration (int64 nanoseconds)
// when either side already is one, the common case for "5*time.Second".
func combineNumeric(left, right any, f float64) any {
	if _, ok := left.(time.Duration); ok {
		return time.Duration(f)
	}
	if _, ok := right.(time.Duration); ok {
		return time.Duration(f)
	}
	return f
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case time.Duration:
		return float64(n), true
	default:
		return 0, false
	}
}

func (s evalScope) selector(n *ast.SelectorExpr) (any, error) {
	if pkg, ok := n.X.(*ast.Ident); ok && pkg.Name == "time" {
		if d, ok := timeConstants[n.Sel.Name]; ok {
			return d, nil
		}
		return nil, fmt.Errorf("flowruntime: unknown time constant %q", n.Sel.Name)
	}

	base, err := s.eval(n.X)
	if err != nil {
		return nil, err
	}
	return fieldByName(base, n.Sel.Name)
}

func fieldByName(base any, name string) (any, error) {
	v := reflect.ValueOf(base)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("flowruntime: nil pointer dereferenced reading field %q", name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("flowruntime: cannot read field %q of non-struct %v", name, base)
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		return nil, fmt.Errorf("flowruntime: no field %q on %T", name, base)
	}
	return f.Interface(), nil
}

// EvalBool evaluates exprText as a boolean condition.
func EvalBool(exprText string, ctx *blueprint.Context) (bool, error) {
	v, err := evalExpr(exprText, evalScope{ctx: ctx})
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("flowruntime: condition %q did not evaluate to a bool, got %v", exprText, v)
	}
	return b, nil
}

// EvalDuration evaluates exprText as a time.Duration.
func EvalDuration(exprText string, ctx *blueprint.Context) (time.Duration, error) {
	v, err := evalExpr(exprText, evalScope{ctx: ctx})
	if err != nil {
		return 0, err
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case float64:
		return time.Duration(d), nil
	case int64:
		return time.Duration(d), nil
	default:
		return 0, fmt.Errorf("flowruntime: duration expression %q did not evaluate to a number, got %v", exprText, v)
	}
}

// EvalValue evaluates exprText as a step-call argument.
func EvalValue(exprText string, ctx *blueprint.Context) (any, error) {
	return evalExpr(exprText, evalScope{ctx: ctx})
}
