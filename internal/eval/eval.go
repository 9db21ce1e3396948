// Package eval implements the restricted expression evaluator backing
// type defaults, calculated fields, and function inlining. It is not a
// general interpreter: only the operators the dialect needs are wired,
// unknown identifiers echo as their own name, and ${name} interpolation
// resolves against the caller's variables.
package eval

import (
	"regexp"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/value"
)

var interpolation = regexp.MustCompile(`\$\{(\w+)\}`)

// Evaluate resolves an expression against vars. Unknown identifiers
// evaluate to their own name so references that only make sense in the
// generated output survive untouched.
func Evaluate(expr ast.Node, vars *value.Fields) (value.Value, error) {
	return eval(expr, vars, false)
}

// EvaluateFunc resolves a function body against its parameter bindings.
// The body may be the function's block, in which case the first return
// statement provides the result expression. Function mode additionally
// supports subtraction but renders booleans as the strings "true" and
// "false", matching how inlined results are spliced into output.
func EvaluateFunc(body ast.Node, params *value.Fields) (value.Value, error) {
	return eval(body, params, true)
}

func eval(node ast.Node, vars *value.Fields, funcMode bool) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Block:
		if !funcMode {
			break
		}
		for _, stmt := range n.Statements {
			if ret, ok := stmt.(*ast.Return); ok {
				return eval(ret.Value, vars, funcMode)
			}
		}
		return value.Value{}, diag.Valuef("No return statement found in function body")
	case *ast.Return:
		return eval(n.Value, vars, funcMode)
	case *ast.Literal:
		if n.Val.Kind() == value.String {
			return value.StringVal(interpolate(n.Val.AsString(), vars)), nil
		}
		if funcMode && n.Val.Kind() == value.Bool {
			return value.StringVal(n.Val.Text()), nil
		}
		return n.Val, nil
	case *ast.Identifier:
		if v, ok := vars.Get(n.Name); ok {
			return v, nil
		}
		return value.StringVal(n.Name), nil
	case *ast.Binary:
		left, err := eval(n.Left, vars, funcMode)
		if err != nil {
			return value.Value{}, err
		}
		// Both logical operators return an operand, not a bare boolean.
		switch n.Op.Text {
		case "&&":
			if !left.Truthy() {
				return left, nil
			}
			return eval(n.Right, vars, funcMode)
		case "||":
			if left.Truthy() {
				return left, nil
			}
			return eval(n.Right, vars, funcMode)
		}
		right, err := eval(n.Right, vars, funcMode)
		if err != nil {
			return value.Value{}, err
		}
		return applyBinary(n.Op.Text, left, right, funcMode)
	case *ast.Ternary:
		cond, err := eval(n.Condition, vars, funcMode)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Truthy() {
			return eval(n.IfTrue, vars, funcMode)
		}
		return eval(n.IfFalse, vars, funcMode)
	case *ast.AttrAccess:
		obj, err := eval(n.Object, vars, funcMode)
		if err != nil {
			return value.Value{}, err
		}
		if !funcMode && obj.Kind() == value.Object {
			if v, ok := obj.AsFields().Get(n.Attr); ok {
				return v, nil
			}
		}
		return value.StringVal(obj.Text() + "." + n.Attr), nil
	case *ast.List:
		if funcMode {
			break
		}
		elems := make([]value.Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := eval(e, vars, funcMode)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.ListVal(elems), nil
	case *ast.Object:
		if funcMode {
			break
		}
		fields := value.NewFields()
		for _, attr := range n.Attrs {
			v, err := eval(attr.Value, vars, funcMode)
			if err != nil {
				return value.Value{}, err
			}
			fields.Set(attr.Key, v)
		}
		return value.ObjectVal(fields), nil
	case *ast.Call:
		if funcMode {
			return value.Value{}, diag.Evalf("Nested function calls are not supported in evaluator")
		}
		return value.Value{}, diag.Evalf("Function calls are not supported in evaluator")
	}
	return value.Value{}, diag.Evalf("Cannot evaluate node type: %T", node)
}

func applyBinary(op string, left, right value.Value, funcMode bool) (value.Value, error) {
	switch op {
	case "+":
		return add(left, right)
	case "-":
		if funcMode {
			return subtract(left, right)
		}
	case ".":
		if !funcMode {
			return value.StringVal(left.Text() + "." + right.Text()), nil
		}
	case "==":
		return value.BoolVal(left.Equal(right)), nil
	case "!=":
		return value.BoolVal(!left.Equal(right)), nil
	case ">", ">=", "<", "<=":
		return compare(op, left, right)
	}
	if funcMode {
		return value.Value{}, diag.Valuef("Unsupported operator: %s", op)
	}
	return value.Value{}, diag.Evalf("Operator %s not implemented in evaluator", op)
}

func add(l, r value.Value) (value.Value, error) {
	switch {
	case l.Kind() == value.Number && r.Kind() == value.Number:
		return value.NumberVal(l.AsNumber().Add(r.AsNumber())), nil
	case l.Kind() == value.String && r.Kind() == value.String:
		return value.StringVal(l.AsString() + r.AsString()), nil
	}
	return value.Value{}, diag.Evalf("cannot add %s and %s", l.Kind(), r.Kind())
}

func subtract(l, r value.Value) (value.Value, error) {
	if l.Kind() == value.Number && r.Kind() == value.Number {
		return value.NumberVal(l.AsNumber().Subtract(r.AsNumber())), nil
	}
	return value.Value{}, diag.Evalf("cannot subtract %s from %s", r.Kind(), l.Kind())
}

func compare(op string, l, r value.Value) (value.Value, error) {
	switch {
	case l.Kind() == value.Number && r.Kind() == value.Number:
		a, b := l.AsNumber(), r.AsNumber()
		var res cty.Value
		switch op {
		case ">":
			res = a.GreaterThan(b)
		case ">=":
			res = a.GreaterThanOrEqualTo(b)
		case "<":
			res = a.LessThan(b)
		case "<=":
			res = a.LessThanOrEqualTo(b)
		}
		return value.BoolVal(res.True()), nil
	case l.Kind() == value.String && r.Kind() == value.String:
		a, b := l.AsString(), r.AsString()
		var res bool
		switch op {
		case ">":
			res = a > b
		case ">=":
			res = a >= b
		case "<":
			res = a < b
		case "<=":
			res = a <= b
		}
		return value.BoolVal(res), nil
	}
	return value.Value{}, diag.Evalf("cannot compare %s and %s", l.Kind(), r.Kind())
}

// interpolate substitutes ${name} placeholders from vars; unknown names
// become the empty string.
func interpolate(s string, vars *value.Fields) string {
	return interpolation.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := vars.Get(name); ok {
			return v.Text()
		}
		return ""
	})
}
