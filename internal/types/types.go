// Package types implements the dialect's structural type system: named
// definitions with single inheritance, per-field constraints, defaults,
// and calculated fields, resolved through a session-scoped registry.
package types

import (
	"strings"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/value"
)

// CustomType refers to a type by name, optionally as a union of member
// types. Builtin names (string, number, bool, any, and the collection
// names map and list) check the value kind; registered names validate
// structurally; any other name matches only the equal string literal.
type CustomType struct {
	Name     string
	Union    []CustomType
	Nullable bool
}

func (t CustomType) IsUnion() bool {
	return len(t.Union) > 0
}

// String renders the annotation form: union members joined by " | " with
// non-primitive member names quoted, and a trailing "?" when nullable.
func (t CustomType) String() string {
	s := t.Name
	if t.IsUnion() {
		parts := make([]string, 0, len(t.Union))
		for _, m := range t.Union {
			switch m.Name {
			case "string", "bool", "number":
				parts = append(parts, m.Name)
			default:
				parts = append(parts, `"`+m.Name+`"`)
			}
		}
		s = strings.Join(parts, " | ")
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// TypeConstraint restricts the values a field accepts. When OneOf is
// non-empty the field is an enumeration over those exact strings.
type TypeConstraint struct {
	Type     CustomType
	OneOf    []string
	Nullable bool
}

// CalculatedField recomputes a field from its sibling values on every
// expansion, overriding any provided value. Dependencies names the sibling
// fields the expression reads; evaluation order is declaration order
// regardless, so multi-hop calculated chains see pre-calculation values.
type CalculatedField struct {
	Expr         ast.Node
	Dependencies []string
}

// FieldDefinition describes one field of a type definition. A default is
// either an unevaluated expression from source (DefaultExpr) or a ready
// value from a catalog (Default).
type FieldDefinition struct {
	Name        string
	Description string
	Constraint  TypeConstraint
	DefaultExpr ast.Node
	Default     *value.Value
	Calculated  *CalculatedField
}

func (f FieldDefinition) HasDefault() bool {
	return f.DefaultExpr != nil || f.Default != nil
}

// TypeDefinition is a named, ordered set of fields with an optional base
// type to inherit from.
type TypeDefinition struct {
	Name     string
	BaseType string
	Fields   []FieldDefinition
}
