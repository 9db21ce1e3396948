// internal/ast/ast.go
package ast

import (
	"github.com/vk/ehcl/internal/token"
	"github.com/vk/ehcl/internal/value"
)

// Node is implemented by every syntax tree node.
type Node interface {
	node()
}

// Block is a brace-delimited sequence of statements. The root of a parsed
// file is a Block as well.
type Block struct {
	Statements []Node
}

// KeyValue is `key = expr` or `key: expr` inside a block.
type KeyValue struct {
	Key   string
	Value Node
}

// Assignment is `name = expr` in statement position outside a block body.
type Assignment struct {
	Name  string
	Value Node
}

// Resource is `resource "TYPE" "NAME" { ... }`.
type Resource struct {
	Type  string
	Name  string
	Block *Block
}

// ForLoop is `for iterator in iterable { ... }`.
type ForLoop struct {
	Iterator string
	Iterable Node
	Block    *Block
}

// If is `if condition { ... }` with an optional else branch.
type If struct {
	Condition Node
	Then      *Block
	Else      *Block
}

// SwitchCase is one `case expr { ... }` arm.
type SwitchCase struct {
	Value Node
	Block *Block
}

// Switch is `switch expr { case ... default ... }`.
type Switch struct {
	Value   Node
	Cases   []SwitchCase
	Default *Block
}

// Param is one typed parameter of a function declaration.
type Param struct {
	Name string
	Type string
}

// Function is `function name(params) { ... }`. ReturnType holds the
// rendered annotation and is empty when omitted.
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	Block      *Block
}

// Return is `return expr`.
type Return struct {
	Value Node
}

// Binary is a binary operator application. Op keeps the operator token so
// diagnostics and rendering see the original spelling.
type Binary struct {
	Left  Node
	Op    token.Token
	Right Node
}

// Ternary is `cond ? a : b`.
type Ternary struct {
	Condition Node
	IfTrue    Node
	IfFalse   Node
}

// Call is `callee(args...)`.
type Call struct {
	Callee Node
	Args   []Node
}

// Literal is a scalar constant. Raw holds the source lexeme for numbers so
// they render exactly as written; it is empty for synthesized literals.
type Literal struct {
	Val value.Value
	Raw string
}

// Identifier is a bare name.
type Identifier struct {
	Name string
}

// AttrAccess is `object.attr`.
type AttrAccess struct {
	Object Node
	Attr   string
}

// List is `[a, b, c]`.
type List struct {
	Elements []Node
}

// ObjectAttr is one attribute of an object literal.
type ObjectAttr struct {
	Key   string
	Value Node
}

// Object is an object literal with ordered attributes; the order is
// preserved through type expansion and into generated output.
type Object struct {
	Attrs []ObjectAttr
}

// Get returns the value of the named attribute.
func (o *Object) Get(key string) (Node, bool) {
	for _, a := range o.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Set updates the named attribute in place, or appends it.
func (o *Object) Set(key string, v Node) {
	for i, a := range o.Attrs {
		if a.Key == key {
			o.Attrs[i].Value = v
			return
		}
	}
	o.Attrs = append(o.Attrs, ObjectAttr{Key: key, Value: v})
}

// Delete removes the named attribute if present.
func (o *Object) Delete(key string) {
	for i, a := range o.Attrs {
		if a.Key == key {
			o.Attrs = append(o.Attrs[:i], o.Attrs[i+1:]...)
			return
		}
	}
}

// NamedBlock is `name "label" { ... }` for block names without dedicated
// syntax, including service and deployment blocks.
type NamedBlock struct {
	Name  string
	Label string
	Block *Block
}

// RawBlock is a block whose body is carried as source text instead of
// parsed statements. Content is dedented; the generator re-indents it.
type RawBlock struct {
	Name    string
	Label   string
	Content string
}

// TypeInstance is `label: TypeName { ... }`, an inline typed object in
// block position.
type TypeInstance struct {
	Label    string
	TypeName string
	Block    *Block
}

// MapsTo is `source maps_to target`.
type MapsTo struct {
	Source string
	Target Node
}

// TypeField is the declaration view of one field of a type definition,
// with the annotation already rendered. Default is nil for calculated
// fields.
type TypeField struct {
	Name    string
	Type    string
	Default Node
}

// TypeDecl is the declaration view of `type Name { ... }`. The semantic
// definition lives in the type registry; this node only feeds the
// commented summary the generator can emit.
type TypeDecl struct {
	Name   string
	Base   string
	Fields []TypeField
}

func (*Block) node()        {}
func (*KeyValue) node()     {}
func (*Assignment) node()   {}
func (*Resource) node()     {}
func (*ForLoop) node()      {}
func (*If) node()           {}
func (*Switch) node()       {}
func (*Function) node()     {}
func (*Return) node()       {}
func (*Binary) node()       {}
func (*Ternary) node()      {}
func (*Call) node()         {}
func (*Literal) node()      {}
func (*Identifier) node()   {}
func (*AttrAccess) node()   {}
func (*List) node()         {}
func (*Object) node()       {}
func (*NamedBlock) node()   {}
func (*RawBlock) node()     {}
func (*TypeInstance) node() {}
func (*MapsTo) node()       {}
func (*TypeDecl) node()     {}
