// internal/ast/dump.go
package ast

import (
	"fmt"
	"strconv"

	"github.com/xlab/treeprint"

	"github.com/vk/ehcl/internal/value"
)

// Dump renders the tree in an indented, browsable form for debug logging.
func Dump(n Node) string {
	tree := treeprint.New()
	addNode(tree, n)
	return tree.String()
}

func addNode(t treeprint.Tree, n Node) {
	switch n := n.(type) {
	case nil:
		t.AddNode("<nil>")
	case *Block:
		b := t.AddBranch("Block")
		for _, s := range n.Statements {
			addNode(b, s)
		}
	case *KeyValue:
		addNode(t.AddBranch(fmt.Sprintf("KeyValue %q", n.Key)), n.Value)
	case *Assignment:
		addNode(t.AddBranch(fmt.Sprintf("Assignment %q", n.Name)), n.Value)
	case *Resource:
		addNode(t.AddBranch(fmt.Sprintf("Resource %q %q", n.Type, n.Name)), n.Block)
	case *ForLoop:
		b := t.AddBranch(fmt.Sprintf("ForLoop %q", n.Iterator))
		addNode(b.AddBranch("in"), n.Iterable)
		addNode(b, n.Block)
	case *If:
		b := t.AddBranch("If")
		addNode(b.AddBranch("condition"), n.Condition)
		addNode(b.AddBranch("then"), n.Then)
		if n.Else != nil {
			addNode(b.AddBranch("else"), n.Else)
		}
	case *Switch:
		b := t.AddBranch("Switch")
		addNode(b.AddBranch("value"), n.Value)
		for _, c := range n.Cases {
			cb := b.AddBranch("case")
			addNode(cb, c.Value)
			addNode(cb, c.Block)
		}
		if n.Default != nil {
			addNode(b.AddBranch("default"), n.Default)
		}
	case *Function:
		b := t.AddBranch(fmt.Sprintf("Function %q", n.Name))
		for _, p := range n.Params {
			b.AddNode(fmt.Sprintf("param %s: %s", p.Name, p.Type))
		}
		addNode(b, n.Block)
	case *Return:
		addNode(t.AddBranch("Return"), n.Value)
	case *Binary:
		b := t.AddBranch(fmt.Sprintf("Binary %q", n.Op.Text))
		addNode(b, n.Left)
		addNode(b, n.Right)
	case *Ternary:
		b := t.AddBranch("Ternary")
		addNode(b.AddBranch("condition"), n.Condition)
		addNode(b.AddBranch("true"), n.IfTrue)
		addNode(b.AddBranch("false"), n.IfFalse)
	case *Call:
		b := t.AddBranch("Call")
		addNode(b.AddBranch("callee"), n.Callee)
		for _, a := range n.Args {
			addNode(b, a)
		}
	case *Literal:
		if n.Val.Kind() == value.String {
			t.AddNode("Literal " + strconv.Quote(n.Val.AsString()))
		} else {
			t.AddNode("Literal " + n.Val.Text())
		}
	case *Identifier:
		t.AddNode("Identifier " + n.Name)
	case *AttrAccess:
		addNode(t.AddBranch(fmt.Sprintf("AttrAccess .%s", n.Attr)), n.Object)
	case *List:
		b := t.AddBranch("List")
		for _, e := range n.Elements {
			addNode(b, e)
		}
	case *Object:
		b := t.AddBranch("Object")
		for _, a := range n.Attrs {
			addNode(b.AddBranch(fmt.Sprintf("attr %q", a.Key)), a.Value)
		}
	case *NamedBlock:
		name := n.Name
		if n.Label != "" {
			name += " " + strconv.Quote(n.Label)
		}
		addNode(t.AddBranch("NamedBlock "+name), n.Block)
	case *RawBlock:
		t.AddNode(fmt.Sprintf("RawBlock %s (%d bytes)", n.Name, len(n.Content)))
	case *TypeInstance:
		addNode(t.AddBranch(fmt.Sprintf("TypeInstance %q: %s", n.Label, n.TypeName)), n.Block)
	case *MapsTo:
		addNode(t.AddBranch(fmt.Sprintf("MapsTo %q", n.Source)), n.Target)
	case *TypeDecl:
		b := t.AddBranch("TypeDecl " + n.Name)
		if n.Base != "" {
			b.AddNode("base " + n.Base)
		}
		for _, f := range n.Fields {
			b.AddNode(fmt.Sprintf("field %s: %s", f.Name, f.Type))
		}
	default:
		t.AddNode(fmt.Sprintf("%T", n))
	}
}
