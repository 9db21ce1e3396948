// Package transform expands type-annotated objects and blocks into their
// complete form ahead of code generation: inherited and defaulted fields
// fill in, calculated fields compute, and the type discriminator drops
// out. It is the pipeline's only expansion pass; the generator renders
// exactly what it receives. The pass is idempotent, so re-transforming
// expanded output is a no-op.
package transform

import (
	"context"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/ctxlog"
	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/eval"
	"github.com/vk/ehcl/internal/types"
	"github.com/vk/ehcl/internal/value"
)

// Transformer expands typed constructs against one type registry.
type Transformer struct {
	registry *types.Registry
}

func New(registry *types.Registry) *Transformer {
	return &Transformer{registry: registry}
}

// Transform rewrites node and returns the result. Nodes without type
// information come back unchanged; the input tree is never mutated.
func (t *Transformer) Transform(ctx context.Context, node ast.Node) (ast.Node, error) {
	switch n := node.(type) {
	case *ast.Block:
		return t.transformBlock(ctx, n)
	case *ast.Object:
		return t.transformObject(ctx, n)
	case *ast.NamedBlock:
		return t.transformNamedBlock(ctx, n)
	case *ast.Resource:
		block, err := t.transformBlock(ctx, n.Block)
		if err != nil {
			return nil, err
		}
		return &ast.Resource{Type: n.Type, Name: n.Name, Block: block}, nil
	case *ast.KeyValue:
		v, err := t.Transform(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.KeyValue{Key: n.Key, Value: v}, nil
	case *ast.List:
		elems := make([]ast.Node, len(n.Elements))
		for i, e := range n.Elements {
			v, err := t.Transform(ctx, e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ast.List{Elements: elems}, nil
	}
	return node, nil
}

// transformBlock transforms each statement. A block made entirely of
// key-value pairs that includes a type key is really a typed object
// written in block form: it folds to an object, expands, and unfolds.
func (t *Transformer) transformBlock(ctx context.Context, block *ast.Block) (*ast.Block, error) {
	stmts := make([]ast.Node, len(block.Statements))
	allKV := true
	hasType := false
	for i, stmt := range block.Statements {
		ns, err := t.Transform(ctx, stmt)
		if err != nil {
			return nil, err
		}
		stmts[i] = ns
		if kv, ok := ns.(*ast.KeyValue); ok {
			if kv.Key == "type" {
				hasType = true
			}
		} else {
			allKV = false
		}
	}
	if allKV && hasType {
		obj := &ast.Object{}
		for _, stmt := range stmts {
			kv := stmt.(*ast.KeyValue)
			obj.Set(kv.Key, kv.Value)
		}
		expanded, err := t.transformObject(ctx, obj)
		if err != nil {
			return nil, err
		}
		if eo, ok := expanded.(*ast.Object); ok {
			out := make([]ast.Node, 0, len(eo.Attrs))
			for _, attr := range eo.Attrs {
				out = append(out, &ast.KeyValue{Key: attr.Key, Value: attr.Value})
			}
			return &ast.Block{Statements: out}, nil
		}
	}
	return &ast.Block{Statements: stmts}, nil
}

// transformObject expands an object whose type attribute names a
// registered type. Objects with no type, or naming an unknown one, pass
// through with only their attribute values transformed.
func (t *Transformer) transformObject(ctx context.Context, obj *ast.Object) (ast.Node, error) {
	typeAttr, ok := obj.Get("type")
	if !ok {
		return t.transformAttrs(ctx, obj)
	}
	typeName := ""
	switch v := typeAttr.(type) {
	case *ast.Identifier:
		typeName = v.Name
	case *ast.Literal:
		// Non-string discriminators never match a registered type.
		if v.Val.Kind() == value.String {
			typeName = v.Val.AsString()
		}
	default:
		return nil, diag.Valuef("Unsupported type value: %T", typeAttr)
	}
	if typeName == "" || !t.registry.Has(typeName) {
		return t.transformAttrs(ctx, obj)
	}

	values := value.NewFields()
	for _, attr := range obj.Attrs {
		if attr.Key == "type" {
			continue
		}
		transformed, err := t.Transform(ctx, attr.Value)
		if err != nil {
			return nil, err
		}
		v, err := nodeToValue(transformed)
		if err != nil {
			return nil, err
		}
		values.Set(attr.Key, v)
	}

	complete, err := t.registry.ApplyDefaults(typeName, values, eval.Evaluate)
	if err != nil {
		return nil, err
	}
	complete.Delete("type")
	ctxlog.FromContext(ctx).Debug("Expanded type instance.", "type", typeName, "fields", complete.Len())

	out := &ast.Object{}
	for _, name := range complete.Names() {
		v, _ := complete.Get(name)
		node, err := valueToNode(v)
		if err != nil {
			return nil, err
		}
		node, err = t.Transform(ctx, node)
		if err != nil {
			return nil, err
		}
		out.Set(name, node)
	}
	return out, nil
}

func (t *Transformer) transformAttrs(ctx context.Context, obj *ast.Object) (ast.Node, error) {
	out := &ast.Object{}
	for _, attr := range obj.Attrs {
		v, err := t.Transform(ctx, attr.Value)
		if err != nil {
			return nil, err
		}
		out.Set(attr.Key, v)
	}
	return out, nil
}

// transformNamedBlock transforms the body; a body that reduced to a
// single expanded object unwraps into plain key-value statements.
func (t *Transformer) transformNamedBlock(ctx context.Context, nb *ast.NamedBlock) (ast.Node, error) {
	block, err := t.transformBlock(ctx, nb.Block)
	if err != nil {
		return nil, err
	}
	if len(block.Statements) == 1 {
		if obj, ok := block.Statements[0].(*ast.Object); ok {
			expanded, err := t.transformObject(ctx, obj)
			if err != nil {
				return nil, err
			}
			if eo, ok := expanded.(*ast.Object); ok {
				stmts := make([]ast.Node, 0, len(eo.Attrs))
				for _, attr := range eo.Attrs {
					stmts = append(stmts, &ast.KeyValue{Key: attr.Key, Value: attr.Value})
				}
				block = &ast.Block{Statements: stmts}
			}
		}
	}
	return &ast.NamedBlock{Name: nb.Name, Label: nb.Label, Block: block}, nil
}

// nodeToValue lowers expression nodes to values for default application.
// Identifiers lower to their name so they can satisfy literal-name type
// constraints.
func nodeToValue(node ast.Node) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Val, nil
	case *ast.Identifier:
		return value.StringVal(n.Name), nil
	case *ast.List:
		elems := make([]value.Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := nodeToValue(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.ListVal(elems), nil
	case *ast.Object:
		fields := value.NewFields()
		for _, attr := range n.Attrs {
			v, err := nodeToValue(attr.Value)
			if err != nil {
				return value.Value{}, err
			}
			fields.Set(attr.Key, v)
		}
		return value.ObjectVal(fields), nil
	}
	return value.Value{}, diag.Evalf("Cannot convert node type %T to value", node)
}

func valueToNode(v value.Value) (ast.Node, error) {
	switch v.Kind() {
	case value.Null, value.Bool, value.Number, value.String:
		return &ast.Literal{Val: v}, nil
	case value.List:
		elems := make([]ast.Node, len(v.Elems()))
		for i, e := range v.Elems() {
			node, err := valueToNode(e)
			if err != nil {
				return nil, err
			}
			elems[i] = node
		}
		return &ast.List{Elements: elems}, nil
	case value.Object:
		obj := &ast.Object{}
		for _, name := range v.AsFields().Names() {
			f, _ := v.AsFields().Get(name)
			node, err := valueToNode(f)
			if err != nil {
				return nil, err
			}
			obj.Set(name, node)
		}
		return obj, nil
	}
	return nil, diag.Valuef("Unsupported value kind: %s", v.Kind())
}
