// internal/ast/ast_test.go
package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ehcl/internal/value"
)

func TestObject_SetUpdatesInPlace(t *testing.T) {
	obj := &Object{}
	obj.Set("a", &Identifier{Name: "one"})
	obj.Set("b", &Identifier{Name: "two"})
	obj.Set("a", &Identifier{Name: "three"})

	require.Len(t, obj.Attrs, 2)
	assert.Equal(t, "a", obj.Attrs[0].Key)
	assert.Equal(t, "three", obj.Attrs[0].Value.(*Identifier).Name)

	v, ok := obj.Get("b")
	require.True(t, ok)
	assert.Equal(t, "two", v.(*Identifier).Name)
}

func TestObject_Delete(t *testing.T) {
	obj := &Object{}
	obj.Set("type", &Identifier{Name: "Instance"})
	obj.Set("name", &Literal{Val: value.StringVal("web")})
	obj.Delete("type")

	require.Len(t, obj.Attrs, 1)
	_, ok := obj.Get("type")
	assert.False(t, ok)

	obj.Delete("missing")
	assert.Len(t, obj.Attrs, 1)
}

func TestDump_ContainsNodeSummaries(t *testing.T) {
	tree := &Block{Statements: []Node{
		&Resource{Type: "aws_instance", Name: "web", Block: &Block{Statements: []Node{
			&KeyValue{Key: "name", Value: &Literal{Val: value.StringVal("web-1")}},
			&KeyValue{Key: "cpu", Value: &Literal{Val: value.IntVal(4)}},
		}}},
		&ForLoop{Iterator: "i", Iterable: &Identifier{Name: "items"}, Block: &Block{}},
	}}

	out := Dump(tree)
	assert.Contains(t, out, `Resource "aws_instance" "web"`)
	assert.Contains(t, out, `KeyValue "name"`)
	assert.Contains(t, out, `Literal "web-1"`)
	assert.Contains(t, out, "Literal 4")
	assert.Contains(t, out, `ForLoop "i"`)
}
