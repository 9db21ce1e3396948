// internal/value/value_test.go
package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty-debug/ctydebug"
	"github.com/zclconf/go-cty/cty"
)

func TestFields_InsertionOrder(t *testing.T) {
	f := NewFields()
	f.Set("b", IntVal(1))
	f.Set("a", IntVal(2))
	f.Set("c", IntVal(3))
	assert.Equal(t, []string{"b", "a", "c"}, f.Names())

	// Updating keeps the original position.
	f.Set("a", IntVal(9))
	assert.Equal(t, []string{"b", "a", "c"}, f.Names())
	v, ok := f.Get("a")
	require.True(t, ok)
	assert.True(t, v.Equal(IntVal(9)))
}

func TestFields_Delete(t *testing.T) {
	f := NewFields()
	f.Set("a", IntVal(1))
	f.Set("b", IntVal(2))
	f.Set("c", IntVal(3))
	f.Delete("b")
	assert.Equal(t, []string{"a", "c"}, f.Names())
	assert.False(t, f.Has("b"))

	f.Delete("missing")
	assert.Equal(t, 2, f.Len())
}

func TestFields_CopyIsIndependent(t *testing.T) {
	f := NewFields()
	f.Set("a", IntVal(1))
	c := f.Copy()
	c.Set("a", IntVal(2))
	c.Set("b", IntVal(3))

	v, _ := f.Get("a")
	assert.True(t, v.Equal(IntVal(1)))
	assert.False(t, f.Has("b"))
}

func TestFields_NilReceiver(t *testing.T) {
	var f *Fields
	assert.False(t, f.Has("x"))
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Names())
	_, ok := f.Get("x")
	assert.False(t, ok)
	assert.NotNil(t, f.Copy())
}

func TestValue_Truthy(t *testing.T) {
	obj := NewFields()
	obj.Set("k", IntVal(1))

	testCases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", NullVal(), false},
		{"zero value", Value{}, false},
		{"true", BoolVal(true), true},
		{"false", BoolVal(false), false},
		{"zero number", IntVal(0), false},
		{"nonzero number", IntVal(2), true},
		{"zero float", FloatVal(0), false},
		{"empty string", StringVal(""), false},
		{"string", StringVal("x"), true},
		{"empty list", ListVal(nil), false},
		{"list", ListVal([]Value{IntVal(1)}), true},
		{"empty object", ObjectVal(NewFields()), false},
		{"object", ObjectVal(obj), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Truthy())
		})
	}
}

func TestValue_Equal(t *testing.T) {
	left := NewFields()
	left.Set("a", IntVal(1))
	left.Set("b", StringVal("x"))
	right := NewFields()
	right.Set("b", StringVal("x"))
	right.Set("a", IntVal(1))

	assert.True(t, IntVal(1).Equal(FloatVal(1)), "numbers compare by value")
	assert.True(t, NullVal().Equal(Value{}))
	assert.False(t, IntVal(1).Equal(StringVal("1")))
	assert.True(t, ListVal([]Value{IntVal(1), IntVal(2)}).Equal(ListVal([]Value{IntVal(1), IntVal(2)})))
	assert.False(t, ListVal([]Value{IntVal(1)}).Equal(ListVal([]Value{IntVal(2)})))
	assert.True(t, ObjectVal(left).Equal(ObjectVal(right)), "objects compare without regard to order")
}

func TestValue_Text(t *testing.T) {
	testCases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullVal(), "null"},
		{"true", BoolVal(true), "true"},
		{"false", BoolVal(false), "false"},
		{"integer", IntVal(20), "20"},
		{"decimal", FloatVal(2.5), "2.5"},
		{"string is bare", StringVal("web"), "web"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Text())
		})
	}
}

func TestValue_NumberPayloadIsExact(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want cty.Value
	}{
		{"decimal survives parsing", "0.1", cty.MustParseNumberVal("0.1")},
		{"integer beyond float64 precision", "9007199254740993", cty.NumberIntVal(9007199254740993)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseNumberVal(tc.in)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, v.AsNumber(), ctydebug.CmpOptions); diff != "" {
				t.Errorf("number payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNumberVal(t *testing.T) {
	v, err := ParseNumberVal("42")
	require.NoError(t, err)
	assert.True(t, v.Equal(IntVal(42)))

	v, err = ParseNumberVal("0.5")
	require.NoError(t, err)
	assert.Equal(t, "0.5", v.Text())

	_, err = ParseNumberVal("not-a-number")
	assert.Error(t, err)
}
