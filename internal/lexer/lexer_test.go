package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_KindsAndPositions(t *testing.T) {
	src := "resource \"aws\" {\n  cpu = 4\n}"
	tokens, err := New(src).Tokenize()
	require.NoError(t, err)

	expected := []struct {
		kind token.Kind
		text string
		line int
		col  int
	}{
		{token.Resource, "resource", 1, 1},
		{token.String, "aws", 1, 11},
		{token.LBrace, "{", 1, 16},
		{token.Ident, "cpu", 2, 3},
		{token.Assign, "=", 2, 7},
		{token.Number, "4", 2, 9},
		{token.RBrace, "}", 3, 1},
		{token.EOF, "", 3, 2},
	}
	require.Len(t, tokens, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.kind, tokens[i].Kind, "token %d kind", i)
		assert.Equal(t, e.text, tokens[i].Text, "token %d text", i)
		assert.Equal(t, e.line, tokens[i].Line, "token %d line", i)
		assert.Equal(t, e.col, tokens[i].Column, "token %d column", i)
	}
}

func TestTokenize_Keywords(t *testing.T) {
	tokens, err := New("for in if else switch case default resource function return null true false calc maps_to").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.For, token.In, token.If, token.Else, token.Switch, token.Case,
		token.Default, token.Resource, token.Function, token.Return, token.Null,
		token.True, token.False, token.Calc, token.MapsTo, token.EOF,
	}, kinds(tokens))
}

func TestTokenize_ContextualWordsStayIdentifiers(t *testing.T) {
	tokens, err := New("type service module").Tokenize()
	require.NoError(t, err)
	for _, tok := range tokens[:3] {
		assert.Equal(t, token.Ident, tok.Kind, "%q should lex as an identifier", tok.Text)
	}
}

func TestTokenize_Strings(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		text string
	}{
		{name: "double quoted", src: `"hello"`, text: "hello"},
		{name: "single quoted", src: `'hello'`, text: "hello"},
		{name: "control escapes decode", src: `"a\nb\tc"`, text: "a\nb\tc"},
		{name: "escaped quote", src: `"say \"hi\""`, text: `say "hi"`},
		{name: "unknown escape keeps character", src: "\"c:\\d\"", text: "c:d"},
		{name: "interpolation passes through", src: `"${name}.${domain}"`, text: "${name}.${domain}"},
		{name: "unicode content survives", src: `"héllo"`, text: "héllo"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := New(tc.src).Tokenize()
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, token.String, tokens[0].Kind)
			assert.Equal(t, tc.text, tokens[0].Text)
		})
	}
}

func TestTokenize_MultiLineStringTracksLines(t *testing.T) {
	tokens, err := New("\"a\nb\" x").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "a\nb", tokens[0].Text)
	assert.Equal(t, 1, tokens[0].Line)
	// The identifier after the closing quote sits on the second line.
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 4, tokens[1].Column)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := New(`x = "abc`).Tokenize()
	require.Error(t, err)
	var syntaxErr *diag.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "Unterminated string starting at line 1 column 6", syntaxErr.Msg)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Equal(t, 6, syntaxErr.Column)
}

func TestTokenize_UnknownCharacter(t *testing.T) {
	_, err := New("a @ b").Tokenize()
	require.Error(t, err)
	var syntaxErr *diag.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "Unknown character '@' at line 1 column 3", syntaxErr.Msg)
}

func TestTokenize_Numbers(t *testing.T) {
	tokens, err := New("1 2.5 1.2.3").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Number, token.Number, token.Number, token.Dot, token.Number, token.EOF,
	}, kinds(tokens))
	assert.Equal(t, "2.5", tokens[1].Text)
	// A second decimal point ends the number.
	assert.Equal(t, "1.2", tokens[2].Text)
	assert.Equal(t, "3", tokens[4].Text)
}

func TestTokenize_Comments(t *testing.T) {
	tokens, err := New("a = 1 # trailing\n// whole line\nb = 2").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Ident, token.Assign, token.Number,
		token.Ident, token.Assign, token.Number, token.EOF,
	}, kinds(tokens))
	assert.Equal(t, "b", tokens[3].Text)
	assert.Equal(t, 3, tokens[3].Line)
}

func TestTokenize_OperatorsLongestMatchFirst(t *testing.T) {
	tokens, err := New("== != && || >= <= > < = ! ? : | . %").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Eq, token.NotEq, token.And, token.Or, token.GreaterEq, token.LessEq,
		token.Greater, token.Less, token.Assign, token.Bang, token.Question,
		token.Colon, token.Pipe, token.Dot, token.Percent, token.EOF,
	}, kinds(tokens))
}

func TestTokenize_ByteSpans(t *testing.T) {
	src := `key = "value"`
	tokens, err := New(src).Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, "key", src[tokens[0].Offset:tokens[0].End])
	// A string token's span includes both quotes.
	assert.Equal(t, `"value"`, src[tokens[2].Offset:tokens[2].End])
}

func TestTokenize_EmptyInput(t *testing.T) {
	tokens, err := New("").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, token.EOF, tokens[0].Kind)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)
}
