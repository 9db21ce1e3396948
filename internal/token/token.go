// internal/token/token.go
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String

	// Keywords. The words "type", "service", and "module" are deliberately
	// absent: they only have meaning in certain positions and lex as
	// plain identifiers.
	For
	In
	If
	Else
	Switch
	Case
	Default
	Resource
	Variable
	Output
	Function
	Return
	Null
	True
	False
	Calc
	MapsTo

	// Operators and delimiters.
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Question
	Colon
	Pipe
	Comma
	Dot
	Eq
	NotEq
	And
	Or
	GreaterEq
	LessEq
	Greater
	Less
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
)

var kindNames = map[Kind]string{
	EOF:       "EOF",
	Ident:     "IDENTIFIER",
	Number:    "NUMBER",
	String:    "STRING",
	For:       "FOR",
	In:        "IN",
	If:        "IF",
	Else:      "ELSE",
	Switch:    "SWITCH",
	Case:      "CASE",
	Default:   "DEFAULT",
	Resource:  "RESOURCE",
	Variable:  "VARIABLE",
	Output:    "OUTPUT",
	Function:  "FUNCTION",
	Return:    "RETURN",
	Null:      "NULL",
	True:      "TRUE",
	False:     "FALSE",
	Calc:      "CALC",
	MapsTo:    "MAPS_TO",
	Assign:    "EQUALS",
	Plus:      "PLUS",
	Minus:     "MINUS",
	Star:      "MULTIPLY",
	Slash:     "DIVIDE",
	Percent:   "MODULO",
	Bang:      "NOT",
	Question:  "QUESTION",
	Colon:     "COLON",
	Pipe:      "PIPE",
	Comma:     "COMMA",
	Dot:       "DOT",
	Eq:        "EQUAL_EQUAL",
	NotEq:     "NOT_EQUAL",
	And:       "AND",
	Or:        "OR",
	GreaterEq: "GREATER_EQUAL",
	LessEq:    "LESS_EQUAL",
	Greater:   "GREATER_THAN",
	Less:      "LESS_THAN",
	LParen:    "LPAREN",
	RParen:    "RPAREN",
	LBrace:    "LBRACE",
	RBrace:    "RBRACE",
	LBracket:  "LBRACKET",
	RBracket:  "RBRACKET",
}

// String returns the name used in diagnostics, e.g. "IDENTIFIER" or "LBRACE".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"for":      For,
	"in":       In,
	"if":       If,
	"else":     Else,
	"switch":   Switch,
	"case":     Case,
	"default":  Default,
	"resource": Resource,
	"variable": Variable,
	"output":   Output,
	"function": Function,
	"return":   Return,
	"null":     Null,
	"true":     True,
	"false":    False,
	"calc":     Calc,
	"maps_to":  MapsTo,
}

// Lookup maps an identifier to its keyword kind, or Ident if it is not a
// keyword.
func Lookup(name string) Kind {
	if k, ok := keywords[name]; ok {
		return k
	}
	return Ident
}

// Token is a single lexeme with its position in the source. Text holds the
// decoded form: string tokens carry their unquoted, unescaped content.
// Offset and End are byte positions into the source; they let the parser
// recover the exact text of a raw block span.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
	Offset int
	End    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Kind, t.Text, t.Line, t.Column)
}
