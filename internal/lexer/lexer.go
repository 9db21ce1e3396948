// Package lexer converts dialect source text into a token stream.
//
// Scanning is byte oriented: identifiers and operators are ASCII, while
// string contents pass through untouched, so UTF-8 payloads survive.
// Every token records its byte span so the parser can recover the exact
// source text of a raw block.
package lexer

import (
	"strings"

	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/token"
)

// Lexer scans one source text. It is single use.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the whole input. The returned stream always ends with a
// single EOF token.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case isSpace(ch):
			l.advance()
		case ch == '#' || l.hasPrefix("//"):
			l.skipComment()
		case isIdentStart(ch):
			tokens = append(tokens, l.scanIdent())
		case isDigit(ch):
			tokens = append(tokens, l.scanNumber())
		case ch == '"' || ch == '\'':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tok, err := l.scanOperator()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	tokens = append(tokens, token.Token{Kind: token.EOF, Line: l.line, Column: l.col, Offset: l.pos, End: l.pos})
	return tokens, nil
}

// advance consumes one byte, tracking line and column.
func (l *Lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.pos:], s)
}

// skipComment consumes a # or // comment including its trailing newline.
func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
		l.col++
	}
	if l.pos < len(l.src) {
		l.advance()
	}
}

func (l *Lexer) scanIdent() token.Token {
	start, line, col := l.pos, l.line, l.col
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
		l.col++
	}
	text := l.src[start:l.pos]
	return token.Token{Kind: token.Lookup(text), Text: text, Line: line, Column: col, Offset: start, End: l.pos}
}

// scanNumber accepts digits with at most one decimal point; a second
// point ends the token so "1.2.3" lexes as NUMBER DOT NUMBER.
func (l *Lexer) scanNumber() token.Token {
	start, line, col := l.pos, l.line, l.col
	seenDot := false
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if !isDigit(ch) {
			break
		}
		l.pos++
		l.col++
	}
	text := l.src[start:l.pos]
	return token.Token{Kind: token.Number, Text: text, Line: line, Column: col, Offset: start, End: l.pos}
}

// scanString consumes a single or double quoted string. The token records
// the position just after the opening quote. Escapes \n, \r, and \t decode
// to their control characters; any other escaped character is kept with
// the backslash dropped.
func (l *Lexer) scanString() (token.Token, error) {
	quote := l.src[l.pos]
	start := l.pos
	l.advance()
	line, col := l.line, l.col
	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == quote {
			l.advance()
			return token.Token{Kind: token.String, Text: b.String(), Line: line, Column: col, Offset: start, End: l.pos}, nil
		}
		if ch == '\\' {
			if l.pos+1 >= len(l.src) {
				b.WriteByte('\\')
				l.advance()
				break
			}
			switch esc := l.src[l.pos+1]; esc {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(esc)
			}
			l.advance()
			l.advance()
			continue
		}
		b.WriteByte(ch)
		l.advance()
	}
	return token.Token{}, diag.Syntaxf(line, col, "Unterminated string starting at line %d column %d", line, col)
}

var twoCharOps = map[string]token.Kind{
	"==": token.Eq,
	"!=": token.NotEq,
	"&&": token.And,
	"||": token.Or,
	">=": token.GreaterEq,
	"<=": token.LessEq,
}

var oneCharOps = map[byte]token.Kind{
	'=': token.Assign,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'!': token.Bang,
	'?': token.Question,
	':': token.Colon,
	'|': token.Pipe,
	',': token.Comma,
	'.': token.Dot,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
}

// scanOperator matches two-character operators before single characters.
func (l *Lexer) scanOperator() (token.Token, error) {
	start, line, col := l.pos, l.line, l.col
	if l.pos+2 <= len(l.src) {
		if kind, ok := twoCharOps[l.src[l.pos:l.pos+2]]; ok {
			text := l.src[l.pos : l.pos+2]
			l.advance()
			l.advance()
			return token.Token{Kind: kind, Text: text, Line: line, Column: col, Offset: start, End: l.pos}, nil
		}
	}
	ch := l.src[l.pos]
	if kind, ok := oneCharOps[ch]; ok {
		l.advance()
		return token.Token{Kind: kind, Text: string(ch), Line: line, Column: col, Offset: start, End: l.pos}, nil
	}
	return token.Token{}, diag.Syntaxf(line, col, "Unknown character '%c' at line %d column %d", ch, line, col)
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}
