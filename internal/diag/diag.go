// Package diag defines the error categories the translation pipeline
// reports: syntax errors with a source position, type errors anchored to
// the line of the offending declaration, value errors, and evaluation
// errors. Callers usually wrap these with fmt.Errorf and inspect them
// with errors.As.
package diag

import "fmt"

// SyntaxError reports a lexing or parsing failure at a source position.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

// Syntaxf builds a SyntaxError at the given position.
func Syntaxf(line, column int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Column: column, Msg: fmt.Sprintf(format, args...)}
}

// TypeError reports a failed type check. Err may aggregate several field
// errors for the same declaration.
type TypeError struct {
	Line int
	Err  error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("At line %d: %s", e.Line, e.Err)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// ValueError reports an invalid value or type-registry misuse.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string {
	return e.Msg
}

// Valuef builds a ValueError.
func Valuef(format string, args ...any) *ValueError {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// EvalError reports an expression the restricted evaluator cannot handle.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return e.Msg
}

// Evalf builds an EvalError.
func Evalf(format string, args ...any) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}
