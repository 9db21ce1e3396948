// Package parser turns a token stream into a syntax tree.
//
// Parsing is a single recursive descent pass with precedence climbing for
// expressions. Two things happen during the pass rather than after it:
// type definitions register into the session's type registry as they are
// parsed, and resource blocks that carry a type discriminator validate
// eagerly against that registry so the error points at the declaration
// line. Blocks named configuration or containers are not parsed at all;
// their source span is captured verbatim for pass-through.
package parser
