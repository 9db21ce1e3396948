// Package codegen renders a transformed syntax tree as standard HCL
// text.
//
// Control flow lowers to Terraform-compatible shapes: for loops become
// dynamic blocks over their iterable, if statements become dynamic
// "conditional" blocks with a [1]/[] for_each, and switch statements
// become chained ternaries over block literals. Function declarations
// lower to locals blocks, and calls to declared functions inline when the
// restricted evaluator can compute them, falling back to the verbatim
// call when it cannot.
//
// The generator expects expanded input. It holds no type registry; a tree
// that still contains type discriminators renders them as-is.
package codegen
