package codegen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/ctxlog"
	"github.com/vk/ehcl/internal/eval"
	"github.com/vk/ehcl/internal/value"
)

const indentUnit = "  "

func indent(level int) string {
	return strings.Repeat(indentUnit, level)
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// renderKey quotes attribute keys that are not valid HCL identifiers.
func renderKey(key string) string {
	if identPattern.MatchString(key) {
		return key
	}
	return `"` + key + `"`
}

// Generator renders one tree. It carries the declared functions seen so
// far, for inlining, and pending maps_to entries until a deployment block
// flushes them.
type Generator struct {
	functions map[string]*ast.Function
	mappings  *value.Fields
}

func New() *Generator {
	return &Generator{functions: make(map[string]*ast.Function), mappings: value.NewFields()}
}

// Generate renders the root block. Root statements separate with blank
// lines; type declarations render nothing at the root.
func (g *Generator) Generate(ctx context.Context, root *ast.Block) string {
	var parts []string
	for _, stmt := range root.Statements {
		if _, ok := stmt.(*ast.TypeDecl); ok {
			continue
		}
		s := g.renderStatement(stmt, 0)
		if strings.TrimSpace(s) == "" {
			continue
		}
		parts = append(parts, s)
	}
	out := strings.Join(parts, "\n\n")
	ctxlog.FromContext(ctx).Debug("Code generation complete.", "bytes", len(out))
	return out
}

// renderStatement renders a node in statement position, including its
// leading indentation. Statements that only record state, like maps_to,
// render as the empty string and the caller drops them.
func (g *Generator) renderStatement(node ast.Node, level int) string {
	ind := indent(level)
	switch n := node.(type) {
	case *ast.KeyValue:
		return ind + renderKey(n.Key) + " = " + g.renderExpr(n.Value, level)
	case *ast.Assignment:
		return ind + n.Name + " = " + g.renderExpr(n.Value, level)
	case *ast.Resource:
		return ind + fmt.Sprintf("resource %q %q ", n.Type, n.Name) + g.renderBlock(n.Block, level)
	case *ast.ForLoop:
		return g.renderForLoop(n, level)
	case *ast.If:
		return g.renderIf(n, level)
	case *ast.Switch:
		return g.renderSwitch(n, level)
	case *ast.Function:
		return g.renderFunction(n, level)
	case *ast.NamedBlock:
		return g.renderNamedBlock(n, level)
	case *ast.RawBlock:
		return g.renderRawBlock(n, level)
	case *ast.MapsTo:
		g.mappings.Set(n.Source, strings.Trim(g.renderExpr(n.Target, level), `"`))
		return ""
	case *ast.Return:
		return ind + "return " + g.renderExpr(n.Value, level)
	case *ast.TypeDecl:
		return g.renderTypeDecl(n, level)
	case *ast.TypeInstance:
		return ind + g.renderTypeInstance(n, level)
	case *ast.Block:
		return ind + g.renderBlock(n, level)
	}
	return ind + g.renderExpr(node, level)
}

// renderBlock renders "{ ... }" with contents one level deeper and the
// closing brace back at level. The caller attaches the opening position.
func (g *Generator) renderBlock(block *ast.Block, level int) string {
	var lines []string
	for _, stmt := range block.Statements {
		s := g.renderStatement(stmt, level+1)
		if strings.TrimSpace(s) == "" {
			continue
		}
		lines = append(lines, s)
	}
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + indent(level) + "}"
}

// renderForLoop lowers a for loop to a dynamic block over its iterable.
func (g *Generator) renderForLoop(n *ast.ForLoop, level int) string {
	ind := indent(level)
	inner := indent(level + 1)
	return ind + fmt.Sprintf("dynamic %q {\n", n.Iterator) +
		inner + "for_each = " + g.renderExpr(n.Iterable, level+1) + "\n" +
		inner + "content " + g.renderBlock(n.Block, level+1) + "\n" +
		ind + "}"
}

// renderIf lowers an if statement to a dynamic "conditional" block whose
// for_each is a one-or-zero element list.
func (g *Generator) renderIf(n *ast.If, level int) string {
	ind := indent(level)
	inner := indent(level + 1)
	cond := g.renderExpr(n.Condition, level+1)
	s := ind + "dynamic \"conditional\" {\n"
	if n.Else != nil {
		s += inner + "for_each = " + cond + " ? [1] : [0]\n"
		s += inner + "content " + g.renderBlock(n.Then, level+1) + "\n"
		s += inner + "else " + g.renderBlock(n.Else, level+1) + "\n"
	} else {
		s += inner + "for_each = " + cond + " ? [1] : []\n"
		s += inner + "content " + g.renderBlock(n.Then, level+1) + "\n"
	}
	return s + ind + "}"
}

// renderSwitch lowers a switch to a chain of equality ternaries over
// block literals, with the default block as the final alternative.
func (g *Generator) renderSwitch(n *ast.Switch, level int) string {
	val := g.renderExpr(n.Value, level)
	var parts []string
	for _, c := range n.Cases {
		parts = append(parts, val+" == "+g.renderExpr(c.Value, level)+" ? "+g.renderBlock(c.Block, level))
	}
	if n.Default != nil {
		parts = append(parts, g.renderBlock(n.Default, level))
	}
	return indent(level) + strings.Join(parts, " : ")
}

// renderFunction lowers a declaration to a locals block holding one entry
// per return statement, and records the function for later inlining.
func (g *Generator) renderFunction(n *ast.Function, level int) string {
	g.functions[n.Name] = n
	ind := indent(level)
	inner := indent(level + 1)
	s := ind + "locals {\n"
	for _, stmt := range n.Block.Statements {
		ret, ok := stmt.(*ast.Return)
		if !ok {
			continue
		}
		s += inner + n.Name + " = " + g.renderExpr(ret.Value, level+1) + "\n"
	}
	return s + ind + "}"
}

// renderNamedBlock renders `name "label" { ... }`. Deployment blocks
// additionally flush accumulated maps_to entries as a mappings attribute
// at the top of the body.
func (g *Generator) renderNamedBlock(n *ast.NamedBlock, level int) string {
	if n.Name == "deployment" {
		return g.renderDeployment(n, level)
	}
	label := ""
	if n.Label != "" {
		label = fmt.Sprintf(" %q", n.Label)
	}
	return indent(level) + n.Name + label + " " + g.renderBlock(n.Block, level)
}

func (g *Generator) renderDeployment(n *ast.NamedBlock, level int) string {
	ind := indent(level)
	for _, stmt := range n.Block.Statements {
		if m, ok := stmt.(*ast.MapsTo); ok {
			g.mappings.Set(m.Source, strings.Trim(g.renderExpr(m.Target, level+1), `"`))
		}
	}
	label := ""
	if n.Label != "" {
		label = fmt.Sprintf(" %q", n.Label)
	}
	s := ind + n.Name + label + " {\n"
	if g.mappings.Len() > 0 {
		s += g.renderMappings(level+1) + "\n"
		g.mappings = value.NewFields()
	}
	for _, stmt := range n.Block.Statements {
		if _, ok := stmt.(*ast.MapsTo); ok {
			continue
		}
		line := g.renderStatement(stmt, level+1)
		if strings.TrimSpace(line) == "" {
			continue
		}
		s += line + "\n"
	}
	return s + ind + "}"
}

func (g *Generator) renderMappings(level int) string {
	ind := indent(level)
	inner := indent(level + 1)
	s := ind + "mappings = {\n"
	for _, key := range g.mappings.Names() {
		v, _ := g.mappings.Get(key)
		s += inner + renderKey(key) + " = \"" + v.AsString() + "\"\n"
	}
	return s + ind + "}"
}

// renderRawBlock re-indents captured source one level inside the braces.
// Blank lines stay blank rather than picking up trailing spaces.
func (g *Generator) renderRawBlock(n *ast.RawBlock, level int) string {
	ind := indent(level)
	label := ""
	if n.Label != "" {
		label = fmt.Sprintf(" %q", n.Label)
	}
	if n.Content == "" {
		return ind + n.Name + label + " {\n" + ind + "}"
	}
	inner := indent(level + 1)
	lines := strings.Split(n.Content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		} else {
			lines[i] = inner + line
		}
	}
	return ind + n.Name + label + " {\n" + strings.Join(lines, "\n") + "\n" + ind + "}"
}

// renderTypeDecl emits the commented summary of a nested type
// declaration. Root-level declarations are dropped before this runs.
func (g *Generator) renderTypeDecl(n *ast.TypeDecl, level int) string {
	ind := indent(level)
	var b strings.Builder
	b.WriteString(ind + fmt.Sprintf("# Type %s definition", n.Name))
	for _, f := range n.Fields {
		b.WriteString("\n" + ind + fmt.Sprintf("#   %s: %s", f.Name, f.Type))
		if f.Default != nil {
			b.WriteString(" = " + g.renderExpr(f.Default, level))
		}
	}
	return b.String()
}

func (g *Generator) renderTypeInstance(n *ast.TypeInstance, level int) string {
	label := ""
	if n.Label != "" {
		label = fmt.Sprintf(" %q", n.Label)
	}
	return "type = " + n.TypeName + label + " " + g.renderBlock(n.Block, level)
}

// renderExpr renders a node in expression position, without leading
// indentation. Multi-line forms indent their continuation lines relative
// to level.
func (g *Generator) renderExpr(node ast.Node, level int) string {
	switch n := node.(type) {
	case *ast.Literal:
		return renderLiteral(n)
	case *ast.Identifier:
		return n.Name
	case *ast.AttrAccess:
		return g.renderExpr(n.Object, level) + "." + n.Attr
	case *ast.Binary:
		return g.renderExpr(n.Left, level) + " " + n.Op.Text + " " + g.renderExpr(n.Right, level)
	case *ast.Ternary:
		return g.renderExpr(n.Condition, level) + " ? " + g.renderExpr(n.IfTrue, level) + " : " + g.renderExpr(n.IfFalse, level)
	case *ast.Call:
		return g.renderCall(n, level)
	case *ast.List:
		return g.renderList(n, level)
	case *ast.Object:
		return g.renderObject(n, level)
	case *ast.Block:
		return g.renderBlock(n, level)
	case *ast.TypeInstance:
		return g.renderTypeInstance(n, level)
	}
	panic(fmt.Sprintf("codegen: unexpected expression node %T", node))
}

func renderLiteral(n *ast.Literal) string {
	switch n.Val.Kind() {
	case value.String:
		return strconv.Quote(n.Val.AsString())
	case value.Number:
		// Numbers straight from source keep their exact spelling.
		if n.Raw != "" {
			return n.Raw
		}
	}
	return n.Val.Text()
}

// renderCall inlines calls to declared functions when their arguments and
// body evaluate; any failure falls back to the verbatim call.
func (g *Generator) renderCall(n *ast.Call, level int) string {
	if id, ok := n.Callee.(*ast.Identifier); ok {
		if fn, ok := g.functions[id.Name]; ok {
			if s, err := g.inlineCall(fn, n.Args); err == nil {
				return s
			}
		}
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.renderExpr(a, level)
	}
	return g.renderExpr(n.Callee, level) + "(" + strings.Join(args, ", ") + ")"
}

func (g *Generator) inlineCall(fn *ast.Function, args []ast.Node) (string, error) {
	params := value.NewFields()
	for i, p := range fn.Params {
		if i >= len(args) {
			break
		}
		v, err := eval.Evaluate(args[i], nil)
		if err != nil {
			return "", err
		}
		params.Set(p.Name, v)
	}
	result, err := eval.EvaluateFunc(fn.Block, params)
	if err != nil {
		return "", err
	}
	if result.Kind() == value.String {
		s := result.AsString()
		if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
			return s, nil
		}
		return `"` + s + `"`, nil
	}
	return result.Text(), nil
}

// renderList stays on one line while every element is a literal or
// identifier; anything compound switches to one element per line.
func (g *Generator) renderList(n *ast.List, level int) string {
	if len(n.Elements) == 0 {
		return "[]"
	}
	simple := true
	for _, e := range n.Elements {
		switch e.(type) {
		case *ast.Literal, *ast.Identifier:
		default:
			simple = false
		}
	}
	if simple {
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = g.renderExpr(e, level)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	inner := indent(level + 1)
	var b strings.Builder
	b.WriteString("[\n")
	for i, e := range n.Elements {
		b.WriteString(inner + g.renderExpr(e, level+1))
		if i < len(n.Elements)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent(level) + "]")
	return b.String()
}

// renderObject always renders multi-line. A typed instance in attribute
// position renders its own `type = Name { ... }` form in place of the
// usual `key = value`.
func (g *Generator) renderObject(n *ast.Object, level int) string {
	if len(n.Attrs) == 0 {
		return "{}"
	}
	inner := indent(level + 1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, attr := range n.Attrs {
		if ti, ok := attr.Value.(*ast.TypeInstance); ok {
			b.WriteString(inner + g.renderTypeInstance(ti, level+1) + "\n")
			continue
		}
		b.WriteString(inner + renderKey(attr.Key) + " = " + g.renderExpr(attr.Value, level+1) + "\n")
	}
	b.WriteString(indent(level) + "}")
	return b.String()
}
