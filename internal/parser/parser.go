package parser

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/ctxlog"
	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/token"
	"github.com/vk/ehcl/internal/types"
	"github.com/vk/ehcl/internal/value"
)

// Parser consumes one token stream. It is single use.
type Parser struct {
	tokens     []token.Token
	source     string
	pos        int
	blockLevel int
	registry   *types.Registry
}

// New creates a parser over a token stream. The source text is retained
// so raw blocks can capture their exact span.
func New(tokens []token.Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source, registry: types.NewRegistry()}
}

// Registry returns the type registry definitions register into. Callers
// may preload it before Parse.
func (p *Parser) Registry() *types.Registry {
	return p.registry
}

// Parse consumes the whole stream and returns the root block.
func (p *Parser) Parse(ctx context.Context) (*ast.Block, error) {
	var statements []ast.Node
	for !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	ctxlog.FromContext(ctx).Debug("Parsing complete.", "statements", len(statements))
	return &ast.Block{Statements: statements}, nil
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// advance consumes the current token. The trailing EOF is never passed.
func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) consume(k token.Kind) (token.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}
	c := p.cur()
	return token.Token{}, diag.Syntaxf(c.Line, c.Column,
		"Expected token %s at line %d column %d, got %s", k, c.Line, c.Column, c.Kind)
}

func (p *Parser) parseStatement() (ast.Node, error) {
	t := p.cur()
	switch {
	case t.Kind == token.Return:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: expr}, nil
	case t.Kind == token.Resource:
		return p.parseResource()
	case t.Kind == token.For:
		return p.parseForLoop()
	case t.Kind == token.If:
		return p.parseIf()
	case t.Kind == token.Switch:
		return p.parseSwitch()
	case t.Kind == token.Function:
		return p.parseFunction()
	case t.Kind == token.Ident && t.Text == "type" && p.blockLevel == 0:
		return p.parseTypeDefinition()
	case t.Kind == token.Ident && t.Text == "service":
		return p.parseServiceBlock()
	case t.Kind == token.Ident || t.Kind == token.String:
		switch p.peek().Kind {
		case token.MapsTo:
			return p.parseMapsTo()
		case token.Assign:
			return p.parseAssignment()
		case token.LBrace:
			return p.parseNamedBlock()
		}
	}
	return p.parseExpression()
}

// parseResource parses `resource "TYPE" "NAME" { ... }`. When the body
// assigns a type, the literal attribute values validate against the
// registry right away so the failure names the resource's line.
func (p *Parser) parseResource() (ast.Node, error) {
	if _, err := p.consume(token.Resource); err != nil {
		return nil, err
	}
	typeTok, err := p.consume(token.String)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(token.String)
	if err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if typeName := resourceTypeName(block); typeName != "" {
		if errs := p.registry.ValidateInstance(typeName, blockValues(block)); len(errs) > 0 {
			merr := &multierror.Error{ErrorFormat: listFormat}
			merr = multierror.Append(merr, errs...)
			return nil, &diag.TypeError{Line: typeTok.Line, Err: merr}
		}
	}
	return &ast.Resource{Type: typeTok.Text, Name: nameTok.Text, Block: block}, nil
}

// listFormat joins aggregated errors one per line, without a count header.
func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// resourceTypeName returns the name assigned to the "type" attribute of
// the block, or "" when the block has none.
func resourceTypeName(block *ast.Block) string {
	for _, stmt := range block.Statements {
		kv, ok := stmt.(*ast.KeyValue)
		if !ok || kv.Key != "type" {
			continue
		}
		switch v := kv.Value.(type) {
		case *ast.Identifier:
			return v.Name
		case *ast.Literal:
			if v.Val.Kind() == value.String {
				return v.Val.AsString()
			}
		}
		return ""
	}
	return ""
}

// blockValues collects the literal and identifier attributes of a block
// for validation. Compound values are checked after expansion instead.
func blockValues(block *ast.Block) *value.Fields {
	values := value.NewFields()
	for _, stmt := range block.Statements {
		kv, ok := stmt.(*ast.KeyValue)
		if !ok {
			continue
		}
		switch v := kv.Value.(type) {
		case *ast.Literal:
			values.Set(kv.Key, v.Val)
		case *ast.Identifier:
			values.Set(kv.Key, value.StringVal(v.Name))
		}
	}
	return values
}

func (p *Parser) parseForLoop() (ast.Node, error) {
	if _, err := p.consume(token.For); err != nil {
		return nil, err
	}
	if !p.at(token.Ident) {
		c := p.cur()
		return nil, diag.Syntaxf(c.Line, c.Column, "Expected identifier after 'for' at line %d", c.Line)
	}
	iterator := p.advance().Text
	if !p.at(token.In) {
		c := p.cur()
		return nil, diag.Syntaxf(c.Line, c.Column, "Expected 'in' after iterator at line %d", c.Line)
	}
	p.advance()
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.at(token.LBrace) {
		c := p.cur()
		return nil, diag.Syntaxf(c.Line, c.Column, "Expected '{' after for loop header at line %d", c.Line)
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Iterator: iterator, Iterable: iterable, Block: block}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	if _, err := p.consume(token.If); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.Block
	if p.at(token.Else) {
		p.advance()
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: elseBlock}, nil
}

// parseSwitch parses `switch expr { case expr { ... } default { ... } }`.
// Case arms carry no colon.
func (p *Parser) parseSwitch() (ast.Node, error) {
	if _, err := p.consume(token.Switch); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBrace); err != nil {
		return nil, err
	}
	sw := &ast.Switch{Value: val}
	for !p.at(token.RBrace) {
		switch {
		case p.at(token.Case):
			p.advance()
			caseVal, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, ast.SwitchCase{Value: caseVal, Block: block})
		case p.at(token.Default):
			p.advance()
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			sw.Default = block
		default:
			c := p.cur()
			return nil, diag.Syntaxf(c.Line, c.Column, "Expected 'case' or 'default' in switch statement at line %d", c.Line)
		}
	}
	if _, err := p.consume(token.RBrace); err != nil {
		return nil, err
	}
	return sw, nil
}

func (p *Parser) parseFunction() (ast.Node, error) {
	if _, err := p.consume(token.Function); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RParen); err != nil {
		return nil, err
	}
	returnType := ""
	if p.at(token.Colon) {
		p.advance()
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		returnType = annot.String()
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: nameTok.Text, Params: params, ReturnType: returnType, Block: block}, nil
}

func (p *Parser) parseParams() ([]ast.Param, error) {
	var params []ast.Param
	if p.at(token.RParen) {
		return params, nil
	}
	for {
		nameTok, err := p.consume(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.Colon); err != nil {
			return nil, err
		}
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok.Text, Type: annot.String()})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return params, nil
}

// parseTypeDefinition parses `type Name { field: annotation = default }`
// and registers the definition. The returned TypeDecl is the declaration
// view only; expansion works off the registry.
func (p *Parser) parseTypeDefinition() (ast.Node, error) {
	kw := p.cur()
	if kw.Kind != token.Ident || kw.Text != "type" {
		return nil, diag.Syntaxf(kw.Line, kw.Column, "Expected 'type' keyword at line %d", kw.Line)
	}
	p.advance()
	nameTok, err := p.consume(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBrace); err != nil {
		return nil, err
	}

	baseType := ""
	var fields []types.FieldDefinition
	var declFields []ast.TypeField
	for !p.at(token.RBrace) {
		if !p.at(token.Ident) {
			bad := p.advance()
			return nil, diag.Syntaxf(bad.Line, bad.Column, "Expected field name in type definition at line %d", bad.Line)
		}
		fieldName := p.advance().Text
		if fieldName == "base" {
			if _, err := p.consume(token.Colon); err != nil {
				return nil, err
			}
			baseTok, err := p.consume(token.Ident)
			if err != nil {
				return nil, err
			}
			baseType = baseTok.Text
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		if _, err := p.consume(token.Colon); err != nil {
			return nil, err
		}
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		var defaultExpr ast.Node
		var calculated *types.CalculatedField
		if p.at(token.Assign) {
			p.advance()
			if p.at(token.Calc) {
				p.advance()
				if _, err := p.consume(token.LBrace); err != nil {
					return nil, err
				}
				expr, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if _, err := p.consume(token.RBrace); err != nil {
					return nil, err
				}
				calculated = &types.CalculatedField{Expr: expr}
			} else {
				defaultExpr, err = p.parseExpression()
				if err != nil {
					return nil, err
				}
			}
		}
		fields = append(fields, types.FieldDefinition{
			Name:        fieldName,
			Constraint:  types.TypeConstraint{Type: annot, Nullable: annot.Nullable},
			DefaultExpr: defaultExpr,
			Calculated:  calculated,
		})
		declFields = append(declFields, ast.TypeField{Name: fieldName, Type: annot.String(), Default: defaultExpr})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.consume(token.RBrace); err != nil {
		return nil, err
	}

	def := &types.TypeDefinition{Name: nameTok.Text, BaseType: baseType, Fields: fields}
	if err := p.registry.Register(def); err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Name: nameTok.Text, Base: baseType, Fields: declFields}, nil
}

// parseTypeAnnotation parses `name`, `name?`, and `a | b | c` forms. Union
// members may be string literals; the primary's nullable marker applies to
// the whole union.
func (p *Parser) parseTypeAnnotation() (types.CustomType, error) {
	t := p.cur()
	if t.Kind != token.Ident && t.Kind != token.String {
		p.advance()
		return types.CustomType{}, diag.Syntaxf(t.Line, t.Column, "Unexpected token %s in type annotation at line %d", t.Kind, t.Line)
	}
	p.advance()
	primary := types.CustomType{Name: t.Text}
	if p.at(token.Question) {
		p.advance()
		primary.Nullable = true
	}
	if !p.at(token.Pipe) {
		return primary, nil
	}
	union := []types.CustomType{{Name: primary.Name}}
	for p.at(token.Pipe) {
		p.advance()
		m := p.cur()
		if m.Kind != token.Ident && m.Kind != token.String {
			p.advance()
			return types.CustomType{}, diag.Syntaxf(m.Line, m.Column, "Unexpected token %s in type annotation at line %d", m.Kind, m.Line)
		}
		p.advance()
		union = append(union, types.CustomType{Name: m.Text})
	}
	return types.CustomType{Union: union, Nullable: primary.Nullable}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.consume(token.LBrace); err != nil {
		return nil, err
	}
	p.blockLevel++
	defer func() { p.blockLevel-- }()
	var statements []ast.Node
	for !p.at(token.RBrace) {
		var stmt ast.Node
		var err error
		if p.at(token.Ident) || p.at(token.String) {
			stmt, err = p.parseKeyValueOrStatement()
		} else {
			stmt, err = p.parseStatement()
		}
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	if _, err := p.consume(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.Block{Statements: statements}, nil
}

// parseKeyValueOrStatement disambiguates a leading identifier or string
// inside a block: a key-value pair, a typed instance, a nested block, or
// a plain statement. When none of the markers follow, the cursor rewinds
// and the tokens reparse as a statement.
func (p *Parser) parseKeyValueOrStatement() (ast.Node, error) {
	keyTok := p.cur()
	if keyTok.Kind != token.Ident && keyTok.Kind != token.String {
		return p.parseStatement()
	}
	start := p.pos
	p.advance()
	label := ""
	if p.at(token.String) {
		label = p.advance().Text
	}
	switch {
	case p.at(token.Colon):
		p.advance()
		if p.at(token.Ident) && p.peek().Kind == token.LBrace {
			typeName := p.advance().Text
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &ast.TypeInstance{Label: keyTok.Text, TypeName: typeName, Block: block}, nil
		}
		val, err := p.parseExpressionOrBlock()
		if err != nil {
			return nil, err
		}
		return &ast.KeyValue{Key: keyTok.Text, Value: val}, nil
	case p.at(token.Assign):
		p.advance()
		val, err := p.parseExpressionOrBlock()
		if err != nil {
			return nil, err
		}
		return &ast.KeyValue{Key: keyTok.Text, Value: val}, nil
	case p.at(token.LBrace):
		if isRawBlockName(keyTok.Text) {
			content, err := p.consumeRawBlock()
			if err != nil {
				return nil, err
			}
			return &ast.RawBlock{Name: keyTok.Text, Label: label, Content: content}, nil
		}
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.NamedBlock{Name: keyTok.Text, Label: label, Block: block}, nil
	}
	p.pos = start
	return p.parseStatement()
}

// parseNamedBlock parses `name "label" { ... }` in statement position.
func (p *Parser) parseNamedBlock() (ast.Node, error) {
	nameTok, err := p.consume(token.Ident)
	if err != nil {
		return nil, err
	}
	label := ""
	if p.at(token.String) {
		label = p.advance().Text
	}
	if isRawBlockName(nameTok.Text) {
		content, err := p.consumeRawBlock()
		if err != nil {
			return nil, err
		}
		return &ast.RawBlock{Name: nameTok.Text, Label: label, Content: content}, nil
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.NamedBlock{Name: nameTok.Text, Label: label, Block: block}, nil
}

func (p *Parser) parseServiceBlock() (ast.Node, error) {
	p.advance()
	labelTok, err := p.consume(token.String)
	if err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.NamedBlock{Name: "service", Label: labelTok.Text, Block: block}, nil
}

func (p *Parser) parseMapsTo() (ast.Node, error) {
	sourceTok := p.advance()
	if _, err := p.consume(token.MapsTo); err != nil {
		return nil, err
	}
	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.MapsTo{Source: sourceTok.Text, Target: target}, nil
}

func (p *Parser) parseAssignment() (ast.Node, error) {
	nameTok, err := p.consume(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Assign); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Name: nameTok.Text, Value: val}, nil
}

func (p *Parser) parseExpressionOrBlock() (ast.Node, error) {
	if p.at(token.LBrace) {
		return p.parseObject()
	}
	return p.parseExpression()
}

// parseObject parses a brace-delimited object literal. Entries may be
// separated by commas or newlines; nested named blocks flatten to their
// block value and typed instances keep their label as the key.
func (p *Parser) parseObject() (ast.Node, error) {
	if _, err := p.consume(token.LBrace); err != nil {
		return nil, err
	}
	obj := &ast.Object{}
	for !p.at(token.RBrace) {
		stmt, err := p.parseKeyValueOrStatement()
		if err != nil {
			return nil, err
		}
		switch s := stmt.(type) {
		case *ast.KeyValue:
			obj.Set(s.Key, s.Value)
		case *ast.TypeInstance:
			obj.Set(s.Label, s)
		case *ast.NamedBlock:
			obj.Set(s.Name, s.Block)
		}
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.consume(token.RBrace); err != nil {
		return nil, err
	}
	return obj, nil
}

// parseExpression parses a full expression including the ternary form,
// which binds loosest and associates to the right.
func (p *Parser) parseExpression() (ast.Node, error) {
	expr, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.at(token.Question) {
		return expr, nil
	}
	p.advance()
	ifTrue, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Colon); err != nil {
		return nil, err
	}
	ifFalse, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Condition: expr, IfTrue: ifTrue, IfFalse: ifFalse}, nil
}

func (p *Parser) parseBinary(min int) (ast.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		prec, isOp := binaryPrecedence(t.Kind)
		if !isOp || prec < min {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: t, Right: right}
	}
}

func binaryPrecedence(k token.Kind) (int, bool) {
	switch k {
	case token.Or:
		return 1, true
	case token.And:
		return 2, true
	case token.Eq, token.NotEq:
		return 3, true
	case token.Greater, token.GreaterEq, token.Less, token.LessEq:
		return 4, true
	case token.Plus, token.Minus:
		return 5, true
	case token.Star, token.Slash, token.Percent:
		return 6, true
	}
	return 0, false
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case token.Number:
		p.advance()
		v, err := value.ParseNumberVal(t.Text)
		if err != nil {
			return nil, diag.Syntaxf(t.Line, t.Column, "Invalid number literal '%s' at line %d column %d", t.Text, t.Line, t.Column)
		}
		return &ast.Literal{Val: v, Raw: t.Text}, nil
	case token.String:
		p.advance()
		return &ast.Literal{Val: value.StringVal(t.Text)}, nil
	case token.True:
		p.advance()
		return &ast.Literal{Val: value.BoolVal(true)}, nil
	case token.False:
		p.advance()
		return &ast.Literal{Val: value.BoolVal(false)}, nil
	case token.Null:
		p.advance()
		return &ast.Literal{Val: value.NullVal()}, nil
	case token.LBracket:
		return p.parseList()
	case token.LBrace:
		return p.parseObject()
	case token.LParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	case token.Ident:
		p.advance()
		return p.parsePostfix(&ast.Identifier{Name: t.Text})
	}
	return nil, diag.Syntaxf(t.Line, t.Column, "Unexpected token %s ('%s') at line %d column %d", t.Kind, t.Text, t.Line, t.Column)
}

// parsePostfix chains attribute accesses and calls onto a primary.
func (p *Parser) parsePostfix(node ast.Node) (ast.Node, error) {
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			attrTok, err := p.consume(token.Ident)
			if err != nil {
				return nil, err
			}
			node = &ast.AttrAccess{Object: node, Attr: attrTok.Text}
		case p.at(token.LParen):
			p.advance()
			var args []ast.Node
			if !p.at(token.RParen) {
				for {
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.at(token.Comma) {
						break
					}
					p.advance()
				}
			}
			if _, err := p.consume(token.RParen); err != nil {
				return nil, err
			}
			node = &ast.Call{Callee: node, Args: args}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parseList() (ast.Node, error) {
	if _, err := p.consume(token.LBracket); err != nil {
		return nil, err
	}
	list := &ast.List{}
	if !p.at(token.RBracket) {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, elem)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.consume(token.RBracket); err != nil {
		return nil, err
	}
	return list, nil
}

func isRawBlockName(name string) bool {
	return name == "configuration" || name == "containers"
}

// consumeRawBlock swallows a balanced-brace span and returns the source
// text between the braces, dedented. The tokens inside are consumed but
// their structure is deliberately ignored, so anything brace-balanced
// passes through.
func (p *Parser) consumeRawBlock() (string, error) {
	open, err := p.consume(token.LBrace)
	if err != nil {
		return "", err
	}
	depth := 1
	var closeTok token.Token
	for depth > 0 {
		t := p.cur()
		if t.Kind == token.EOF {
			return "", diag.Syntaxf(t.Line, t.Column,
				"Expected token %s at line %d column %d, got %s", token.RBrace, t.Line, t.Column, t.Kind)
		}
		p.advance()
		switch t.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				closeTok = t
			}
		}
	}
	return dedent(p.source[open.End:closeTok.Offset]), nil
}

// dedent drops blank edge lines and strips the common leading indentation.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin > 0 {
		for i, line := range lines {
			if len(line) >= margin {
				lines[i] = line[margin:]
			} else {
				lines[i] = strings.TrimLeft(line, " \t")
			}
		}
	}
	return strings.Join(lines, "\n")
}
