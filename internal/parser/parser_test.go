package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/lexer"
	"github.com/vk/ehcl/internal/value"
)

func parseSource(t *testing.T, src string) (*ast.Block, *Parser) {
	t.Helper()
	tokens, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	p := New(tokens, src)
	root, err := p.Parse(context.Background())
	require.NoError(t, err)
	return root, p
}

func parseFailure(t *testing.T, src string) error {
	t.Helper()
	tokens, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	_, err = New(tokens, src).Parse(context.Background())
	require.Error(t, err)
	return err
}

func TestParse_Resource(t *testing.T) {
	root, _ := parseSource(t, `resource "aws_instance" "web" {
  ami = "ami-123"
  count = 2
}
`)
	require.Len(t, root.Statements, 1)
	res, ok := root.Statements[0].(*ast.Resource)
	require.True(t, ok)
	assert.Equal(t, "aws_instance", res.Type)
	assert.Equal(t, "web", res.Name)
	require.Len(t, res.Block.Statements, 2)

	ami := res.Block.Statements[0].(*ast.KeyValue)
	assert.Equal(t, "ami", ami.Key)
	assert.Equal(t, "ami-123", ami.Value.(*ast.Literal).Val.AsString())

	count := res.Block.Statements[1].(*ast.KeyValue)
	assert.Equal(t, "2", count.Value.(*ast.Literal).Raw)
}

func TestParse_TopLevelAssignment(t *testing.T) {
	root, _ := parseSource(t, `env = "prod"`)
	require.Len(t, root.Statements, 1)
	asn, ok := root.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "env", asn.Name)
	assert.Equal(t, "prod", asn.Value.(*ast.Literal).Val.AsString())
}

func TestParse_TypeDefinitionRegisters(t *testing.T) {
	src := `type Instance {
  cpu: number = 2
  name: string
}

type Server {
  base: Instance
  size: "t2.micro" | "t2.small" = "t2.micro"
  version: string?
  fqdn: string = calc { name }
}
`
	root, p := parseSource(t, src)
	require.Len(t, root.Statements, 2)

	decl := root.Statements[1].(*ast.TypeDecl)
	assert.Equal(t, "Server", decl.Name)
	assert.Equal(t, "Instance", decl.Base)
	require.Len(t, decl.Fields, 3)
	assert.Equal(t, `"t2.micro" | "t2.small"`, decl.Fields[0].Type)
	assert.Equal(t, "string?", decl.Fields[1].Type)
	assert.Nil(t, decl.Fields[2].Default, "calculated fields have no declaration default")

	require.True(t, p.Registry().Has("Server"))
	all, err := p.Registry().AllFields("Server")
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"cpu", "name", "size", "version", "fqdn"}, names)
	assert.NotNil(t, all[4].Calculated)
	assert.True(t, all[3].Constraint.Nullable)
}

func TestParse_TypeDefinitionErrors(t *testing.T) {
	err := parseFailure(t, `type Child {
  base: Parent
}
`)
	assert.EqualError(t, err, "Base type Parent not found")

	err = parseFailure(t, `type T { 42: string }`)
	assert.EqualError(t, err, "Expected field name in type definition at line 1")

	err = parseFailure(t, `type T { f: 42 }`)
	assert.EqualError(t, err, "Unexpected token NUMBER in type annotation at line 1")
}

func TestParse_TypeKeywordIsContextual(t *testing.T) {
	// Inside a block "type" is an ordinary key, not a declaration.
	root, _ := parseSource(t, `service "web" {
  type = "container"
}
`)
	svc := root.Statements[0].(*ast.NamedBlock)
	kv := svc.Block.Statements[0].(*ast.KeyValue)
	assert.Equal(t, "type", kv.Key)
	assert.Equal(t, "container", kv.Value.(*ast.Literal).Val.AsString())
}

func TestParse_ResourceValidatesEagerly(t *testing.T) {
	src := `type Instance {
  cpu: number
}

resource "aws_instance" "web" {
  type = Instance
}
`
	err := parseFailure(t, src)
	assert.EqualError(t, err, "At line 5: Missing required field: cpu")

	var typeErr *diag.TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 5, typeErr.Line)
}

func TestParse_ResourceValidationAggregates(t *testing.T) {
	src := `type Instance {
  cpu: number
  os: "linux" | "windows"
}

resource "aws_instance" "web" {
  type = Instance
  cpu = "two"
  os = "mac"
}
`
	err := parseFailure(t, src)
	assert.EqualError(t, err, "At line 6: Field cpu: Value does not match type: number\n"+
		"Field os: Value does not match any of the union types: linux, windows")
}

func TestParse_ResourceUnknownTypeSuggests(t *testing.T) {
	src := `type Instance {
  cpu: number = 2
}

resource "aws_instance" "web" {
  type = Instannce
}
`
	err := parseFailure(t, src)
	assert.EqualError(t, err, "At line 5: Unknown type: Instannce\nDid you mean \"Instance\"?")
}

func TestParse_ResourceWithoutTypeSkipsValidation(t *testing.T) {
	root, _ := parseSource(t, `resource "aws_s3_bucket" "logs" {
  bucket = "my-logs"
}
`)
	_, ok := root.Statements[0].(*ast.Resource)
	assert.True(t, ok)
}

func TestParse_ResourceValidates(t *testing.T) {
	// A satisfied type constraint parses cleanly; the quoted form of the
	// type name validates the same way as the bare one.
	src := `type Instance {
  cpu: number = 2
}

resource "aws_instance" "ok" {
  type = "Instance"
}
`
	root, _ := parseSource(t, src)
	require.Len(t, root.Statements, 2)
}

func TestParse_KeyValueForms(t *testing.T) {
	src := `service "api" {
  a = 1
  b: 2
  "app.kubernetes.io/name" = "api"
  web: Instance {
    cpu = 1
  }
  limits {
    memory = "256Mi"
  }
}
`
	root, _ := parseSource(t, src)
	svc := root.Statements[0].(*ast.NamedBlock)
	require.Len(t, svc.Block.Statements, 5)

	assert.Equal(t, "a", svc.Block.Statements[0].(*ast.KeyValue).Key)
	assert.Equal(t, "b", svc.Block.Statements[1].(*ast.KeyValue).Key)
	assert.Equal(t, "app.kubernetes.io/name", svc.Block.Statements[2].(*ast.KeyValue).Key)

	inst := svc.Block.Statements[3].(*ast.TypeInstance)
	assert.Equal(t, "web", inst.Label)
	assert.Equal(t, "Instance", inst.TypeName)

	limits := svc.Block.Statements[4].(*ast.NamedBlock)
	assert.Equal(t, "limits", limits.Name)
	assert.Empty(t, limits.Label)
}

func TestParse_ObjectLiteral(t *testing.T) {
	src := `tags = {
  env = "prod"
  team = "core", app = "web"
}
`
	root, _ := parseSource(t, src)
	obj := root.Statements[0].(*ast.Assignment).Value.(*ast.Object)
	require.Len(t, obj.Attrs, 3)
	assert.Equal(t, "env", obj.Attrs[0].Key)
	assert.Equal(t, "team", obj.Attrs[1].Key)
	assert.Equal(t, "app", obj.Attrs[2].Key)
}

func TestParse_ObjectDuplicateKeyOverwrites(t *testing.T) {
	root, _ := parseSource(t, `tags = { env = "a", env = "b" }`)
	obj := root.Statements[0].(*ast.Assignment).Value.(*ast.Object)
	require.Len(t, obj.Attrs, 1)
	v, _ := obj.Get("env")
	assert.Equal(t, "b", v.(*ast.Literal).Val.AsString())
}

func TestParse_ObjectFoldsNestedForms(t *testing.T) {
	src := `settings = {
  retry {
    max = 3
  }
  db: Postgres {
    port = 5432
  }
}
`
	root, _ := parseSource(t, src)
	obj := root.Statements[0].(*ast.Assignment).Value.(*ast.Object)
	require.Len(t, obj.Attrs, 2)

	retry, _ := obj.Get("retry")
	_, isBlock := retry.(*ast.Block)
	assert.True(t, isBlock, "a nested named block folds to its block value")

	db, _ := obj.Get("db")
	inst, isInstance := db.(*ast.TypeInstance)
	require.True(t, isInstance)
	assert.Equal(t, "Postgres", inst.TypeName)
}

func TestParse_StatementRewindInsideBlock(t *testing.T) {
	// A leading identifier that turns out not to start a key-value pair
	// reparses as an expression statement.
	root, _ := parseSource(t, `service "s" {
  cpu + 1
}
`)
	svc := root.Statements[0].(*ast.NamedBlock)
	bin, ok := svc.Block.Statements[0].(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op.Text)
	assert.Equal(t, "cpu", bin.Left.(*ast.Identifier).Name)
}

func TestParse_Ternary(t *testing.T) {
	root, _ := parseSource(t, `size = env == "prod" ? 3 : 1`)
	tern := root.Statements[0].(*ast.Assignment).Value.(*ast.Ternary)
	cond := tern.Condition.(*ast.Binary)
	assert.Equal(t, "==", cond.Op.Text)
	assert.Equal(t, "3", tern.IfTrue.(*ast.Literal).Raw)
	assert.Equal(t, "1", tern.IfFalse.(*ast.Literal).Raw)
}

func TestParse_TernaryAssociatesRight(t *testing.T) {
	root, _ := parseSource(t, `x = a ? "big" : b ? "mid" : "small"`)
	outer := root.Statements[0].(*ast.Assignment).Value.(*ast.Ternary)
	assert.Equal(t, "a", outer.Condition.(*ast.Identifier).Name)
	assert.Equal(t, "big", outer.IfTrue.(*ast.Literal).Val.AsString())

	inner := outer.IfFalse.(*ast.Ternary)
	assert.Equal(t, "b", inner.Condition.(*ast.Identifier).Name)
	assert.Equal(t, "small", inner.IfFalse.(*ast.Literal).Val.AsString())
}

func TestParse_BinaryPrecedence(t *testing.T) {
	root, _ := parseSource(t, `ok = a + b * 2 == c`)
	eq := root.Statements[0].(*ast.Assignment).Value.(*ast.Binary)
	assert.Equal(t, "==", eq.Op.Text)

	sum := eq.Left.(*ast.Binary)
	assert.Equal(t, "+", sum.Op.Text)
	mul := sum.Right.(*ast.Binary)
	assert.Equal(t, "*", mul.Op.Text)
}

func TestParse_PostfixChains(t *testing.T) {
	root, _ := parseSource(t, `zone = var.region.name`)
	outer := root.Statements[0].(*ast.Assignment).Value.(*ast.AttrAccess)
	assert.Equal(t, "name", outer.Attr)
	inner := outer.Object.(*ast.AttrAccess)
	assert.Equal(t, "region", inner.Attr)
	assert.Equal(t, "var", inner.Object.(*ast.Identifier).Name)

	root, _ = parseSource(t, `name = make_name("web", env)`)
	call := root.Statements[0].(*ast.Assignment).Value.(*ast.Call)
	assert.Equal(t, "make_name", call.Callee.(*ast.Identifier).Name)
	require.Len(t, call.Args, 2)
}

func TestParse_Switch(t *testing.T) {
	src := `switch env {
  case "prod" {
    count = 3
  }
  default {
    count = 1
  }
}
`
	root, _ := parseSource(t, src)
	sw := root.Statements[0].(*ast.Switch)
	assert.Equal(t, "env", sw.Value.(*ast.Identifier).Name)
	require.Len(t, sw.Cases, 1)
	assert.Equal(t, "prod", sw.Cases[0].Value.(*ast.Literal).Val.AsString())
	require.NotNil(t, sw.Default)

	err := parseFailure(t, `switch env { count = 1 }`)
	assert.EqualError(t, err, "Expected 'case' or 'default' in switch statement at line 1")
}

func TestParse_ForLoop(t *testing.T) {
	root, _ := parseSource(t, `for item in items {
  value = item
}
`)
	loop := root.Statements[0].(*ast.ForLoop)
	assert.Equal(t, "item", loop.Iterator)
	assert.Equal(t, "items", loop.Iterable.(*ast.Identifier).Name)
	require.Len(t, loop.Block.Statements, 1)
}

func TestParse_ForLoopErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"missing iterator", `for 42 in items { }`, "Expected identifier after 'for' at line 1"},
		{"missing in", `for item items { }`, "Expected 'in' after iterator at line 1"},
		{"missing body", `for item in items x = 1`, "Expected '{' after for loop header at line 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, parseFailure(t, tc.src), tc.want)
		})
	}
}

func TestParse_IfElse(t *testing.T) {
	src := `if env == "prod" {
  replicas = 3
} else {
  replicas = 1
}
`
	root, _ := parseSource(t, src)
	stmt := root.Statements[0].(*ast.If)
	require.NotNil(t, stmt.Else)
	assert.Len(t, stmt.Then.Statements, 1)
}

func TestParse_Function(t *testing.T) {
	src := `function make_name(env: string, tier: string): string {
  return env + "-" + tier
}
`
	root, _ := parseSource(t, src)
	fn := root.Statements[0].(*ast.Function)
	assert.Equal(t, "make_name", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Param{Name: "env", Type: "string"}, fn.Params[0])
	assert.Equal(t, "string", fn.ReturnType)

	ret := fn.Block.Statements[0].(*ast.Return)
	_, isBinary := ret.Value.(*ast.Binary)
	assert.True(t, isBinary)
}

func TestParse_FunctionWithoutAnnotations(t *testing.T) {
	root, _ := parseSource(t, `function now() { return "t" }`)
	fn := root.Statements[0].(*ast.Function)
	assert.Empty(t, fn.Params)
	assert.Empty(t, fn.ReturnType)
}

func TestParse_MapsTo(t *testing.T) {
	src := `service "api" {
  deployment "prod" {
    health_check maps_to "healthCheck"
    "liveness_probe" maps_to probe.path
  }
}
`
	root, _ := parseSource(t, src)
	svc := root.Statements[0].(*ast.NamedBlock)
	dep := svc.Block.Statements[0].(*ast.NamedBlock)
	assert.Equal(t, "deployment", dep.Name)
	assert.Equal(t, "prod", dep.Label)

	m := dep.Block.Statements[0].(*ast.MapsTo)
	assert.Equal(t, "health_check", m.Source)
	assert.Equal(t, "healthCheck", m.Target.(*ast.Literal).Val.AsString())

	m = dep.Block.Statements[1].(*ast.MapsTo)
	assert.Equal(t, "liveness_probe", m.Source)
	_, isAttr := m.Target.(*ast.AttrAccess)
	assert.True(t, isAttr)
}

func TestParse_ServiceBlock(t *testing.T) {
	root, _ := parseSource(t, `service "frontend" {
  image = "nginx"
}
`)
	svc := root.Statements[0].(*ast.NamedBlock)
	assert.Equal(t, "service", svc.Name)
	assert.Equal(t, "frontend", svc.Label)
}

func TestParse_RawConfigurationBlock(t *testing.T) {
	src := `service "api" {
  configuration {
    image = "nginx:1.25"
    command = "serve --port 8080"
    lifecycle {
      create_before_destroy = true
    }
  }
}
`
	root, _ := parseSource(t, src)
	svc := root.Statements[0].(*ast.NamedBlock)
	raw := svc.Block.Statements[0].(*ast.RawBlock)
	assert.Equal(t, "configuration", raw.Name)

	want := "image = \"nginx:1.25\"\n" +
		"command = \"serve --port 8080\"\n" +
		"lifecycle {\n" +
		"  create_before_destroy = true\n" +
		"}"
	assert.Equal(t, want, raw.Content)
}

func TestParse_RawContainersBlock(t *testing.T) {
	src := `service "worker" {
  containers {
    app {
      image = "worker:2"
    }
  }
}
`
	root, _ := parseSource(t, src)
	svc := root.Statements[0].(*ast.NamedBlock)
	raw := svc.Block.Statements[0].(*ast.RawBlock)
	assert.Equal(t, "containers", raw.Name)
	assert.Equal(t, "app {\n  image = \"worker:2\"\n}", raw.Content)
}

func TestParse_RawBlockAtTopLevel(t *testing.T) {
	root, _ := parseSource(t, `configuration {
  retries = 3
}
`)
	raw := root.Statements[0].(*ast.RawBlock)
	assert.Equal(t, "retries = 3", raw.Content)
}

func TestParse_RawBlockUnterminated(t *testing.T) {
	err := parseFailure(t, "service \"x\" {\n  configuration {\n    a = 1\n")
	assert.EqualError(t, err, "Expected token RBRACE at line 4 column 1, got EOF")
}

func TestParse_ConsumeErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"resource type must be a string", `resource 42`, "Expected token STRING at line 1 column 10, got NUMBER"},
		{"list misses comma", `[1 2]`, "Expected token RBRACKET at line 1 column 4, got NUMBER"},
		{"expression cannot start with equals", `= 1`, "Unexpected token EQUALS ('=') at line 1 column 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := parseFailure(t, tc.src)
			assert.EqualError(t, err, tc.want)

			var synErr *diag.SyntaxError
			assert.ErrorAs(t, err, &synErr)
		})
	}
}

func TestParse_Literals(t *testing.T) {
	root, _ := parseSource(t, `enabled = true
disabled = false
missing = null
pct = 1.50
ports = [80, 443]
`)
	require.Len(t, root.Statements, 5)

	assert.True(t, root.Statements[0].(*ast.Assignment).Value.(*ast.Literal).Val.AsBool())
	assert.False(t, root.Statements[1].(*ast.Assignment).Value.(*ast.Literal).Val.AsBool())
	assert.True(t, root.Statements[2].(*ast.Assignment).Value.(*ast.Literal).Val.IsNull())

	pct := root.Statements[3].(*ast.Assignment).Value.(*ast.Literal)
	assert.Equal(t, "1.50", pct.Raw)
	assert.True(t, pct.Val.Equal(value.FloatVal(1.5)))

	list := root.Statements[4].(*ast.Assignment).Value.(*ast.List)
	assert.Len(t, list.Elements, 2)
}
