// Package translator wires the pipeline together: lex, parse, expand,
// generate, and optionally verify. It is the API the CLI and embedding
// callers share.
package translator

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/codegen"
	"github.com/vk/ehcl/internal/ctxlog"
	"github.com/vk/ehcl/internal/hclcheck"
	"github.com/vk/ehcl/internal/lexer"
	"github.com/vk/ehcl/internal/parser"
	"github.com/vk/ehcl/internal/stdtypes"
	"github.com/vk/ehcl/internal/transform"
)

// Options configures a Translator.
type Options struct {
	// Fs is the filesystem ConvertFile reads from. Nil means the host OS.
	Fs afero.Fs
	// Builtins preloads the standard infrastructure type catalog into
	// every session's registry.
	Builtins bool
	// CheckOutput re-parses generated text as HCL and fails on errors.
	CheckOutput bool
	// DumpAST logs the parsed tree at debug level.
	DumpAST bool
}

// Translator converts dialect sources to standard HCL. Each call runs an
// isolated session: type definitions never leak between inputs.
type Translator struct {
	fs       afero.Fs
	builtins bool
	check    bool
	dumpAST  bool
}

func New(opts Options) *Translator {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Translator{fs: fs, builtins: opts.Builtins, check: opts.CheckOutput, dumpAST: opts.DumpAST}
}

// ConvertFile reads one source file and translates it.
func (t *Translator) ConvertFile(ctx context.Context, path string) (string, error) {
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading source file '%s': %w", path, err)
	}
	out, err := t.Translate(ctx, string(data))
	if err != nil {
		return "", fmt.Errorf("translating '%s': %w", path, err)
	}
	return out, nil
}

// Translate runs the full pipeline over source text and returns the
// generated HCL without a trailing newline.
func (t *Translator) Translate(ctx context.Context, source string) (string, error) {
	log := ctxlog.FromContext(ctx)

	tokens, err := lexer.New(source).Tokenize()
	if err != nil {
		return "", fmt.Errorf("lexing source: %w", err)
	}
	log.Debug("Lexing complete.", "tokens", len(tokens))

	p := parser.New(tokens, source)
	if t.builtins {
		if err := stdtypes.Register(p.Registry()); err != nil {
			return "", fmt.Errorf("loading builtin types: %w", err)
		}
	}
	root, err := p.Parse(ctx)
	if err != nil {
		return "", fmt.Errorf("parsing source: %w", err)
	}
	if t.dumpAST {
		log.Debug("Parsed syntax tree.", "tree", "\n"+ast.Dump(root))
	}

	transformed, err := transform.New(p.Registry()).Transform(ctx, root)
	if err != nil {
		return "", fmt.Errorf("expanding types: %w", err)
	}
	block, ok := transformed.(*ast.Block)
	if !ok {
		panic(fmt.Sprintf("translator: transform returned %T for the root block", transformed))
	}

	out := codegen.New().Generate(ctx, block)
	if t.check {
		if err := hclcheck.Validate("generated.hcl", out); err != nil {
			return "", fmt.Errorf("verifying output: %w", err)
		}
	}
	return out, nil
}
