package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/vk/ehcl/internal/ctxlog"
	"github.com/vk/ehcl/internal/fsutil"
	"github.com/vk/ehcl/internal/translator"
)

// Run parses args and executes one translation: a single file written to
// stdout or the -o path, or a directory walk that writes a .hcl sibling
// next to every matching source file. Logs go to errW so stdout carries
// nothing but generated output.
func Run(outW, errW io.Writer, args []string) error {
	return run(afero.NewOsFs(), outW, errW, args)
}

func run(fsys afero.Fs, outW, errW io.Writer, args []string) error {
	config, shouldExit, err := Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The pipeline panics only on internal invariant violations; turn
	// those into a clean message instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(errW, "A critical internal error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	logger := newLogger(config.LogLevel, config.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	tr := translator.New(translator.Options{
		Fs:          fsys,
		Builtins:    config.Builtins,
		CheckOutput: config.Check,
		DumpAST:     config.DumpAST,
	})

	info, err := fsys.Stat(config.InputPath)
	if err != nil {
		return fmt.Errorf("reading input path '%s': %w", config.InputPath, err)
	}
	if info.IsDir() {
		return runDir(ctx, tr, fsys, config)
	}
	return runFile(ctx, tr, fsys, outW, config)
}

func runFile(ctx context.Context, tr *translator.Translator, fsys afero.Fs, outW io.Writer, config *Config) error {
	out, err := tr.ConvertFile(ctx, config.InputPath)
	if err != nil {
		return err
	}
	if config.OutputPath != "" {
		if err := afero.WriteFile(fsys, config.OutputPath, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing output file '%s': %w", config.OutputPath, err)
		}
		ctxlog.FromContext(ctx).Info("Translation complete.", "input", config.InputPath, "output", config.OutputPath)
		return nil
	}
	fmt.Fprintln(outW, out)
	return nil
}

// runDir translates every matching file, collecting per-file failures so
// one broken source does not stop the rest of the walk.
func runDir(ctx context.Context, tr *translator.Translator, fsys afero.Fs, config *Config) error {
	log := ctxlog.FromContext(ctx)
	files, err := fsutil.FindFilesByExtension(fsys, config.InputPath, config.Extension)
	if err != nil {
		return fmt.Errorf("scanning directory '%s': %w", config.InputPath, err)
	}
	if len(files) == 0 {
		log.Warn("No source files found.", "path", config.InputPath, "extension", config.Extension)
		return nil
	}

	var merr *multierror.Error
	for _, file := range files {
		out, err := tr.ConvertFile(ctx, file)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		target := strings.TrimSuffix(file, config.Extension) + ".hcl"
		if err := afero.WriteFile(fsys, target, []byte(out+"\n"), 0o644); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("writing output file '%s': %w", target, err))
			continue
		}
		log.Info("Translated.", "input", file, "output", target)
	}
	return merr.ErrorOrNil()
}
