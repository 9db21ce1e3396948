package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Config holds all the necessary settings for one translator invocation.
type Config struct {
	InputPath  string // source file or directory
	OutputPath string // single file mode only; empty means stdout
	Extension  string // source extension for directory scans

	Builtins bool
	Check    bool
	DumpAST  bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.Extension == "" {
		return nil, errors.New("Extension is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("ehcl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ehcl - translates enhanced HCL sources into standard HCL.

Usage:
  ehcl [options] [INPUT_PATH]

Arguments:
  INPUT_PATH
    Path to a single source file, or a directory to scan for source files.

Options:
`)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("o", "", "Write output to this file instead of stdout (single file mode).")
	extFlag := flagSet.String("ext", ".ehcl", "Source extension to scan for in directory mode.")
	builtinsFlag := flagSet.Bool("builtins", false, "Preload the builtin infrastructure type catalog.")
	checkFlag := flagSet.Bool("check", false, "Re-parse generated output as HCL and fail on errors.")
	dumpASTFlag := flagSet.Bool("dump-ast", false, "Log the parsed syntax tree at debug level.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", path)

	if path == "" {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := NewConfig(Config{
		InputPath:  path,
		OutputPath: *outFlag,
		Extension:  *extFlag,
		Builtins:   *builtinsFlag,
		Check:      *checkFlag,
		DumpAST:    *dumpASTFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
