package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/vk/ehcl/internal/cli"
)

// main is the entrypoint for the ehcl translator.
func main() {
	// Bootstrap logger until CLI flags configure the real one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := cli.Run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
