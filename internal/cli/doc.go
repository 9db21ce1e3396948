// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the translator's configuration and drives
// single-file and directory translation runs.
package cli
