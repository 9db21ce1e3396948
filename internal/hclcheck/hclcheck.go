// Package hclcheck verifies that generated text parses as HCL native
// syntax. It is an opt-in safety net: generation never consults it.
package hclcheck

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
)

// Validate parses src as HCL and returns the parser's diagnostics as an
// error when any are fatal. The filename only labels the diagnostics.
func Validate(filename string, src string) error {
	parser := hclparse.NewParser()
	_, diags := parser.ParseHCL([]byte(src), filename)
	if diags.HasErrors() {
		return fmt.Errorf("output is not valid HCL: %w", diags)
	}
	return nil
}
