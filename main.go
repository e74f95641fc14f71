// =============================================================================
// ProcessAutomate - Main Entry Point
// =============================================================================
//
// USAGE:
//   processautomate dpd|foxpost|gls|otp FILE...
//   processautomate simplepay --xml REF.xml --variant equal|pg|t FILE...
//   processautomate vendors
//   processautomate version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : readers, reference index, transformers, writer, batch runner
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/processautomate/cmd"
)

func main() {
	cmd.Execute()
}
