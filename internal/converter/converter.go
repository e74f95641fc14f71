// =============================================================================
// ProcessAutomate - Converter Module
// =============================================================================
//
// This module turns one vendor export into one or two normalized outputs.
// Each variant has a transformer registered in a static map; there is no
// lookup by file name or dynamic loading.
//
// CONVERSION PIPELINE (per file):
//   1. Read the input table(s) with the variant's fixed layout
//   2. Select columns and clean identifiers and amounts
//   3. Resolve identifiers through the reference index (Simple Pay)
//   4. Append the adjustment or fee row
//   5. Return the outputs; the caller writes them
//
// PARTIAL RESULTS:
//   A transformer may return outputs together with an error. Outputs listed
//   before the failure are complete and are still written; Simple Pay uses
//   this when the extended columns are missing.
//
// =============================================================================

package converter

import (
	"fmt"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/logging"
	"github.com/ginjaninja78/processautomate/internal/refindex"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/pkg/utils"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// INTERFACES AND TYPES
// =============================================================================

// Transformer converts one input file of a variant.
type Transformer interface {
	// Variant returns the variant this transformer handles.
	Variant() types.Variant

	// Transform reads src and returns the outputs to write, in order.
	Transform(src string, env Env) ([]Output, error)
}

// Output is one file to be written.
type Output struct {
	// Path is the destination file.
	Path string

	// Rows are written in order, without a header.
	Rows []types.OutputRow

	// Extended selects the four-column layout.
	Extended bool
}

// Env carries what a transformer needs besides the input path.
type Env struct {
	// Config supplies decoding settings and output prefixes.
	Config *config.Config

	// Index resolves Simple Pay identifiers. Unused by other variants.
	Index refindex.Index

	// Adjustment is appended to DPD and GLS outputs when non-nil.
	Adjustment *types.OutputRow

	// Logger receives diagnostics. Nil discards them.
	Logger logrus.FieldLogger

	// Progress receives user-facing progress lines. Nil discards them.
	Progress func(string)
}

func (e Env) progress(format string, args ...any) {
	if e.Progress != nil {
		e.Progress(fmt.Sprintf(format, args...))
	}
}

func (e Env) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

func (e Env) config() *config.Config {
	if e.Config == nil {
		return config.Default()
	}
	return e.Config
}

// outputPath returns the main output path for src.
func (e Env) outputPath(src string) string {
	return utils.OutputPath(src, e.config().Output.Prefix)
}

// extendedOutputPath returns the extended output path for src.
func (e Env) extendedOutputPath(src string) string {
	return utils.OutputPath(src, e.config().Output.ExtendedPrefix)
}

// =============================================================================
// REGISTRY
// =============================================================================

var registry = map[types.Variant]Transformer{
	types.VariantDPD:            dpdTransformer{},
	types.VariantFoxpost:        foxpostTransformer{},
	types.VariantGLS:            glsTransformer{},
	types.VariantOTP:            otpTransformer{},
	types.VariantSimplePayEqual: newSimplePay(types.VariantSimplePayEqual),
	types.VariantSimplePayPG:    newSimplePay(types.VariantSimplePayPG),
	types.VariantSimplePayT:     newSimplePay(types.VariantSimplePayT),
}

// Lookup returns the transformer for a variant.
func Lookup(v types.Variant) (Transformer, bool) {
	t, ok := registry[v]
	return t, ok
}

// Describe returns a one-line description of the input a variant expects.
func Describe(v types.Variant) string {
	switch v {
	case types.VariantDPD:
		return ".xls export, sheet 'Sheet1'; optional adjustment row"
	case types.VariantFoxpost:
		return ".xlsx export with sheets 'utánvétek' and 'összesítés'"
	case types.VariantGLS:
		return ".xlsx export, first sheet; optional adjustment row"
	case types.VariantOTP:
		return "not implemented"
	case types.VariantSimplePayEqual:
		return `.csv (";") or .xlsx; IDs like ="1001"; needs reference XML`
	case types.VariantSimplePayPG:
		return `.csv (";") or .xlsx; IDs like pg-1001; needs reference XML`
	case types.VariantSimplePayT:
		return `.csv (";") or .xlsx; IDs like 2024T1001; needs reference XML`
	default:
		return ""
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// abs64 returns the absolute value of n.
func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// appendAdjustment appends the adjustment row, if any.
func appendAdjustment(rows []types.OutputRow, adj *types.OutputRow) []types.OutputRow {
	if adj == nil {
		return rows
	}
	return append(rows, *adj)
}
