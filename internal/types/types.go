// =============================================================================
// ProcessAutomate - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - tabular / csvparser / xlsxparser / xlsparser (Table)
//   - converter (Variant, OutputRow)
//   - xlsxwriter (OutputRow)
//   - batch (Variant)
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
)

// =============================================================================
// VARIANT
// =============================================================================

// Variant identifies one vendor export layout.
// The set is closed: every variant has exactly one transformer registered in
// the converter package.
type Variant string

const (
	VariantDPD            Variant = "dpd"
	VariantFoxpost        Variant = "foxpost"
	VariantGLS            Variant = "gls"
	VariantOTP            Variant = "otp"
	VariantSimplePayEqual Variant = "simplepay-equal"
	VariantSimplePayPG    Variant = "simplepay-pg"
	VariantSimplePayT     Variant = "simplepay-t"
)

// Variants lists every known variant in display order.
func Variants() []Variant {
	return []Variant{
		VariantDPD,
		VariantFoxpost,
		VariantGLS,
		VariantOTP,
		VariantSimplePayEqual,
		VariantSimplePayPG,
		VariantSimplePayT,
	}
}

// NeedsReference reports whether the variant maps identifiers through a
// reference index built from a SpreadsheetML document.
func (v Variant) NeedsReference() bool {
	return strings.HasPrefix(string(v), "simplepay-")
}

// TakesAdjustment reports whether the variant accepts a manually entered
// adjustment row.
func (v Variant) TakesAdjustment() bool {
	return v == VariantDPD || v == VariantGLS
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an in-memory sheet with 0-based positional access.
type Table struct {
	// Source is the path of the file the table was read from.
	Source string

	// Sheet is the sheet name for spreadsheet sources. Empty for CSV.
	Sheet string

	// Header holds the first row when the table was read with a header.
	// It is nil for positional reads.
	Header []string

	// Rows contains the data rows. Rows may have different lengths;
	// missing trailing cells read as empty strings through Cell.
	Rows [][]string
}

// Cell returns the value at (row, col), or an empty string when the cell
// lies outside the stored data.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnIndex returns the position of a header column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Skip returns a copy of the table without its first n data rows.
func (t *Table) Skip(n int) *Table {
	out := *t
	if n >= len(t.Rows) {
		out.Rows = nil
		return &out
	}
	if n > 0 {
		out.Rows = t.Rows[n:]
	}
	return &out
}

// IsRowEmpty checks if a row contains only empty cells.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// OUTPUT ROWS
// =============================================================================

// FallbackReference is the reference code used when an identifier cannot be
// resolved, and for synthetic fee rows.
const FallbackReference = "1"

// maxExactDigits is the longest integer a spreadsheet number cell holds
// without losing digits.
const maxExactDigits = 15

// IsPlainInteger reports whether s is a non-negative integer without a
// leading zero, short enough to survive as a number cell. Identifiers that
// pass are written as numbers, the way they appeared in the source sheet.
func IsPlainInteger(s string) bool {
	if s == "" || len(s) > maxExactDigits || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// OutputRow is one line of a normalized output sheet.
type OutputRow struct {
	// Reference is the first column.
	Reference string

	// NumericReference writes Reference as a number cell instead of text.
	// Set for Foxpost summary rows and for numeric GLS/Foxpost identifiers.
	NumericReference bool

	// Amount is the second column.
	Amount int64

	// BlankAmount leaves the amount cell empty. Used by adjustment rows
	// where only the label was entered.
	BlankAmount bool

	// BuyerName and Email are only written to extended outputs.
	BuyerName string
	Email     string
}

// Cells renders the row into writer values. Extended rows have four columns,
// regular rows two.
func (r OutputRow) Cells(extended bool) []any {
	var ref any = r.Reference
	if r.NumericReference {
		if n, err := strconv.Atoi(r.Reference); err == nil {
			ref = n
		}
	}

	var amount any = r.Amount
	if r.BlankAmount {
		amount = ""
	}

	if !extended {
		return []any{ref, amount}
	}
	return []any{ref, amount, r.BuyerName, r.Email}
}
