// =============================================================================
// ProcessAutomate - Validation
// =============================================================================
//
// This module checks input tables before and during transformation:
//   - Required header columns (Simple Pay exports)
//   - Minimum table width for positional layouts (DPD, Foxpost, GLS)
//   - Integer coercion of amount cells
//
// AMOUNT COERCION:
//   Two coercion modes exist:
//
//   | Mode      | Accepts                  | Used for                      |
//   |-----------|--------------------------|-------------------------------|
//   | strict    | "-1500"                  | text amounts after cleaning   |
//   | truncated | "1500", "1500.75", "1e3" | raw numeric spreadsheet cells |
//
//   Strict mode does not guess at decimal separators. A value still holding
//   "," or "." after cleaning is reported as an unsupported decimal format.
//
// ERROR HANDLING:
//   Every failure is a *ValidationError so callers can use errors.As to
//   tell input problems from I/O problems.
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION ERROR TYPE
// =============================================================================

// ValidationError represents a single input problem.
type ValidationError struct {
	// Field is the column name or position the error refers to.
	Field string

	// Value is the offending cell value, if any.
	Value string

	// Rule is the check that failed ("required_columns", "min_width",
	// "integer", "decimal_format").
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the 1-based data row, or 0 when the error is not tied
	// to a row.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder

	if e.RowNumber > 0 {
		fmt.Fprintf(&b, "row %d: ", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field '%s': ", e.Field)
	}
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}

	return b.String()
}

// =============================================================================
// TABLE CHECKS
// =============================================================================

// RequireColumns checks that every named column is present in the header.
//
// RETURNS:
//   - nil if all columns exist.
//   - A ValidationError listing the missing columns in the given order.
func RequireColumns(table *types.Table, columns ...string) error {
	var missing []string
	for _, col := range columns {
		if table.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return &ValidationError{
		Rule:    "required_columns",
		Message: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
	}
}

// RequireWidth checks that a positional table reaches column index
// width-1 in at least one row. An empty table passes.
func RequireWidth(table *types.Table, width int) error {
	if len(table.Rows) == 0 {
		return nil
	}

	widest := 0
	for _, row := range table.Rows {
		if len(row) > widest {
			widest = len(row)
		}
	}

	if widest >= width {
		return nil
	}

	return &ValidationError{
		Rule:    "min_width",
		Message: fmt.Sprintf("expected at least %d columns, found %d", width, widest),
	}
}

// =============================================================================
// AMOUNT COERCION
// =============================================================================

// ParseStrictInt converts a cleaned text amount to an integer.
//
// PARAMETERS:
//   - field: Column name for error messages.
//   - value: The cleaned value.
//   - row: 1-based data row for error messages.
//
// RETURNS:
//   - The integer.
//   - A ValidationError for empty values, leftover decimal separators and
//     anything else that is not a base-10 integer.
func ParseStrictInt(field, value string, row int) (int64, error) {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return 0, &ValidationError{
			Field: field, Rule: "integer", RowNumber: row,
			Message: "empty amount",
		}
	}

	if strings.ContainsAny(trimmed, ",.") {
		return 0, &ValidationError{
			Field: field, Value: value, Rule: "decimal_format", RowNumber: row,
			Message: "unsupported decimal format",
		}
	}

	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, &ValidationError{
			Field: field, Value: value, Rule: "integer", RowNumber: row,
			Message: "not an integer",
		}
	}

	return n, nil
}

// ParseTruncatedInt converts a raw numeric cell to an integer, dropping any
// fractional part toward zero ("12.9" -> 12, "-12.9" -> -12).
func ParseTruncatedInt(field, value string, row int) (int64, error) {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return 0, &ValidationError{
			Field: field, Rule: "integer", RowNumber: row,
			Message: "empty amount",
		}
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, &ValidationError{
			Field: field, Value: value, Rule: "integer", RowNumber: row,
			Message: "not a number",
		}
	}

	return d.Truncate(0).IntPart(), nil
}
