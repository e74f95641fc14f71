package converter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/types"
)

// CorrectAmountInput is the per-keystroke correction for the adjustment
// amount field:
//   - empty text stays empty
//   - a negative integer loses its minus sign
//   - text that is not an integer loses its last character
//   - anything else is returned unchanged
func CorrectAmountInput(text string) string {
	if text == "" {
		return text
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		runes := []rune(text)
		return string(runes[:len(runes)-1])
	}

	if n < 0 {
		return strings.ReplaceAll(text, "-", "")
	}
	return text
}

// NormalizeAmountInput applies CorrectAmountInput until the text stops
// changing. The result is empty or a non-negative integer.
func NormalizeAmountInput(text string) string {
	for {
		next := CorrectAmountInput(text)
		if next == text {
			return text
		}
		text = next
	}
}

// NewAdjustment builds the optional trailing row for DPD and GLS.
//
// PARAMETERS:
//   - label: Written to the reference column as entered.
//   - amountText: The entered amount; normalized first, then negated.
//
// RETURNS:
//   - nil when both fields are empty.
//   - A row with an empty amount cell when only the label is set.
//   - An error when the amount does not fit in an integer.
func NewAdjustment(label, amountText string) (*types.OutputRow, error) {
	amountText = NormalizeAmountInput(amountText)

	if label == "" && amountText == "" {
		return nil, nil
	}

	row := &types.OutputRow{Reference: label}
	if amountText == "" {
		row.BlankAmount = true
		return row, nil
	}

	n, err := strconv.ParseInt(amountText, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid adjustment amount %q: %w", amountText, err)
	}
	row.Amount = -n

	return row, nil
}
