package converter

import (
	"github.com/ginjaninja78/processautomate/internal/tabular"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/validation"
)

// GLS layout: first sheet with a header row, seven more leading rows and a
// grand-total row at the end. Identifier in column 2, amount in column 4.
const (
	glsSkipRows  = 7
	glsIDCol     = 2
	glsAmountCol = 4
)

type glsTransformer struct{}

func (glsTransformer) Variant() types.Variant { return types.VariantGLS }

func (glsTransformer) Transform(src string, env Env) ([]Output, error) {
	table, err := tabular.Open(src, tabular.Options{
		HasHeader: true,
		XLS:       env.config().XLS,
		CSV:       env.config().CSV,
	})
	if err != nil {
		return nil, err
	}

	rows, err := GLSRows(table)
	if err != nil {
		return nil, err
	}

	return []Output{{
		Path: env.outputPath(src),
		Rows: appendAdjustment(rows, env.Adjustment),
	}}, nil
}

// GLSRows converts a GLS sheet (header already consumed) into
// (identifier, amount) rows. Amounts are truncated toward zero.
func GLSRows(table *types.Table) ([]types.OutputRow, error) {
	if table.Len() <= glsSkipRows {
		return nil, &validation.ValidationError{
			Rule:    "min_rows",
			Message: "no data rows after the leading block",
		}
	}

	// Drop the leading block and the grand-total row.
	data := table.Skip(glsSkipRows)
	data.Rows = data.Rows[:len(data.Rows)-1]

	if err := validation.RequireWidth(data, glsAmountCol+1); err != nil {
		return nil, err
	}

	var rows []types.OutputRow
	for i, raw := range data.Rows {
		if types.IsRowEmpty(raw) {
			continue
		}

		// Header row, then the skipped block.
		rowNum := i + glsSkipRows + 2

		amount, err := validation.ParseTruncatedInt("amount", data.Cell(i, glsAmountCol), rowNum)
		if err != nil {
			return nil, err
		}

		id := data.Cell(i, glsIDCol)
		rows = append(rows, types.OutputRow{
			Reference:        id,
			NumericReference: types.IsPlainInteger(id),
			Amount:           amount,
		})
	}

	return rows, nil
}
