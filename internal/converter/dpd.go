package converter

import (
	"fmt"

	"github.com/ginjaninja78/processautomate/internal/tabular"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/validation"
)

// DPD layout: sheet "Sheet1", three leading rows, amount in column 2,
// parcel identifier in column 5.
const (
	dpdSheet     = "Sheet1"
	dpdSkipRows  = 3
	dpdAmountCol = 2
	dpdIDCol     = 5
)

var (
	dpdIDRules = []Rule{
		{Type: RuleStripPrefix, Value: "text:'"},
		{Type: RuleSplitTake, Find: " / ", Index: 0},
	}

	dpdAmountRules = []Rule{
		{Type: RuleStripPrefix, Value: "number:"},
		{Type: RuleTrim},
		{Type: RuleStripSuffix, Value: ".0"},
	}
)

type dpdTransformer struct{}

func (dpdTransformer) Variant() types.Variant { return types.VariantDPD }

func (dpdTransformer) Transform(src string, env Env) ([]Output, error) {
	table, err := tabular.Open(src, tabular.Options{
		Sheet: dpdSheet,
		XLS:   env.config().XLS,
		CSV:   env.config().CSV,
	})
	if err != nil {
		return nil, err
	}

	rows, err := DPDRows(table)
	if err != nil {
		return nil, err
	}

	return []Output{{
		Path: env.outputPath(src),
		Rows: appendAdjustment(rows, env.Adjustment),
	}}, nil
}

// DPDRows converts a DPD sheet into (identifier, amount) rows.
func DPDRows(table *types.Table) ([]types.OutputRow, error) {
	data := table.Skip(dpdSkipRows)
	if err := validation.RequireWidth(data, dpdIDCol+1); err != nil {
		return nil, err
	}

	var rows []types.OutputRow
	for i, raw := range data.Rows {
		if types.IsRowEmpty(raw) {
			continue
		}
		rowNum := i + dpdSkipRows + 1

		id, err := ApplyRules(data.Cell(i, dpdIDCol), dpdIDRules)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		cleaned, err := ApplyRules(data.Cell(i, dpdAmountCol), dpdAmountRules)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		amount, err := validation.ParseStrictInt("amount", cleaned, rowNum)
		if err != nil {
			return nil, err
		}

		rows = append(rows, types.OutputRow{Reference: id, Amount: amount})
	}

	return rows, nil
}
