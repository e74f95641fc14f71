package converter

import (
	"path/filepath"

	"github.com/ginjaninja78/processautomate/internal/refindex"
	"github.com/ginjaninja78/processautomate/internal/tabular"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/validation"
)

// Simple Pay export columns.
const (
	ColumnFee           = "Tranzakciós jutalék"
	ColumnTransactionID = "Kereskedői tranzakció ID"
	ColumnAmount        = "Tranzakció összege"
	ColumnBuyer         = "Vásárló"
	ColumnEmail         = "E-mail cím"
)

// simplePayAmountRules drops the ",00" suffix of whole-forint amounts.
var simplePayAmountRules = []Rule{
	{Type: RuleTrim},
	{Type: RuleStripSuffix, Value: ",00"},
}

// simplePayIDRules holds the identifier cleaning of each Simple Pay variant.
var simplePayIDRules = map[types.Variant][]Rule{
	// ="1001" -> 1001
	types.VariantSimplePayEqual: {
		{Type: RuleReplace, Find: `="`, Value: ""},
		{Type: RuleReplace, Find: `"`, Value: ""},
	},
	// pg-1001 -> 1001
	types.VariantSimplePayPG: {
		{Type: RuleReplace, Find: "pg-", Value: ""},
	},
	// 2024T1001 -> 1001
	types.VariantSimplePayT: {
		{Type: RuleSplitTake, Find: "T", Index: 1},
	},
}

type simplePayTransformer struct {
	variant types.Variant
	idRules []Rule
}

func newSimplePay(v types.Variant) simplePayTransformer {
	return simplePayTransformer{variant: v, idRules: simplePayIDRules[v]}
}

func (t simplePayTransformer) Variant() types.Variant { return t.variant }

// Transform writes the two-column output first. A missing buyer or e-mail
// column fails the file after that output has been produced.
func (t simplePayTransformer) Transform(src string, env Env) ([]Output, error) {
	env.progress("Reading %s file: %s", t.variant, filepath.Base(src))

	table, err := tabular.Open(src, tabular.Options{
		HasHeader: true,
		CSV:       env.config().CSV,
		XLS:       env.config().XLS,
	})
	if err != nil {
		return nil, err
	}

	env.progress("Processing transaction fees...")
	env.progress("Mapping transaction IDs to reference numbers...")

	rows, err := SimplePayRows(table, t.idRules, env.Index)
	if err != nil {
		return nil, err
	}

	outputs := []Output{{Path: env.outputPath(src), Rows: rows}}

	if err := validation.RequireColumns(table, ColumnBuyer, ColumnEmail); err != nil {
		return outputs, err
	}

	extended, err := SimplePayExtendedRows(table, t.idRules, env.Index)
	if err != nil {
		return outputs, err
	}

	outputs = append(outputs, Output{
		Path:     env.extendedOutputPath(src),
		Rows:     extended,
		Extended: true,
	})

	return outputs, nil
}

// SimplePayRows converts a Simple Pay table into (reference, amount) rows
// followed by the negated fee total.
func SimplePayRows(table *types.Table, idRules []Rule, index refindex.Index) ([]types.OutputRow, error) {
	lines, fee, err := simplePayLines(table, idRules, index)
	if err != nil {
		return nil, err
	}

	rows := make([]types.OutputRow, 0, len(lines)+1)
	for _, l := range lines {
		rows = append(rows, types.OutputRow{Reference: l.Reference, Amount: l.Amount})
	}

	return append(rows, feeRow(fee)), nil
}

// SimplePayExtendedRows is SimplePayRows with buyer name and e-mail columns.
// The fee row leaves both empty.
func SimplePayExtendedRows(table *types.Table, idRules []Rule, index refindex.Index) ([]types.OutputRow, error) {
	if err := validation.RequireColumns(table, ColumnBuyer, ColumnEmail); err != nil {
		return nil, err
	}

	lines, fee, err := simplePayLines(table, idRules, index)
	if err != nil {
		return nil, err
	}

	return append(lines, feeRow(fee)), nil
}

// simplePayLines returns one row per transaction (with buyer details when
// the columns exist) and the sum of the fee column.
func simplePayLines(table *types.Table, idRules []Rule, index refindex.Index) ([]types.OutputRow, int64, error) {
	if err := validation.RequireColumns(table, ColumnFee, ColumnTransactionID, ColumnAmount); err != nil {
		return nil, 0, err
	}

	feeCol := table.ColumnIndex(ColumnFee)
	idCol := table.ColumnIndex(ColumnTransactionID)
	amountCol := table.ColumnIndex(ColumnAmount)
	buyerCol := table.ColumnIndex(ColumnBuyer)
	emailCol := table.ColumnIndex(ColumnEmail)

	var (
		lines []types.OutputRow
		fee   int64
	)

	for i := range table.Rows {
		rowNum := i + 1

		f, err := cleanedInt(ColumnFee, table.Cell(i, feeCol), rowNum)
		if err != nil {
			return nil, 0, err
		}
		fee += f

		amount, err := cleanedInt(ColumnAmount, table.Cell(i, amountCol), rowNum)
		if err != nil {
			return nil, 0, err
		}

		id, err := ApplyRules(table.Cell(i, idCol), idRules)
		if err != nil {
			return nil, 0, err
		}

		lines = append(lines, types.OutputRow{
			Reference: index.Lookup(id),
			Amount:    amount,
			BuyerName: table.Cell(i, buyerCol),
			Email:     table.Cell(i, emailCol),
		})
	}

	return lines, fee, nil
}

func cleanedInt(field, value string, row int) (int64, error) {
	cleaned, err := ApplyRules(value, simplePayAmountRules)
	if err != nil {
		return 0, err
	}
	return validation.ParseStrictInt(field, cleaned, row)
}

func feeRow(total int64) types.OutputRow {
	return types.OutputRow{
		Reference: types.FallbackReference,
		Amount:    -abs64(total),
	}
}
