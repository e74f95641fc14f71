package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/validation"
	"github.com/ginjaninja78/processautomate/internal/xlsxparser"
)

// Foxpost layout: cash-on-delivery lines on "utánvétek" (ten leading rows,
// identifier in column 4, amount in column 7) and partner summary lines on
// "összesítés" below the ÖSSZESÍTÉS marker.
const (
	foxpostCODSheet     = "utánvétek"
	foxpostSummarySheet = "összesítés"
	foxpostSkipRows     = 10
	foxpostIDCol        = 4
	foxpostAmountCol    = 7

	FoxpostMarker        = "ÖSSZESÍTÉS"
	FoxpostPartnerMarker = "PARTNER"
)

type foxpostTransformer struct{}

func (foxpostTransformer) Variant() types.Variant { return types.VariantFoxpost }

func (foxpostTransformer) Transform(src string, env Env) ([]Output, error) {
	wb, err := xlsxparser.Open(src)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	cod, err := wb.Sheet(foxpostCODSheet, false)
	if err != nil {
		return nil, err
	}

	summary, err := wb.Sheet(foxpostSummarySheet, false)
	if err != nil {
		return nil, err
	}

	rows, found, err := FoxpostRows(cod, summary)
	if err != nil {
		return nil, err
	}

	if !found {
		env.logger().WithField("file", src).Warnf("marker '%s' not found on sheet '%s'", FoxpostMarker, foxpostSummarySheet)
		env.progress("Warning: '%s' not found in file %s", FoxpostMarker, filepath.Base(src))
	}

	return []Output{{
		Path: env.outputPath(src),
		Rows: rows,
	}}, nil
}

// FoxpostRows converts the two Foxpost sheets into output rows. The summary
// rows follow the cash-on-delivery rows.
//
// RETURNS:
//   - The rows.
//   - Whether the summary marker was found. Without it only the
//     cash-on-delivery rows are returned.
//   - An error for malformed amounts.
func FoxpostRows(cod, summary *types.Table) ([]types.OutputRow, bool, error) {
	data := cod.Skip(foxpostSkipRows)
	if err := validation.RequireWidth(data, foxpostAmountCol+1); err != nil {
		return nil, false, fmt.Errorf("sheet '%s': %w", foxpostCODSheet, err)
	}

	var rows []types.OutputRow
	for i, raw := range data.Rows {
		if types.IsRowEmpty(raw) {
			continue
		}
		rowNum := i + foxpostSkipRows + 1

		amount, err := validation.ParseTruncatedInt("amount", data.Cell(i, foxpostAmountCol), rowNum)
		if err != nil {
			return nil, false, fmt.Errorf("sheet '%s': %w", foxpostCODSheet, err)
		}

		id := data.Cell(i, foxpostIDCol)
		rows = append(rows, types.OutputRow{
			Reference:        id,
			NumericReference: types.IsPlainInteger(id),
			Amount:           amount,
		})
	}

	marker := xlsxparser.FindMarkerRow(summary, FoxpostMarker)
	if marker < 0 {
		return rows, false, nil
	}

	after := summary.Skip(marker + 1)
	for i := range after.Rows {
		if !strings.Contains(after.Cell(i, 0), FoxpostPartnerMarker) {
			continue
		}
		rowNum := marker + i + 2

		amount, err := validation.ParseTruncatedInt("amount", after.Cell(i, 1), rowNum)
		if err != nil {
			return nil, true, fmt.Errorf("sheet '%s': %w", foxpostSummarySheet, err)
		}

		rows = append(rows, types.OutputRow{
			Reference:        types.FallbackReference,
			NumericReference: true,
			Amount:           -abs64(amount),
		})
	}

	return rows, true, nil
}
