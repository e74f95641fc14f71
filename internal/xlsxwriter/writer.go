// =============================================================================
// ProcessAutomate - XLSX Writer
// =============================================================================
//
// This module writes normalized rows to a single-sheet workbook:
//   - No header row and no index column
//   - Two columns (reference, amount) or four for extended outputs
//     (reference, amount, buyer name, e-mail)
//   - Amounts are number cells; references are text unless the row asks
//     for a numeric reference
//
// The workbook is saved to a temporary sibling file and renamed over the
// target, so a failed save never leaves a truncated output behind.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the sheet name of a new excelize workbook.
const DefaultSheetName = "Sheet1"

// Options controls the generated workbook.
type Options struct {
	// SheetName names the only sheet. Empty means DefaultSheetName.
	SheetName string
}

// Write saves rows to path, replacing any existing file.
//
// PARAMETERS:
//   - path: The output file. Must end in .xlsx.
//   - rows: The rows in output order.
//   - extended: Whether to write the four-column layout.
//   - opts: Workbook options.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, rows []types.OutputRow, extended bool, opts Options) error {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return fmt.Errorf("failed to name sheet '%s': %w", sheet, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		values := row.Cells(extended)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	tmp := utils.TempPath(path)
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}

	return nil
}
