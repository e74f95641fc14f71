// =============================================================================
// ProcessAutomate - XLS Parser
// =============================================================================
//
// This module reads legacy binary spreadsheets (.xls). DPD ships its exports
// in this format.
//
// READERS:
//   - BIFF8 workbooks (Excel 97 and later) are read with xlsReader. Cells
//     come back as their stored values: numbers are not passed through the
//     cell's number format, so a currency-formatted 4500 reads as "4500".
//   - Files xlsReader cannot open (older BIFF5 "Book" streams) fall back to
//     extrame/xls. That reader formats numbers, and the configured charset
//     applies to its non-unicode strings.
//
// Both decoders panic on some malformed files; every entry point recovers
// and reports a per-file error instead.
//
// =============================================================================

package xlsparser

import (
	"fmt"

	legacyxls "github.com/extrame/xls"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/shakinm/xlsReader/xls"
)

// ReadSheet reads one sheet of an .xls workbook into a positional table.
//
// PARAMETERS:
//   - path: The path to the workbook.
//   - name: The sheet name. Empty selects the first sheet.
//   - charset: Charset for non-unicode strings in legacy files
//     (e.g. "utf-8", "cp1250").
//
// RETURNS:
//   - The table with one entry per sheet row up to the last used row.
//     Missing rows are kept as empty rows so offsets match the source.
//   - An error if the file cannot be decoded or the sheet is absent.
func ReadSheet(path, name, charset string) (*types.Table, error) {
	table, opened, err := readWorkbook(path, name)
	if opened {
		return table, err
	}

	table, legacyErr := readLegacy(path, name, charset)
	if legacyErr != nil {
		return nil, fmt.Errorf("%w (legacy reader: %v)", err, legacyErr)
	}
	return table, nil
}

// =============================================================================
// BIFF8 READER
// =============================================================================

// readWorkbook reads a sheet with xlsReader. opened reports whether the file
// was recognized at all; errors after that point are final.
func readWorkbook(path, name string) (table *types.Table, opened bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("failed to decode xls file: %v", r)
		}
	}()

	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open xls file: %w", err)
	}
	opened = true

	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		if name != "" && sheet.GetName() != name {
			continue
		}

		table = &types.Table{
			Source: path,
			Sheet:  sheet.GetName(),
		}

		for r := 0; r <= sheet.GetNumberRows(); r++ {
			row, err := sheet.GetRow(r)
			if err != nil || row == nil {
				table.Rows = append(table.Rows, nil)
				continue
			}

			cols := row.GetCols()
			cells := make([]string, len(cols))
			for j, cell := range cols {
				if cell != nil {
					cells[j] = cell.GetString()
				}
			}
			table.Rows = append(table.Rows, cells)
		}

		table.Rows = trimMissingTail(table.Rows)
		return table, true, nil
	}

	return nil, true, sheetNotFound(name)
}

// =============================================================================
// LEGACY READER
// =============================================================================

func readLegacy(path, name, charset string) (table *types.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("failed to decode xls file: %v", r)
		}
	}()

	wb, err := legacyxls.Open(path, charset)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("xls file has no workbook stream")
	}

	sheet := findLegacySheet(wb, name)
	if sheet == nil {
		return nil, sheetNotFound(name)
	}

	table = &types.Table{
		Source: path,
		Sheet:  sheet.Name,
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := legacyRow(sheet, i)
		if row == nil {
			table.Rows = append(table.Rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

// legacyRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing entry instead of returning nil.
func legacyRow(sheet *legacyxls.WorkSheet, i int) (row *legacyxls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// findLegacySheet returns the named sheet, or the first one for an empty name.
func findLegacySheet(wb *legacyxls.WorkBook, name string) *legacyxls.WorkSheet {
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		if name == "" || sheet.Name == name {
			return sheet
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func sheetNotFound(name string) error {
	if name == "" {
		return fmt.Errorf("xls file has no sheets")
	}
	return fmt.Errorf("worksheet named '%s' not found", name)
}

// trimMissingTail drops trailing rows the sheet holds no record for.
func trimMissingTail(rows [][]string) [][]string {
	for len(rows) > 0 && rows[len(rows)-1] == nil {
		rows = rows[:len(rows)-1]
	}
	return rows
}
