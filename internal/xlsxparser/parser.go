// =============================================================================
// ProcessAutomate - XLSX Parser
// =============================================================================
//
// This module reads modern spreadsheet exports (.xlsx) into positional
// tables. It is used by:
//   - Foxpost: two named sheets ("utánvétek", "összesítés") from one workbook
//   - GLS: the first sheet, with a header row
//   - Simple Pay: the first sheet, with a header row
//
// CELL VALUES:
//   Cells are read as raw values (no number formatting), so a cell holding
//   1500 with a currency format reads as "1500", not "1 500 Ft".
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open .xlsx file.
type Workbook struct {
	path string
	file *excelize.File
}

// Open opens an .xlsx workbook for reading.
//
// PARAMETERS:
//   - path: The path to the workbook.
//
// RETURNS:
//   - The open workbook. The caller must Close it.
//   - An error if the file cannot be opened.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	return &Workbook{path: path, file: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with the exact name exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.file.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// Sheet reads one sheet into a table.
//
// PARAMETERS:
//   - name: The sheet name. Empty selects the first sheet.
//   - hasHeader: Whether the first row is a header row.
//
// RETURNS:
//   - The table. Rows keep their sheet positions (empty rows included) so
//     that fixed offsets line up with the source.
//   - An error if the sheet is absent or cannot be read.
func (w *Workbook) Sheet(name string, hasHeader bool) (*types.Table, error) {
	if name == "" {
		name = w.file.GetSheetName(0)
		if name == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if !w.HasSheet(name) {
		return nil, fmt.Errorf("worksheet named '%s' not found", name)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of '%s': %w", name, err)
	}

	table := &types.Table{
		Source: w.path,
		Sheet:  name,
	}

	if hasHeader {
		if len(rows) == 0 {
			return nil, fmt.Errorf("sheet '%s' has no header row", name)
		}
		table.Header = trimAll(rows[0])
		rows = rows[1:]
	}

	table.Rows = rows

	return table, nil
}

// ReadSheet opens a workbook, reads one sheet and closes the workbook.
func ReadSheet(path, name string, hasHeader bool) (*types.Table, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.Sheet(name, hasHeader)
}

// =============================================================================
// MARKER SEARCH
// =============================================================================

// FindMarkerRow returns the index of the first row having a cell that
// contains marker, scanning top to bottom, or -1 if no row does.
func FindMarkerRow(table *types.Table, marker string) int {
	for i, row := range table.Rows {
		for _, cell := range row {
			if strings.Contains(cell, marker) {
				return i
			}
		}
	}
	return -1
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// trimAll trims whitespace from every cell.
func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
