// =============================================================================
// ProcessAutomate - Tabular Reader
// =============================================================================
//
// This module picks the reader for an input file from its extension:
//
//   | Extension | Reader     | Library                        |
//   |-----------|------------|--------------------------------|
//   | .xls      | xlsparser  | xlsReader (extrame/xls legacy) |
//   | .xlsx     | xlsxparser | excelize                       |
//   | .csv      | csvparser  | encoding/csv + x/text          |
//
// SpreadsheetML reference documents (.xml) are not tables in this sense;
// they are read by the refindex package.
//
// =============================================================================

package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/csvparser"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/xlsparser"
	"github.com/ginjaninja78/processautomate/internal/xlsxparser"
)

// Format is an input file format inferred from the extension.
type Format string

const (
	FormatXLS     Format = ".xls"
	FormatXLSX    Format = ".xlsx"
	FormatCSV     Format = ".csv"
	FormatXML     Format = ".xml"
	FormatUnknown Format = ""
)

// DetectFormat infers the format from a path's extension (case-insensitive).
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return FormatXLS
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".xml":
		return FormatXML
	default:
		return FormatUnknown
	}
}

// Options controls how a table is read.
type Options struct {
	// Sheet is the sheet to read. Empty selects the first sheet.
	// Ignored for CSV.
	Sheet string

	// HasHeader makes the first row the table header.
	HasHeader bool

	// CSV and XLS carry decoding settings from the configuration.
	CSV config.CSVSettings
	XLS config.XLSSettings
}

// Open reads a file into a table.
//
// PARAMETERS:
//   - path: The input file.
//   - opts: Sheet selection, header handling and decoding settings.
//
// RETURNS:
//   - The table.
//   - An error for unsupported formats or unreadable files.
func Open(path string, opts Options) (*types.Table, error) {
	switch DetectFormat(path) {
	case FormatXLS:
		table, err := xlsparser.ReadSheet(path, opts.Sheet, opts.XLS.Charset)
		if err != nil {
			return nil, err
		}
		if opts.HasHeader {
			promoteHeader(table)
		}
		return table, nil

	case FormatXLSX:
		return xlsxparser.ReadSheet(path, opts.Sheet, opts.HasHeader)

	case FormatCSV:
		return csvparser.Parse(path, opts.CSV, opts.HasHeader)

	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}

// promoteHeader moves the first row of a positional table into its header.
func promoteHeader(table *types.Table) {
	if len(table.Rows) == 0 {
		table.Header = []string{}
		return
	}

	header := make([]string, len(table.Rows[0]))
	for i, cell := range table.Rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	table.Header = header
	table.Rows = table.Rows[1:]
}
