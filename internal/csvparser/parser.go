// =============================================================================
// ProcessAutomate - CSV Parser Module
// =============================================================================
//
// This module parses delimited exports (Simple Pay transaction lists). It
// handles:
//   - Configurable delimiters (semicolon by default)
//   - Legacy code pages (windows-1250, iso-8859-2, windows-1252)
//   - UTF-8 byte order marks
//   - Quoted fields and stray quotes (="123" style Excel guards)
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//   - hasHeader: Whether the first record is a header row.
//
// RETURNS:
//   - A table holding the header (if requested) and the data rows.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings, hasHeader bool) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings, hasHeader)
	if err != nil {
		return nil, err
	}
	table.Source = filePath

	return table, nil
}

// ParseReader is Parse over an arbitrary reader.
func ParseReader(r io.Reader, settings config.CSVSettings, hasHeader bool) (*types.Table, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), decoder))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	table := &types.Table{}

	if hasHeader {
		table.Header = cleanHeaders(allRows[0])
		allRows = allRows[1:]
	}

	for _, row := range allRows {
		// Skip empty rows.
		if types.IsRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	case ",", "comma":
		reader.Comma = ','
	default:
		if r := []rune(settings.Delimiter); len(r) > 0 {
			reader.Comma = r[0]
		} else {
			reader.Comma = ';'
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// ="123" guards put quotes inside unquoted fields.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// decoderFor returns the byte transformer for a configured encoding name.
// UTF-8 input has its byte order mark removed.
func decoderFor(encoding string) (transform.Transformer, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported CSV encoding %q", encoding)
	}
}

// cleanHeaders trims header values. Empty headers keep their position under
// a placeholder name.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i)
		}
		cleaned[i] = header
	}

	return cleaned
}
