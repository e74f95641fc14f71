// =============================================================================
// ProcessAutomate - Reference Index
// =============================================================================
//
// This module builds the identifier -> reference-code map used by the Simple
// Pay variants. The source is an Excel 2003 XML ("SpreadsheetML") export:
//
//   <Workbook xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
//     <Worksheet ss:Name="Számlák">
//       <Table>
//         <Row><Cell><Data>Sorszám</Data></Cell><Cell><Data>Hivatkozás</Data></Cell></Row>
//         <Row><Cell><Data>SZ-0001</Data></Cell><Cell ss:Index="2"><Data>WEB-1001</Data></Cell></Row>
//       </Table>
//     </Worksheet>
//   </Workbook>
//
// LOOKUP RULES:
//   - The first worksheet whose header row has both "Sorszám" and
//     "Hivatkozás" is used. Later worksheets are ignored.
//   - The key is the trailing digit run of "Hivatkozás" ("WEB-1001" -> "1001").
//     Rows without trailing digits or without a "Sorszám" value are dropped.
//   - Duplicate keys: the last row wins.
//   - Unknown identifiers resolve to types.FallbackReference.
//
// =============================================================================

package refindex

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/ginjaninja78/processautomate/internal/types"
)

const (
	// ReferenceColumn holds the reference code returned by Lookup.
	ReferenceColumn = "Sorszám"

	// KeyColumn holds the text whose trailing digits form the key.
	KeyColumn = "Hivatkozás"
)

// A single trailing newline is tolerated; multi-line cells end with one.
var trailingDigits = regexp.MustCompile(`(\d+)\n?$`)

// =============================================================================
// INDEX
// =============================================================================

// Index maps cleaned transaction identifiers to reference codes.
// The zero value is an empty index.
type Index struct {
	entries map[string]string

	// Worksheet is the name of the worksheet the entries came from.
	// Empty when no worksheet qualified.
	Worksheet string
}

// Lookup returns the reference code for an identifier, or the fallback
// reference when the identifier is unknown.
func (idx Index) Lookup(id string) string {
	if ref, ok := idx.entries[id]; ok {
		return ref
	}
	return types.FallbackReference
}

// Len returns the number of keys in the index.
func (idx Index) Len() int {
	return len(idx.entries)
}

// FromMap builds an index from an existing map. The map is copied.
func FromMap(entries map[string]string) Index {
	idx := Index{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		idx.entries[k] = v
	}
	return idx
}

// =============================================================================
// BUILD
// =============================================================================

// Build reads a SpreadsheetML document and builds the index.
//
// PARAMETERS:
//   - path: The XML document.
//   - progress: Receives human-readable progress lines. May be nil.
//
// RETURNS:
//   - The index. A document without a qualifying worksheet yields an empty
//     index and no error.
//   - An error if the file cannot be opened or is not well-formed XML.
func Build(path string, progress func(string)) (Index, error) {
	if progress == nil {
		progress = func(string) {}
	}

	f, err := os.Open(path)
	if err != nil {
		return Index{}, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	progress("Parsing XML file...")

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return Index{}, fmt.Errorf("failed to parse reference file: %w", err)
	}

	return buildFromDocument(doc, progress), nil
}

// buildFromDocument scans the worksheets of a parsed document.
func buildFromDocument(doc *xmlquery.Node, progress func(string)) Index {
	worksheets := xmlquery.Find(doc, "//*[local-name()='Worksheet']")
	if len(worksheets) == 0 {
		progress("No worksheets found in XML")
		return Index{entries: map[string]string{}}
	}

	progress(fmt.Sprintf("Found %d worksheets in XML", len(worksheets)))

	for _, ws := range worksheets {
		name := attr(ws, "Name")
		if name == "" {
			name = "Unnamed"
		}
		progress(fmt.Sprintf("Checking worksheet: %s", name))

		table := xmlquery.FindOne(ws, ".//*[local-name()='Table']")
		if table == nil {
			continue
		}

		rows := readRows(table)
		if len(rows) <= 1 {
			continue
		}

		header := headerNames(rows[0])
		refCol, keyCol := indexOf(header, ReferenceColumn), indexOf(header, KeyColumn)
		if refCol < 0 || keyCol < 0 {
			continue
		}

		progress(fmt.Sprintf("Found required columns in worksheet %s", name))

		idx := Index{entries: map[string]string{}, Worksheet: name}
		for _, row := range rows[1:] {
			ref, key := row.at(refCol), row.at(keyCol)
			if ref == nil || key == nil {
				continue
			}
			digits := ExtractTrailingDigits(*key)
			if digits == "" {
				continue
			}
			idx.entries[digits] = *ref
		}

		return idx
	}

	progress("Could not find a worksheet with the required columns")
	return Index{entries: map[string]string{}}
}

// ExtractTrailingDigits returns the run of ASCII digits at the end of text,
// ignoring one final newline, or an empty string.
func ExtractTrailingDigits(text string) string {
	m := trailingDigits.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// =============================================================================
// ROW DECODING
// =============================================================================

// sheetRow holds cell values; nil marks a missing cell or a cell without data.
type sheetRow []*string

func (r sheetRow) at(i int) *string {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// readRows decodes the Row children of a Table element. A cell carrying
// ss:Index jumps to that 1-based column; skipped columns are nil.
func readRows(table *xmlquery.Node) []sheetRow {
	var rows []sheetRow

	for _, rowNode := range xmlquery.Find(table, "./*[local-name()='Row']") {
		var row sheetRow

		for _, cell := range xmlquery.Find(rowNode, "./*[local-name()='Cell']") {
			if raw := attr(cell, "Index"); raw != "" {
				if target, err := strconv.Atoi(raw); err == nil {
					for len(row)+1 < target {
						row = append(row, nil)
					}
				}
			}

			var value *string
			if data := xmlquery.FindOne(cell, "./*[local-name()='Data']"); data != nil {
				text := data.InnerText()
				value = &text
			}
			row = append(row, value)
		}

		rows = append(rows, row)
	}

	return rows
}

// headerNames renders a header row. Cells without data become Column_<i>.
func headerNames(row sheetRow) []string {
	names := make([]string, len(row))
	for i, cell := range row {
		if cell == nil {
			names[i] = fmt.Sprintf("Column_%d", i)
		} else {
			names[i] = *cell
		}
	}
	return names
}

func indexOf(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

// attr returns an attribute value by local name, ignoring the namespace
// prefix (ss:Index and Index are the same attribute here).
func attr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Name.Local, local) {
			return a.Value
		}
	}
	return ""
}
