package refindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workbookHead = `<?xml version="1.0" encoding="UTF-8"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
`

func writeXML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ref.xml")
	require.NoError(t, os.WriteFile(path, []byte(workbookHead+body+"</Workbook>\n"), 0o644))
	return path
}

func TestBuildFirstQualifyingWorksheet(t *testing.T) {
	path := writeXML(t, `
 <Worksheet ss:Name="Borító">
  <Table>
   <Row><Cell><Data ss:Type="String">Cím</Data></Cell></Row>
   <Row><Cell><Data ss:Type="String">x</Data></Cell></Row>
  </Table>
 </Worksheet>
 <Worksheet ss:Name="Számlák">
  <Table>
   <Row>
    <Cell><Data ss:Type="String">Sorszám</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">Hivatkozás</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="String">SZ-0001</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">WEB-1001</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="String">SZ-0002</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">nincs szám</Data></Cell>
   </Row>
   <Row>
    <Cell ss:Index="3"><Data ss:Type="String">WEB-1003</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="String">SZ-0004</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">pg-1001</Data></Cell>
   </Row>
  </Table>
 </Worksheet>
 <Worksheet ss:Name="Másik">
  <Table>
   <Row><Cell><Data>Sorszám</Data></Cell><Cell><Data>Hivatkozás</Data></Cell></Row>
   <Row><Cell><Data>SZ-9999</Data></Cell><Cell><Data>9999</Data></Cell></Row>
  </Table>
 </Worksheet>
`)

	var lines []string
	idx, err := Build(path, func(s string) { lines = append(lines, s) })
	require.NoError(t, err)

	assert.Equal(t, "Számlák", idx.Worksheet)
	assert.Equal(t, 1, idx.Len())
	// Last write wins for the duplicate key.
	assert.Equal(t, "SZ-0004", idx.Lookup("1001"))
	assert.Equal(t, "1", idx.Lookup("1003"))
	assert.Equal(t, "1", idx.Lookup("9999"))

	assert.Contains(t, lines, "Found 3 worksheets in XML")
	assert.Contains(t, lines, "Checking worksheet: Borító")
	assert.Contains(t, lines, "Found required columns in worksheet Számlák")
	assert.NotContains(t, lines, "Checking worksheet: Másik")
}

func TestBuildNoQualifyingWorksheet(t *testing.T) {
	path := writeXML(t, `
 <Worksheet ss:Name="Only">
  <Table>
   <Row><Cell><Data>Sorszám</Data></Cell></Row>
   <Row><Cell><Data>SZ-1</Data></Cell></Row>
  </Table>
 </Worksheet>
`)

	idx, err := Build(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "1", idx.Lookup("anything"))
}

func TestBuildSkipsHeaderOnlyWorksheet(t *testing.T) {
	path := writeXML(t, `
 <Worksheet ss:Name="Empty">
  <Table>
   <Row><Cell><Data>Sorszám</Data></Cell><Cell><Data>Hivatkozás</Data></Cell></Row>
  </Table>
 </Worksheet>
`)

	idx, err := Build(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Worksheet)
}

func TestBuildNoWorksheets(t *testing.T) {
	path := writeXML(t, "")

	var lines []string
	idx, err := Build(path, func(s string) { lines = append(lines, s) })
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Len())
	assert.Contains(t, lines, "No worksheets found in XML")
}

func TestBuildMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<Workbook><Worksheet></Workbook>"), 0o644))

	_, err := Build(path, nil)
	assert.Error(t, err)
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.xml"), nil)
	assert.Error(t, err)
}

func TestExtractTrailingDigits(t *testing.T) {
	tests := map[string]string{
		"WEB-1001":     "1001",
		"12ab34":       "34",
		"abc":          "",
		"":             "",
		"100":          "100",
		"x 7 ":         "",
		"WEB-1001\n":   "1001",
		"WEB-1001\n\n": "",
	}

	for in, want := range tests {
		assert.Equal(t, want, ExtractTrailingDigits(in), in)
	}
}

func TestFromMap(t *testing.T) {
	src := map[string]string{"1": "A"}
	idx := FromMap(src)
	src["2"] = "B"

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, "A", idx.Lookup("1"))
}

func TestBuildMultiLineKeyCell(t *testing.T) {
	path := writeXML(t, `
 <Worksheet ss:Name="Számlák">
  <Table>
   <Row><Cell><Data>Sorszám</Data></Cell><Cell><Data>Hivatkozás</Data></Cell></Row>
   <Row><Cell><Data>SZ-0001</Data></Cell><Cell><Data>WEB-1001&#10;</Data></Cell></Row>
  </Table>
 </Worksheet>
`)

	idx, err := Build(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, "SZ-0001", idx.Lookup("1001"))
}
