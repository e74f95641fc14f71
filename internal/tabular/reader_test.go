package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.xls":        FormatXLS,
		"dir/B.XLSX":   FormatXLSX,
		"export.csv":   FormatCSV,
		"ref.xml":      FormatXML,
		"notes.txt":    FormatUnknown,
		"no_extension": FormatUnknown,
	}

	for path, want := range tests {
		assert.Equal(t, want, DetectFormat(path), path)
	}
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("A;B\n1;2\n"), 0o644))

	table, err := Open(path, Options{HasHeader: true, CSV: config.Default().CSV})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Header)
	assert.Equal(t, "2", table.Cell(0, 1))
}

func TestOpenXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"x", 12}))
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Open(path, Options{HasHeader: true})
	require.NoError(t, err)

	assert.Equal(t, 1, table.ColumnIndex("amount"))
	assert.Equal(t, "12", table.Cell(0, 1))
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("report.pdf", Options{})
	assert.ErrorContains(t, err, "unsupported input format")
}

func TestPromoteHeader(t *testing.T) {
	table := &types.Table{Rows: [][]string{{" a ", "b"}, {"1", "2"}}}
	promoteHeader(table)

	assert.Equal(t, []string{"a", "b"}, table.Header)
	assert.Equal(t, [][]string{{"1", "2"}}, table.Rows)

	empty := &types.Table{}
	promoteHeader(empty)
	assert.NotNil(t, empty.Header)
}
