package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/converter"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// FIXTURES
// =============================================================================

const referenceXML = `<?xml version="1.0"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <Worksheet ss:Name="Számlák">
  <Table>
   <Row><Cell><Data ss:Type="String">Sorszám</Data></Cell><Cell><Data ss:Type="String">Hivatkozás</Data></Cell></Row>
   <Row><Cell><Data ss:Type="String">SZ-0001</Data></Cell><Cell><Data ss:Type="String">WEB-1001</Data></Cell></Row>
  </Table>
 </Worksheet>
</Workbook>
`

const simplePayCSV = "Kereskedői tranzakció ID;Tranzakció összege;Tranzakciós jutalék;Vásárló;E-mail cím\n" +
	"pg-1001;1500,00;-30,00;Kiss Anna;anna@example.hu\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeGLS creates a minimal GLS export: header, seven leading rows, one
// data row and a total row.
func writeGLS(t *testing.T, dir, name string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{{"GLS"}}
	for i := 0; i < 7; i++ {
		rows = append(rows, []any{"info"})
	}
	rows = append(rows, []any{nil, nil, "GLS-1", nil, 1500})
	rows = append(rows, []any{"Összesen", nil, nil, nil, 1500})

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(config.Default(), nil)
}

// collect drains a task and returns its progress lines and result.
func collect(task *Task) ([]string, Result) {
	var lines []string
	for line := range task.Progress() {
		lines = append(lines, line)
	}
	return lines, <-task.Done()
}

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

func TestStartConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	r := newRunner(t)
	ctx := context.Background()

	_, err := r.Start(ctx, Job{Variant: types.VariantGLS})
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = r.Start(ctx, Job{Variant: "mpl", Files: []string{"a.xlsx"}})
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = r.Start(ctx, Job{Variant: types.VariantSimplePayEqual, Files: []string{"a.csv"}})
	assert.ErrorIs(t, err, ErrNoReference)

	_, err = r.Start(ctx, Job{
		Variant:       types.VariantSimplePayEqual,
		Files:         []string{"a.csv"},
		ReferencePath: filepath.Join(dir, "missing.xml"),
	})
	assert.ErrorIs(t, err, ErrNoReference)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Start(cancelled, Job{Variant: types.VariantGLS, Files: []string{"a.xlsx"}})
	assert.ErrorIs(t, err, context.Canceled)

	assert.False(t, r.Busy())
}

func TestBlankFilesNothingProcessed(t *testing.T) {
	task, err := newRunner(t).Start(context.Background(), Job{
		Variant: types.VariantGLS,
		Files:   []string{"", "  "},
	})
	require.NoError(t, err)

	_, result := collect(task)

	assert.Equal(t, OutcomeNothingProcessed, result.Outcome)
	assert.False(t, result.Success)
	assert.Equal(t, "No files were processed.", result.Message)
	assert.Empty(t, result.Outputs)
}

// =============================================================================
// PER-FILE ERRORS
// =============================================================================

func TestOneBadOneGoodFile(t *testing.T) {
	dir := t.TempDir()
	good := writeGLS(t, dir, "good.xlsx")
	bad := filepath.Join(dir, "missing.xlsx")

	task, err := newRunner(t).Start(context.Background(), Job{
		Variant: types.VariantGLS,
		Files:   []string{bad, good, good},
	})
	require.NoError(t, err)

	lines, result := collect(task)

	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.False(t, result.Success)
	assert.Equal(t, []string{good}, result.Processed)
	assert.Equal(t, []string{filepath.Join(dir, "processed_good.xlsx")}, result.Outputs)
	assert.FileExists(t, filepath.Join(dir, "processed_good.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "processed_missing.xlsx"))

	require.Len(t, result.Errors, 1)
	assert.Equal(t, bad, result.Errors[0].File)
	assert.Contains(t, result.Message, "Processed 1 of 2 gls files.")
	assert.Contains(t, result.Message, "missing.xlsx")

	assert.Equal(t, "Starting gls file processing...", lines[0])
	assert.Contains(t, lines, "Processing file: missing.xlsx")
	assert.Contains(t, lines, "✓ Successfully processed: good.xlsx")
}

func TestAllFilesFailed(t *testing.T) {
	task, err := newRunner(t).Start(context.Background(), Job{
		Variant: types.VariantOTP,
		Files:   []string{"a.xlsx"},
	})
	require.NoError(t, err)

	result := task.Wait()

	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.Contains(t, result.Message, "No otp files were processed successfully.")
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, &result.Errors[0], converter.ErrNotImplemented)
}

func TestAdjustmentOnlyForAdjustableVariants(t *testing.T) {
	dir := t.TempDir()
	src := writeGLS(t, dir, "gls.xlsx")

	task, err := newRunner(t).Start(context.Background(), Job{
		Variant:    types.VariantGLS,
		Files:      []string{src},
		Adjustment: &types.OutputRow{Reference: "Korrekció", Amount: -100},
	})
	require.NoError(t, err)
	require.True(t, task.Wait().Success)

	f, err := excelize.OpenFile(filepath.Join(dir, "processed_gls.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"GLS-1", "1500"}, {"Korrekció", "-100"}}, rows)
}

// =============================================================================
// SIMPLE PAY
// =============================================================================

func TestSimplePayBatch(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.xml", referenceXML)
	src := writeFile(t, dir, "simple.csv", simplePayCSV)

	cfg := config.Default()
	cfg.Output.SummaryDir = filepath.Join(dir, "logs")

	task, err := NewRunner(cfg, nil).Start(context.Background(), Job{
		Variant:       types.VariantSimplePayPG,
		Files:         []string{src},
		ReferencePath: ref,
	})
	require.NoError(t, err)

	lines, result := collect(task)

	assert.True(t, result.Success)
	assert.Equal(t, OutcomeSucceeded, result.Outcome)
	assert.Equal(t, "Successfully processed 1 simplepay-pg files", result.Message)
	assert.Equal(t, []string{
		filepath.Join(dir, "processed_simple.xlsx"),
		filepath.Join(dir, "processed_extended_simple.xlsx"),
	}, result.Outputs)

	assert.Contains(t, lines, "Loading XML file: "+ref)
	assert.Contains(t, lines, "XML processing complete. Found 1 reference records.")

	f, err := excelize.OpenFile(filepath.Join(dir, "processed_simple.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"SZ-0001", "1500"}, {"1", "-30"}}, rows)

	logs, err := os.ReadDir(cfg.Output.SummaryDir)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestSimplePayAbortsOnBrokenReference(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.xml", "<Workbook><Worksheet></Workbook>")
	src := writeFile(t, dir, "simple.csv", simplePayCSV)

	task, err := newRunner(t).Start(context.Background(), Job{
		Variant:       types.VariantSimplePayEqual,
		Files:         []string{src},
		ReferencePath: ref,
	})
	require.NoError(t, err)

	lines, result := collect(task)

	assert.Equal(t, OutcomeAborted, result.Outcome)
	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Empty(t, result.Outputs)
	assert.NotContains(t, lines, "Processing file: simple.csv")
	assert.NoFileExists(t, filepath.Join(dir, "processed_simple.xlsx"))
}

func TestSimplePayPartialWriteKept(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.xml", referenceXML)
	src := writeFile(t, dir, "short.csv",
		"Kereskedői tranzakció ID;Tranzakció összege;Tranzakciós jutalék\n1001;100,00;-5,00\n")

	task, err := newRunner(t).Start(context.Background(), Job{
		Variant:       types.VariantSimplePayEqual,
		Files:         []string{src},
		ReferencePath: ref,
	})
	require.NoError(t, err)

	result := task.Wait()

	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.Equal(t, []string{filepath.Join(dir, "processed_short.xlsx")}, result.Outputs)
	assert.FileExists(t, filepath.Join(dir, "processed_short.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "processed_extended_short.xlsx"))
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestSecondBatchRefusedWhileBusy(t *testing.T) {
	dir := t.TempDir()
	src := writeGLS(t, dir, "gls.xlsx")
	r := newRunner(t)
	job := Job{Variant: types.VariantGLS, Files: []string{src}}

	// The first progress line is not read yet, so the worker is blocked.
	task, err := r.Start(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, r.Busy())

	_, err = r.Start(context.Background(), job)
	assert.True(t, errors.Is(err, ErrBusy))

	require.True(t, task.Wait().Success)
	assert.False(t, r.Busy())

	task, err = r.Start(context.Background(), job)
	require.NoError(t, err)
	task.Wait()
}
