// =============================================================================
// ProcessAutomate - File Manager Utility
// =============================================================================
//
// This module provides file helpers shared by the converter, the writer and
// the CLI:
//   - Output file naming beside the source file
//   - Input list filtering (blank and duplicate entries)
//   - Temporary file naming for atomic saves
//   - Run summary logs
//
// OUTPUT NAMING:
//   /data/export.xls   + "processed_"          -> /data/processed_export.xlsx
//   /data/simple.csv   + "processed_extended_" -> /data/processed_extended_simple.xlsx
//
//   Existing files are overwritten without prompting.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputPath returns the output path for a source file.
//
// PARAMETERS:
//   - src: The input file path.
//   - prefix: The prefix for the output base name.
//
// RETURNS:
//   - <dir of src>/<prefix><base name without extension>.xlsx
func OutputPath(src, prefix string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(filepath.Dir(src), prefix+base+".xlsx")
}

// TempPath returns a unique hidden sibling path for target, used to write a
// file before renaming it into place. The extension is kept so writers that
// pick a format from it behave the same.
func TempPath(target string) string {
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	name := fmt.Sprintf(".%s.%s%s", strings.TrimSuffix(base, ext), uuid.New().String(), ext)
	return filepath.Join(filepath.Dir(target), name)
}

// =============================================================================
// INPUT FILTERING
// =============================================================================

// FilterInputFiles drops blank entries and duplicates from a file list,
// keeping the first occurrence of each path in order. Paths are compared
// after filepath.Clean.
func FilterInputFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	var result []string

	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		key := filepath.Clean(f)
		if seen[key] {
			continue
		}
		seen[key] = true

		result = append(result, f)
	}

	return result
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string
	Variant         string
	StartTime       time.Time
	EndTime         time.Time
	Outcome         string
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file. Created if missing.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := EnsureDirectory(outputDir); err != nil {
		return "", err
	}

	// The run ID keeps names unique when two runs finish within a second.
	runID := summary.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	summaryFileName := fmt.Sprintf("processing_summary_%s_%s.txt",
		summary.StartTime.Format("20060102_150405"), shortID(runID))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "ProcessAutomate - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Variant:        %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Outcome:        %s\n\n"+
		"Statistics:\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n\n",
		runID,
		summary.Variant,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Outcome,
		len(summary.ProcessedFiles),
		len(summary.FailedFilesList))

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			writer.WriteString("\n")
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// shortID returns the first block of a UUID string.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
