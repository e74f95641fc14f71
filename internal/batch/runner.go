// =============================================================================
// ProcessAutomate - Batch Runner
// =============================================================================
//
// This module runs one vendor batch on a worker goroutine and reports back
// through two channels:
//
//   Task.Progress()  human-readable status lines, closed when the batch ends
//   Task.Done()      exactly one Result, delivered after Progress is closed
//
// BATCH SEMANTICS:
//   - Files are processed strictly sequentially, in list order
//   - A failed file is recorded with its name and skipped
//   - Simple Pay batches build the reference index first; a build failure
//     aborts the batch before any file is touched
//   - Only one batch runs per Runner; Start refuses a second one
//   - There is no cancellation once a batch has started
//
// The progress channel is unbuffered. Callers must drain it (or use Wait).
//
// =============================================================================

package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/converter"
	"github.com/ginjaninja78/processautomate/internal/logging"
	"github.com/ginjaninja78/processautomate/internal/refindex"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/internal/xlsxwriter"
	"github.com/ginjaninja78/processautomate/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoFiles is returned when a job lists no input files.
	ErrNoFiles = errors.New("no input files selected")

	// ErrNoReference is returned when a Simple Pay job has no usable
	// reference file.
	ErrNoReference = errors.New("no reference XML file selected")

	// ErrBusy is returned while another batch is in flight.
	ErrBusy = errors.New("a batch is already processing; please wait for processing to complete")

	// ErrUnknownVariant is returned for variants without a transformer.
	ErrUnknownVariant = errors.New("unknown variant")
)

// FileError is a per-file failure.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.File), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// =============================================================================
// JOB, TASK AND RESULT
// =============================================================================

// Job describes one batch.
type Job struct {
	Variant types.Variant

	// Files are processed in order. Blank and duplicate entries are dropped.
	Files []string

	// ReferencePath is the SpreadsheetML file for Simple Pay variants.
	ReferencePath string

	// Adjustment is appended to every DPD and GLS output. Ignored by other
	// variants.
	Adjustment *types.OutputRow
}

// Outcome classifies a finished batch.
type Outcome string

const (
	OutcomeSucceeded        Outcome = "succeeded"
	OutcomePartialFailure   Outcome = "partial_failure"
	OutcomeNothingProcessed Outcome = "nothing_processed"
	OutcomeAborted          Outcome = "aborted"
)

// Result is the terminal report of a batch.
type Result struct {
	RunID   string
	Variant types.Variant
	Outcome Outcome

	// Success is true only when no error occurred and at least one file
	// was processed.
	Success bool

	// Message is the summary shown to the user.
	Message string

	// Processed lists the input files that completed without error.
	Processed []string

	// Outputs lists every file written, including outputs of files that
	// failed after a partial write.
	Outputs []string

	// Errors lists per-file failures in processing order.
	Errors []FileError

	// Err holds the fatal error of an aborted batch.
	Err error

	StartTime time.Time
	EndTime   time.Time
}

// Task is a running batch.
type Task struct {
	RunID    string
	progress chan string
	done     chan Result
}

// Progress returns the status line stream. It is closed before the result
// is delivered.
func (t *Task) Progress() <-chan string {
	return t.progress
}

// Done delivers the result once.
func (t *Task) Done() <-chan Result {
	return t.done
}

// Wait discards remaining progress lines and returns the result.
func (t *Task) Wait() Result {
	for range t.progress {
	}
	return <-t.done
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner starts batches, one at a time.
type Runner struct {
	cfg    *config.Config
	logger logrus.FieldLogger
	busy   atomic.Bool
}

// NewRunner creates a Runner. A nil logger discards log output.
func NewRunner(cfg *config.Config, logger logrus.FieldLogger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Busy reports whether a batch is in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Start validates the job and starts the batch.
//
// PARAMETERS:
//   - ctx: Checked before the batch starts. A started batch runs to
//     completion regardless of ctx.
//   - job: The batch description.
//
// RETURNS:
//   - The running task.
//   - A configuration error (ErrNoFiles, ErrNoReference, ErrUnknownVariant,
//     ErrBusy or the context error); no batch is started.
func (r *Runner) Start(ctx context.Context, job Job) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr, ok := converter.Lookup(job.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, job.Variant)
	}

	if len(job.Files) == 0 {
		return nil, ErrNoFiles
	}

	if job.Variant.NeedsReference() {
		if strings.TrimSpace(job.ReferencePath) == "" {
			return nil, ErrNoReference
		}
		if !utils.FileExists(job.ReferencePath) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoReference, job.ReferencePath)
		}
	}

	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	task := &Task{
		RunID:    uuid.New().String(),
		progress: make(chan string),
		done:     make(chan Result, 1),
	}

	go r.run(task, tr, job)

	return task, nil
}

// run is the worker body.
func (r *Runner) run(task *Task, tr converter.Transformer, job Job) {
	log := r.logger.WithFields(logrus.Fields{
		"run_id":  task.RunID,
		"variant": job.Variant,
	})

	result := Result{
		RunID:     task.RunID,
		Variant:   job.Variant,
		StartTime: time.Now(),
	}

	emit := func(line string) {
		task.progress <- line
	}

	r.process(&result, tr, job, log, emit)

	result.EndTime = time.Now()
	r.writeSummary(&result, log, emit)

	log.WithFields(logrus.Fields{
		"outcome":   result.Outcome,
		"processed": len(result.Processed),
		"failed":    len(result.Errors),
	}).Info("batch finished")

	r.busy.Store(false)
	close(task.progress)
	task.done <- result
	close(task.done)
}

// process fills in result.
func (r *Runner) process(result *Result, tr converter.Transformer, job Job, log logrus.FieldLogger, emit func(string)) {
	name := job.Variant
	emit(fmt.Sprintf("Starting %s file processing...", name))

	env := converter.Env{
		Config:   r.cfg,
		Logger:   log,
		Progress: emit,
	}
	if job.Variant.TakesAdjustment() {
		env.Adjustment = job.Adjustment
	}

	if job.Variant.NeedsReference() {
		emit(fmt.Sprintf("Loading XML file: %s", job.ReferencePath))

		index, err := refindex.Build(job.ReferencePath, emit)
		if err != nil {
			log.WithError(err).Error("reference index build failed")
			emit(fmt.Sprintf("Error processing XML file: %v", err))

			result.Outcome = OutcomeAborted
			result.Err = err
			result.Message = fmt.Sprintf("XML processing failed: %v", err)
			return
		}

		emit(fmt.Sprintf("XML processing complete. Found %d reference records.", index.Len()))
		env.Index = index
	}

	files := utils.FilterInputFiles(job.Files)
	if len(files) == 0 {
		emit("No files selected for processing")
		result.Outcome = OutcomeNothingProcessed
		result.Message = "No files were processed."
		return
	}

	for _, file := range files {
		base := filepath.Base(file)
		flog := log.WithField("file", file)
		emit(fmt.Sprintf("Processing file: %s", base))

		written, err := r.processFile(tr, file, env)
		result.Outputs = append(result.Outputs, written...)

		if err != nil {
			flog.WithError(err).Warn("file failed")
			emit(fmt.Sprintf("✗ Error processing %s: %v", base, err))
			result.Errors = append(result.Errors, FileError{File: file, Err: err})
			continue
		}

		flog.WithField("outputs", written).Info("file processed")
		emit(fmt.Sprintf("✓ Successfully processed: %s", base))
		result.Processed = append(result.Processed, file)
	}

	summarize(result, len(files))
}

// processFile transforms one file and writes its outputs. Outputs returned
// together with an error are written before the error is reported.
func (r *Runner) processFile(tr converter.Transformer, file string, env converter.Env) (written []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	outputs, terr := tr.Transform(file, env)

	opts := xlsxwriter.Options{SheetName: r.cfg.Output.SheetName}
	for _, out := range outputs {
		if werr := xlsxwriter.Write(out.Path, out.Rows, out.Extended, opts); werr != nil {
			return written, fmt.Errorf("failed to write %s: %w", filepath.Base(out.Path), werr)
		}
		written = append(written, out.Path)
	}

	return written, terr
}

// summarize sets the outcome and message of a batch that ran its files.
func summarize(result *Result, total int) {
	name := result.Variant

	if len(result.Errors) == 0 {
		result.Outcome = OutcomeSucceeded
		result.Success = true
		result.Message = fmt.Sprintf("Successfully processed %d %s files", len(result.Processed), name)
		return
	}

	result.Outcome = OutcomePartialFailure

	var b strings.Builder
	if len(result.Processed) == 0 {
		fmt.Fprintf(&b, "No %s files were processed successfully.", name)
	} else {
		fmt.Fprintf(&b, "Processed %d of %d %s files.", len(result.Processed), total, name)
	}
	b.WriteString(" Errors occurred:")
	for _, fe := range result.Errors {
		b.WriteString("\n  ")
		b.WriteString(fe.Error())
	}
	result.Message = b.String()
}

// writeSummary writes the optional run summary. A failure is logged and
// reported as progress; it does not change the outcome.
func (r *Runner) writeSummary(result *Result, log logrus.FieldLogger, emit func(string)) {
	dir := r.cfg.Output.SummaryDir
	if dir == "" {
		return
	}

	summary := utils.ProcessingSummary{
		RunID:     result.RunID,
		Variant:   string(result.Variant),
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		Outcome:   string(result.Outcome),
	}
	for _, f := range result.Processed {
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   f,
			OutputFiles: outputsFor(f, result.Outputs, r.cfg),
		})
	}
	for _, fe := range result.Errors {
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    fe.File,
			ErrorMessage: fe.Err.Error(),
		})
	}

	path, err := utils.WriteSummaryLog(summary, dir)
	if err != nil {
		log.WithError(err).Warn("failed to write summary log")
		emit(fmt.Sprintf("Warning: could not write summary log: %v", err))
		return
	}

	log.WithField("path", path).Debug("summary log written")
	emit(fmt.Sprintf("Summary written to: %s", path))
}

// outputsFor returns the written outputs that belong to src.
func outputsFor(src string, outputs []string, cfg *config.Config) []string {
	main := utils.OutputPath(src, cfg.Output.Prefix)
	extended := utils.OutputPath(src, cfg.Output.ExtendedPrefix)

	var out []string
	for _, o := range outputs {
		if o == main || o == extended {
			out = append(out, o)
		}
	}
	return out
}
