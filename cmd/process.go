// =============================================================================
// ProcessAutomate - Vendor Commands
// =============================================================================
//
// This file defines one subcommand per vendor. Each builds a batch job from
// its arguments and flags and hands it to runBatch.
//
// COMMAND USAGE:
//   processautomate dpd       [--label TEXT] [--amount N] FILE...
//   processautomate gls       [--label TEXT] [--amount N] FILE...
//   processautomate foxpost   FILE...
//   processautomate otp       FILE...
//   processautomate simplepay --xml REF.xml --variant equal|pg|t FILE...
//
// PROCESSING PIPELINE (per batch):
//   1. Validate the job (files selected, reference file present)
//   2. Simple Pay only: build the reference index
//   3. For each file, in order: read, transform, write
//   4. Print the summary message; exit with status 1 unless every file
//      succeeded
//
// While a batch runs, interrupt signals are ignored.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ginjaninja78/processautomate/internal/batch"
	"github.com/ginjaninja78/processautomate/internal/converter"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/ginjaninja78/processautomate/pkg/utils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errBatchFailed makes the process exit with status 1 after the summary
// message has been printed.
var errBatchFailed = errors.New("batch did not complete successfully")

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// newAdjustableCommand builds the DPD and GLS commands, which accept an
// optional adjustment row.
func newAdjustableCommand(variant types.Variant, short string) *cobra.Command {
	var label, amount string

	cmd := &cobra.Command{
		Use:   string(variant) + " FILE...",
		Short: short,
		Long: short + `.

The optional --label and --amount flags append one adjustment row to every
output: the label in the reference column and the negated amount in the
amount column. The amount is corrected the same way as interactive input:
a minus sign is dropped and trailing non-digits are removed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adj, err := converter.NewAdjustment(label, amount)
			if err != nil {
				return err
			}
			if corrected := converter.NormalizeAmountInput(amount); corrected != amount {
				logger.WithFields(logrus.Fields{"input": amount, "corrected": corrected}).
					Warn("adjustment amount corrected")
			}

			return runBatch(cmd, batch.Job{
				Variant:    variant,
				Files:      args,
				Adjustment: adj,
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Reference text of the adjustment row")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount of the adjustment row (written negated)")

	return cmd
}

// newPlainCommand builds commands that take only input files.
func newPlainCommand(variant types.Variant, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(variant) + " FILE...",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, batch.Job{Variant: variant, Files: args})
		},
	}
}

// newSimplePayCommand builds the Simple Pay command.
func newSimplePayCommand() *cobra.Command {
	var xmlPath, kind string

	cmd := &cobra.Command{
		Use:   "simplepay --xml REF.xml --variant equal|pg|t FILE...",
		Short: "Process Simple Pay transaction exports",
		Long: `Process Simple Pay transaction exports (.csv with ";" separator, or .xlsx).

Transaction IDs are mapped to reference codes through the worksheet of the
--xml file that has "Sorszám" and "Hivatkozás" columns. Unknown IDs map to 1.

Variants:
  equal  IDs look like ="1001"
  pg     IDs look like pg-1001
  t      IDs look like 2024T1001

Two outputs are written per file: processed_<name>.xlsx and
processed_extended_<name>.xlsx (with buyer name and e-mail).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, batch.Job{
				Variant:       types.Variant("simplepay-" + strings.ToLower(strings.TrimSpace(kind))),
				Files:         args,
				ReferencePath: xmlPath,
			})
		},
	}

	cmd.Flags().StringVar(&xmlPath, "xml", "", "Reference SpreadsheetML file (required)")
	cmd.Flags().StringVar(&kind, "variant", "", "Identifier format: equal, pg or t (required)")

	return cmd
}

func init() {
	rootCmd.AddCommand(
		newAdjustableCommand(types.VariantDPD, "Process DPD .xls exports"),
		newPlainCommand(types.VariantFoxpost, "Process Foxpost .xlsx exports"),
		newAdjustableCommand(types.VariantGLS, "Process GLS .xlsx exports"),
		newPlainCommand(types.VariantOTP, "Process OTP exports (not implemented)"),
		newSimplePayCommand(),
	)
}

// =============================================================================
// BATCH EXECUTION
// =============================================================================

// runBatch starts a batch, renders its progress and prints the result.
//
// RETURNS:
//   - A configuration error if the batch could not start.
//   - errBatchFailed if the batch finished without full success.
func runBatch(cmd *cobra.Command, job batch.Job) error {
	runner := batch.NewRunner(appConfig, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	task, err := runner.Start(ctx, job)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := newProgressRenderer(out, progressTotal(job))

	// Interrupts are swallowed until the batch ends.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	g, gctx := errgroup.WithContext(ctx)
	finished := make(chan struct{})

	g.Go(func() error {
		defer close(finished)
		for line := range task.Progress() {
			renderer.line(line)
		}
		renderer.finish()
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-signals:
				fmt.Fprintln(cmd.ErrOrStderr(), "Please wait for processing to complete.")
			case <-finished:
				return nil
			case <-gctx.Done():
				// The batch keeps running; keep waiting for it.
				<-finished
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	result := <-task.Done()

	fmt.Fprintln(out, result.Message)
	if !result.Success {
		return errBatchFailed
	}
	return nil
}

// =============================================================================
// PROGRESS RENDERING
// =============================================================================

// progressRenderer prints progress lines, or drives a progress bar when
// standard output is a terminal.
type progressRenderer struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// progressTotal counts the files the runner will actually visit.
func progressTotal(job batch.Job) int {
	return len(utils.FilterInputFiles(job.Files))
}

func newProgressRenderer(out io.Writer, total int) *progressRenderer {
	r := &progressRenderer{out: out}

	if out == io.Writer(os.Stdout) && isTerminal(os.Stdout) {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Processing files"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	return r
}

func (r *progressRenderer) line(s string) {
	if r.bar == nil {
		fmt.Fprintln(r.out, s)
		return
	}

	// File outcome lines stay visible above the bar.
	if strings.HasPrefix(s, "✓") || strings.HasPrefix(s, "✗") || strings.HasPrefix(s, "Warning") {
		r.bar.Clear()
		fmt.Fprintln(r.out, s)
	}
	if strings.HasPrefix(s, "✓") || strings.HasPrefix(s, "✗") {
		r.bar.Add(1)
		return
	}
	r.bar.Describe(s)
}

func (r *progressRenderer) finish() {
	if r.bar != nil {
		r.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
