// =============================================================================
// ProcessAutomate - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every vendor has its
// own subcommand; they share the global flags defined here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (processautomate)
//   ├── dpd        (processautomate dpd FILE...)
//   ├── foxpost    (processautomate foxpost FILE...)
//   ├── gls        (processautomate gls FILE...)
//   ├── otp        (processautomate otp FILE...)
//   ├── simplepay  (processautomate simplepay --xml REF --variant equal|pg|t FILE...)
//   ├── vendors    (processautomate vendors)
//   └── version    (processautomate version)
//
// CONFIGURATION:
//   Settings are resolved in this order, later entries winning:
//   1. Built-in defaults
//   2. config.yaml (or --config)
//   3. PROCESSAUTOMATE_* environment variables
//   4. Command-line flags
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/ginjaninja78/processautomate/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// envPrefix prefixes environment overrides, e.g. PROCESSAUTOMATE_LOG_LEVEL.
const envPrefix = "PROCESSAUTOMATE"

// appConfig and logger are set by loadSettings before any subcommand runs.
var (
	appConfig *config.Config
	logger    *logrus.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "processautomate",
	Short: "ProcessAutomate - Normalize carrier and payment-provider exports",
	Long: `ProcessAutomate converts carrier and payment-provider export spreadsheets
(DPD, Foxpost, GLS, OTP, Simple Pay) into a normalized two-column
reference/amount spreadsheet written beside each input file.

Example Usage:
  processautomate dpd export.xls --label "Korrekció" --amount 500
  processautomate foxpost elszamolas.xlsx
  processautomate simplepay --xml szamlak.xml --variant pg tranzakciok.csv
  processautomate vendors`,

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with status 1 on error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.String("config", "config.yaml", "Path to the configuration file")
	flags.BoolP("verbose", "v", false, "Enable verbose output for debugging")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text, json")
	flags.String("summary-dir", "", "Write a run summary file into this directory")
}

// loadSettings builds the configuration and the logger.
func loadSettings(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	// An explicitly named config file must exist; the default may be absent.
	cfg, err := config.Load(v.GetString("config"), v.IsSet("config"))
	if err != nil {
		return err
	}

	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.LogFormat = v.GetString("log-format")
	}
	if v.IsSet("summary-dir") {
		cfg.Output.SummaryDir = v.GetString("summary-dir")
	}
	if v.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appConfig = cfg
	logger = logging.New(cfg)
	if effective, err := cfg.Marshal(); err == nil {
		logger.WithField("config", v.GetString("config")).Debugf("effective configuration:\n%s", effective)
	}

	return nil
}
