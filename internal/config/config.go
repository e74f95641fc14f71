// =============================================================================
// ProcessAutomate - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
// Vendor layouts (column positions, offsets, cleaning rules) are fixed in the
// converter package; the configuration only covers the ambient concerns:
//   - Logging level and format
//   - CSV decoding (delimiter, code page)
//   - Legacy .xls charset
//   - Output naming and the optional run summary
//
// CONFIGURATION FILE:
//   config.yaml in the working directory, or the path given with --config.
//   A missing default file is not an error: defaults apply.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoder.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// CSV contains settings for delimited input files.
	CSV CSVSettings `yaml:"csv"`

	// XLS contains settings for legacy binary spreadsheets.
	XLS XLSSettings `yaml:"xls"`

	// Output contains settings for generated files.
	Output OutputSettings `yaml:"output"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Default: ";" (the Simple Pay export separator)
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Supported: "UTF-8", "windows-1250", "iso-8859-2", "windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// XLSSettings contains settings for .xls files.
type XLSSettings struct {
	// Charset is passed to the .xls decoder for non-unicode strings.
	// Default: "utf-8"
	Charset string `yaml:"charset"`
}

// OutputSettings contains settings for output files.
type OutputSettings struct {
	// Prefix is prepended to the source base name.
	// Default: "processed_"
	Prefix string `yaml:"prefix"`

	// ExtendedPrefix is used for the four-column Simple Pay output.
	// Default: "processed_extended_"
	ExtendedPrefix string `yaml:"extended_prefix"`

	// SheetName is the name of the single output sheet.
	// Default: "Sheet1"
	SheetName string `yaml:"sheet_name"`

	// SummaryDir, when set, receives a text summary of each run.
	SummaryDir string `yaml:"summary_dir"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required: Whether a missing file is an error. The default path is
//     optional; an explicitly given path is required.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ";"
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "UTF-8"
	}
	if cfg.XLS.Charset == "" {
		cfg.XLS.Charset = "utf-8"
	}
	if cfg.Output.Prefix == "" {
		cfg.Output.Prefix = "processed_"
	}
	if cfg.Output.ExtendedPrefix == "" {
		cfg.Output.ExtendedPrefix = "processed_extended_"
	}
	if cfg.Output.SheetName == "" {
		cfg.Output.SheetName = "Sheet1"
	}
}

// Validate checks option values that have a closed set of choices.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}

	if len([]rune(c.CSV.Delimiter)) != 1 && !isNamedDelimiter(c.CSV.Delimiter) {
		return fmt.Errorf("csv delimiter must be a single character, got %q", c.CSV.Delimiter)
	}

	if c.Output.Prefix == c.Output.ExtendedPrefix {
		return fmt.Errorf("output prefix and extended_prefix must differ")
	}

	return nil
}

func isNamedDelimiter(d string) bool {
	switch d {
	case "\\t", "tab", "TAB", "pipe", "PIPE", "semicolon", "comma":
		return true
	}
	return false
}
