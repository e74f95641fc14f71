// Package logging builds the logrus logger shared by all components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/sirupsen/logrus"
)

// New creates a logger writing to stderr with the configured level and format.
func New(cfg *config.Config) *logrus.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg *config.Config, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(ParseLevel(cfg.LogLevel))

	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// ParseLevel maps a config level name to a logrus level. Unknown names fall
// back to info.
func ParseLevel(name string) logrus.Level {
	switch strings.ToLower(name) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests and by
// library callers that do not care about diagnostics.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
