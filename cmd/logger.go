package cmd

import (
	"fmt"
	"io"

	"github.com/ethpandaops/ingest-metrics/internal/config"
	"github.com/sirupsen/logrus"
)

// newLogger creates a logger writing to out with the level from cfg.
// If verbose is true, the level is raised to at least DebugLevel.
func newLogger(cfg *config.Config, verbose bool, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		// Can't use the logger here since its level isn't set yet
		fmt.Fprintf(out, "Invalid LOG_LEVEL '%s', defaulting to '%s'\n", cfg.LogLevel, config.DefaultLogLevel)
		level = logrus.WarnLevel
	}

	if verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	log.SetLevel(level)

	return log
}
