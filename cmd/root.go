// Package cmd contains CLI command definitions
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethpandaops/ingest-metrics/internal/config"
	"github.com/ethpandaops/ingest-metrics/internal/ingestmetrics"
	"github.com/ethpandaops/ingest-metrics/internal/report"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const usageLine = "Usage: ingest-metrics <log_file>"

// ErrUsage is returned when the log file argument is missing.
var ErrUsage = errors.New("log file argument is required")

type rootOptions struct {
	envFile string
	verbose bool
	pretty  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ingest-metrics <log_file>",
		Short: "Summarise ingest_metrics timings from a log file",
		Long: `Reads a log file, extracts every ingest_metrics line and prints the average
parse, build, send, wait_lsn and total timings (in milliseconds) per (table, mode, op).

Lines that do not carry a complete ingest_metrics record are skipped.

Use "--" before a path that starts with a dash:

  ingest-metrics -- -x.log`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				fmt.Fprintln(cmd.OutOrStdout(), usageLine)
				return ErrUsage
			}

			return runReport(opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().StringVar(&opts.envFile, "env", "", "env file to load (default .env if present)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "render the report as a bordered table")

	return rootCmd
}

// Execute runs the root command
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}

	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrUsage) {
			fmt.Fprintln(stderr, "Error:", err)
		}

		return 1
	}

	return 0
}

func runReport(opts *rootOptions, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg, opts.verbose, stderr)
	log.Debug(cfg.String())

	if cfg.EnvFileErr != nil {
		log.WithError(cfg.EnvFileErr).Warn("ignoring default env file")
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	path := args[0]
	if len(args) > 1 {
		log.WithField("ignored", args[1:]).Debug("ignoring extra arguments")
	}

	var (
		extractor  = ingestmetrics.NewExtractor(log)
		aggregator = ingestmetrics.NewAggregator(log)
	)

	err = extractor.ScanFile(path, func(rec ingestmetrics.MetricRecord) error {
		aggregator.Add(rec)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	log.WithField("records", aggregator.Records()).Debug("scan complete")

	reporter := report.NewTabReporter(log)
	if opts.pretty {
		reporter = report.NewTableReporter(log, report.NewRenderer(log), report.NewColorHelper())
	}

	return reporter.Report(stdout, aggregator.Summaries())
}
