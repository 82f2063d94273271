// Package report renders per-group ingest timing summaries to the console.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ethpandaops/ingest-metrics/internal/format"
	"github.com/ethpandaops/ingest-metrics/internal/ingestmetrics"
	"github.com/sirupsen/logrus"
)

const (
	// Title precedes the column header of a non-empty report.
	Title = "Averages by (table, mode, op):"
	// NoDataMessage is the whole report when no metrics lines were found.
	NoDataMessage = "No ingest_metrics lines found"
)

// Columns is the report header, in column order.
var Columns = []string{
	"table",
	"mode",
	"op",
	"count",
	"parse_ms",
	"build_ms",
	"send_ms",
	"wait_lsn_ms",
	"total_ms",
}

// Reporter writes group summaries to a writer.
type Reporter interface {
	Report(w io.Writer, summaries []ingestmetrics.GroupSummary) error
}

// Rows converts summaries into report cells, one row per summary in the given order.
func Rows(summaries []ingestmetrics.GroupSummary) [][]string {
	rows := make([][]string, 0, len(summaries))

	for _, s := range summaries {
		row := make([]string, 0, len(Columns))
		row = append(row, s.Key.Table, s.Key.Mode, s.Key.Op, format.Count(s.Count))

		for _, c := range ingestmetrics.Categories {
			row = append(row, format.Millis(s.Mean(c)))
		}

		rows = append(rows, row)
	}

	return rows
}

// tabReporter writes the plain tab-separated report.
type tabReporter struct {
	log logrus.FieldLogger
}

// NewTabReporter creates a reporter that emits tab-separated lines.
func NewTabReporter(log logrus.FieldLogger) Reporter {
	return &tabReporter{
		log: log.WithField("component", "report.tab"),
	}
}

func (r *tabReporter) Report(w io.Writer, summaries []ingestmetrics.GroupSummary) error {
	out := bufio.NewWriter(w)

	if len(summaries) == 0 {
		fmt.Fprintln(out, NoDataMessage)
	} else {
		fmt.Fprintln(out, Title)
		fmt.Fprintln(out, strings.Join(Columns, "\t"))

		for _, row := range Rows(summaries) {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.log.WithField("groups", len(summaries)).Debug("report written")

	return nil
}

// tableReporter writes the same report as a bordered console table.
type tableReporter struct {
	log      logrus.FieldLogger
	renderer Renderer
	colors   *ColorHelper
}

// NewTableReporter creates a reporter that renders summaries with the given table renderer.
func NewTableReporter(log logrus.FieldLogger, renderer Renderer, colors *ColorHelper) Reporter {
	return &tableReporter{
		log:      log.WithField("component", "report.table"),
		renderer: renderer,
		colors:   colors,
	}
}

func (r *tableReporter) Report(w io.Writer, summaries []ingestmetrics.GroupSummary) error {
	out := bufio.NewWriter(w)

	if len(summaries) == 0 {
		fmt.Fprintln(out, r.colors.Muted(NoDataMessage))
	} else {
		fmt.Fprint(out, r.colors.Header("▸ "+Title)+"\n\n")
		r.renderer.Render(out, Columns, Rows(summaries), WithColumnAlignment(columnAlignment()))
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.log.WithField("groups", len(summaries)).Debug("table report written")

	return nil
}

// columnAlignment left-aligns the key columns and right-aligns the numbers.
func columnAlignment() []int {
	alignment := make([]int, len(Columns))
	for i := range alignment {
		alignment[i] = AlignLeft
		if i >= 3 {
			alignment[i] = AlignRight
		}
	}

	return alignment
}

// Compile-time interface compliance checks
var (
	_ Reporter = (*tabReporter)(nil)
	_ Reporter = (*tableReporter)(nil)
)
