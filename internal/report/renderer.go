package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

// Column alignments accepted by WithColumnAlignment.
const (
	AlignLeft  = tablewriter.ALIGN_LEFT
	AlignRight = tablewriter.ALIGN_RIGHT
)

// Renderer draws bordered console tables.
type Renderer interface {
	Render(w io.Writer, headers []string, rows [][]string, opts ...RenderOption)
}

type renderer struct {
	log logrus.FieldLogger
}

// NewRenderer creates a new table renderer
func NewRenderer(log logrus.FieldLogger) Renderer {
	return &renderer{
		log: log.WithField("component", "report.renderer"),
	}
}

// RenderOption configures table rendering
type RenderOption func(*tablewriter.Table)

// WithColumnAlignment sets per-column alignment (use AlignLeft / AlignRight)
func WithColumnAlignment(alignment []int) RenderOption {
	return func(t *tablewriter.Table) {
		t.SetColumnAlignment(alignment)
	}
}

// boxStyle draws light box borders. Header names are column identifiers and
// are kept verbatim rather than upper-cased.
func boxStyle(t *tablewriter.Table) {
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("│")
	t.SetRowSeparator("─")
	t.SetHeaderLine(true)
	t.SetBorder(true)
}

func (r *renderer) Render(w io.Writer, headers []string, rows [][]string, opts ...RenderOption) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	boxStyle(table)

	for _, opt := range opts {
		opt(table)
	}

	table.AppendBulk(rows)
	table.Render()

	r.log.WithField("rows", len(rows)).Trace("rendered table")
}

// Compile-time interface compliance check
var _ Renderer = (*renderer)(nil)
