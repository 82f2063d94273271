package ingestmetrics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Marker is the token that introduces every metrics line.
const Marker = "ingest_metrics"

// readBufferSize is the initial read buffer; lines longer than this are still read whole.
const readBufferSize = 64 * 1024

var (
	// ErrFileAccess is returned when the log file cannot be opened or read.
	ErrFileAccess = errors.New("log file access failed")

	// ErrStopScan may be returned from a RecordFunc to end a scan early without error.
	ErrStopScan = errors.New("stop scan")
)

// token is a maximal run of non-whitespace. Unicode separators and the ASCII
// control characters that count as whitespace in log tooling are excluded too.
const token = `[^\s\v\x1c-\x1f\x85\p{Z}]+`

var linePattern = buildLinePattern()

// timingGroups maps each category to its submatch indexes for the ms and us variants.
var timingGroups = func() [numCategories][2]int {
	var groups [numCategories][2]int
	for _, c := range Categories {
		groups[c] = [2]int{
			linePattern.SubexpIndex(c.String() + "_ms"),
			linePattern.SubexpIndex(c.String() + "_us"),
		}
	}

	return groups
}()

var (
	tableGroup = linePattern.SubexpIndex("table")
	modeGroup  = linePattern.SubexpIndex("mode")
	opGroup    = linePattern.SubexpIndex("op")
)

func buildLinePattern() *regexp.Regexp {
	var b strings.Builder

	b.WriteString(regexp.QuoteMeta(Marker))
	b.WriteString(` table=(?P<table>` + token + `)`)
	b.WriteString(` mode=(?P<mode>` + token + `)`)
	b.WriteString(` op=(?P<op>` + token + `)`)

	for _, c := range Categories {
		name := c.String()
		fmt.Fprintf(&b, ` (?:%[1]s_ms=(?P<%[1]s_ms>[0-9]+)|%[1]s_us=(?P<%[1]s_us>[0-9]+))`, name)
	}

	return regexp.MustCompile(b.String())
}

// RecordFunc receives each record as it is extracted.
type RecordFunc func(rec MetricRecord) error

// Extractor pulls MetricRecords out of log text.
type Extractor interface {
	// ParseLine matches a single line. ok is false when the line is not a complete metrics record.
	ParseLine(line string) (rec MetricRecord, ok bool)
	// Scan reads r line by line and calls fn for every matching line.
	Scan(r io.Reader, fn RecordFunc) error
	// ScanFile opens path and scans it. The file is closed before ScanFile returns.
	ScanFile(path string, fn RecordFunc) error
}

type extractor struct {
	log logrus.FieldLogger
}

// NewExtractor creates a new line extractor.
func NewExtractor(log logrus.FieldLogger) Extractor {
	return &extractor{
		log: log.WithField("component", "ingestmetrics.extractor"),
	}
}

func (e *extractor) ParseLine(line string) (MetricRecord, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return MetricRecord{}, false
	}

	rec := MetricRecord{
		Table: m[tableGroup],
		Mode:  m[modeGroup],
		Op:    m[opGroup],
	}

	for _, c := range Categories {
		groups := timingGroups[c]

		v, err := Normalize(m[groups[0]], m[groups[1]])
		if err != nil {
			e.log.WithError(err).WithField("category", c.String()).Trace("dropping line with unusable timing")

			return MetricRecord{}, false
		}

		rec.setTiming(c, v)
	}

	return rec, true
}

func (e *extractor) Scan(r io.Reader, fn RecordFunc) error {
	reader := bufio.NewReaderSize(r, readBufferSize)

	var lineNo int

	for {
		chunk, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("%w: %w", ErrFileAccess, readErr)
		}

		if chunk != "" {
			// Malformed byte sequences are dropped, not replaced.
			chunk = strings.ToValidUTF8(chunk, "")

			// A bare carriage return also terminates a line.
			for _, line := range splitLines(chunk) {
				lineNo++

				rec, ok := e.ParseLine(line)
				if !ok {
					e.log.WithField("line", lineNo).Trace("skipping non-matching line")

					continue
				}

				if err := fn(rec); err != nil {
					if errors.Is(err, ErrStopScan) {
						return nil
					}

					return err
				}
			}
		}

		if readErr != nil {
			return nil
		}
	}
}

func (e *extractor) ScanFile(path string, fn RecordFunc) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer file.Close()

	e.log.WithField("path", path).Debug("scanning log file")

	return e.Scan(file, fn)
}

// splitLines splits one newline-terminated chunk into lines, treating "\r\n",
// "\n" and a lone "\r" as terminators. Terminators are not included.
func splitLines(chunk string) []string {
	chunk = strings.TrimSuffix(chunk, "\n")
	chunk = strings.TrimSuffix(chunk, "\r")

	if !strings.Contains(chunk, "\r") {
		return []string{chunk}
	}

	return strings.Split(chunk, "\r")
}

// Compile-time interface compliance check
var _ Extractor = (*extractor)(nil)
