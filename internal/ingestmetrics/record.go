// Package ingestmetrics extracts ingest_metrics timing records from pipeline logs
// and summarises them per (table, mode, op).
package ingestmetrics

// Category identifies one of the timing breakdowns carried by an ingest_metrics line.
type Category int

const (
	// CategoryParse is the time spent decoding the incoming payload.
	CategoryParse Category = iota
	// CategoryBuild is the time spent building rows.
	CategoryBuild
	// CategorySend is the time spent handing rows to the table handler.
	CategorySend
	// CategoryWaitLSN is the time spent waiting for the LSN to be acknowledged.
	CategoryWaitLSN
	// CategoryTotal is the end-to-end time of the operation.
	CategoryTotal

	numCategories = int(CategoryTotal) + 1
)

// Categories lists every timing category in line order.
var Categories = [numCategories]Category{
	CategoryParse,
	CategoryBuild,
	CategorySend,
	CategoryWaitLSN,
	CategoryTotal,
}

var categoryNames = [numCategories]string{"parse", "build", "send", "wait_lsn", "total"}

// String returns the field prefix used for the category in log lines.
func (c Category) String() string {
	if c < 0 || int(c) >= numCategories {
		return "unknown"
	}

	return categoryNames[c]
}

// GroupKey is the (table, mode, op) triple records are bucketed by.
type GroupKey struct {
	Table string
	Mode  string
	Op    string
}

// Less orders keys lexicographically by table, then mode, then op.
func (k GroupKey) Less(other GroupKey) bool {
	if k.Table != other.Table {
		return k.Table < other.Table
	}
	if k.Mode != other.Mode {
		return k.Mode < other.Mode
	}

	return k.Op < other.Op
}

// MetricRecord is one parsed ingest_metrics line. Timings are in milliseconds.
type MetricRecord struct {
	Table string
	Mode  string
	Op    string

	Parse float64
	Build float64
	Send  float64
	Wait  float64
	Total float64
}

// Key returns the grouping key of the record.
func (r MetricRecord) Key() GroupKey {
	return GroupKey{Table: r.Table, Mode: r.Mode, Op: r.Op}
}

// Timing returns the millisecond value recorded for a category.
func (r MetricRecord) Timing(c Category) float64 {
	switch c {
	case CategoryParse:
		return r.Parse
	case CategoryBuild:
		return r.Build
	case CategorySend:
		return r.Send
	case CategoryWaitLSN:
		return r.Wait
	case CategoryTotal:
		return r.Total
	default:
		return 0
	}
}

func (r *MetricRecord) setTiming(c Category, v float64) {
	switch c {
	case CategoryParse:
		r.Parse = v
	case CategoryBuild:
		r.Build = v
	case CategorySend:
		r.Send = v
	case CategoryWaitLSN:
		r.Wait = v
	case CategoryTotal:
		r.Total = v
	}
}

// GroupSummary holds the record count and per-category mean timings of one group.
type GroupSummary struct {
	Key   GroupKey
	Count int

	Parse float64
	Build float64
	Send  float64
	Wait  float64
	Total float64
}

// Mean returns the mean millisecond value of a category within the group.
func (s GroupSummary) Mean(c Category) float64 {
	switch c {
	case CategoryParse:
		return s.Parse
	case CategoryBuild:
		return s.Build
	case CategorySend:
		return s.Send
	case CategoryWaitLSN:
		return s.Wait
	case CategoryTotal:
		return s.Total
	default:
		return 0
	}
}
