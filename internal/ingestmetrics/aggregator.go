package ingestmetrics

import (
	"math/big"
	"sort"

	"github.com/sirupsen/logrus"
)

// Aggregator groups records by GroupKey and computes per-group means.
type Aggregator interface {
	// Add assigns a record to its group.
	Add(rec MetricRecord)
	// Records returns how many records have been added.
	Records() int
	// Summaries returns one summary per group, sorted by key.
	Summaries() []GroupSummary
}

// group accumulates exact sums so the reported mean is rounded once.
type group struct {
	count int
	sums  [numCategories]big.Rat
}

// aggregator implements Aggregator interface
type aggregator struct {
	log     logrus.FieldLogger
	groups  map[GroupKey]*group
	records int
}

// NewAggregator creates a new aggregator
func NewAggregator(log logrus.FieldLogger) Aggregator {
	return &aggregator{
		log:    log.WithField("component", "ingestmetrics.aggregator"),
		groups: make(map[GroupKey]*group, 16),
	}
}

func (a *aggregator) Add(rec MetricRecord) {
	key := rec.Key()

	g, ok := a.groups[key]
	if !ok {
		g = &group{}
		a.groups[key] = g

		a.log.WithFields(logrus.Fields{
			"table": key.Table,
			"mode":  key.Mode,
			"op":    key.Op,
		}).Debug("new group")
	}

	var v big.Rat
	for _, c := range Categories {
		v.SetFloat64(rec.Timing(c))
		g.sums[c].Add(&g.sums[c], &v)
	}

	g.count++
	a.records++
}

func (a *aggregator) Records() int {
	return a.records
}

func (a *aggregator) Summaries() []GroupSummary {
	keys := make([]GroupKey, 0, len(a.groups))
	for k := range a.groups {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	summaries := make([]GroupSummary, 0, len(keys))

	for _, k := range keys {
		g := a.groups[k]
		summary := GroupSummary{Key: k, Count: g.count}

		n := new(big.Rat).SetInt64(int64(g.count))
		for _, c := range Categories {
			mean, _ := new(big.Rat).Quo(&g.sums[c], n).Float64()
			summary.setMean(c, mean)
		}

		summaries = append(summaries, summary)
	}

	a.log.WithFields(logrus.Fields{
		"records": a.records,
		"groups":  len(summaries),
	}).Debug("aggregated records")

	return summaries
}

func (s *GroupSummary) setMean(c Category, v float64) {
	switch c {
	case CategoryParse:
		s.Parse = v
	case CategoryBuild:
		s.Build = v
	case CategorySend:
		s.Send = v
	case CategoryWaitLSN:
		s.Wait = v
	case CategoryTotal:
		s.Total = v
	}
}

// Compile-time interface compliance check
var _ Aggregator = (*aggregator)(nil)
