// Package aggregate counts categorical values across artwork records.
package aggregate

import (
	"sort"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

// FrequencyTable maps a category value to the number of records holding
// it. Iteration order is unspecified; use Ranked for a stable order.
type FrequencyTable map[string]int

// Options controls aggregation.
type Options struct {
	// DropSingletons removes values that occur exactly once.
	DropSingletons bool
}

// Entry is one row of a ranked frequency table.
type Entry struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Aggregate counts attr across records. A multi-valued attribute adds one
// to every value a record holds, so a record with three depicted subjects
// increments three counters.
func Aggregate(records []*artwork.Record, attr artwork.Attribute, opts Options) FrequencyTable {
	counts, _ := count(records, attr)
	if opts.DropSingletons {
		for v, n := range counts {
			if n == 1 {
				delete(counts, v)
			}
		}
	}
	return counts
}

// Ranked aggregates attr and orders the result by count descending. Ties
// keep the order in which values were first encountered.
func Ranked(records []*artwork.Record, attr artwork.Attribute, opts Options) []Entry {
	counts, order := count(records, attr)

	entries := make([]Entry, 0, len(order))
	for _, v := range order {
		n := counts[v]
		if opts.DropSingletons && n == 1 {
			continue
		}
		entries = append(entries, Entry{Value: v, Count: n})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

// Total returns the sum of all counts in t.
func Total(t FrequencyTable) int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

func count(records []*artwork.Record, attr artwork.Attribute) (FrequencyTable, []string) {
	counts := make(FrequencyTable)
	var order []string
	for _, r := range records {
		for _, v := range r.Values(attr) {
			if counts[v] == 0 {
				order = append(order, v)
			}
			counts[v]++
		}
	}
	return counts, order
}
