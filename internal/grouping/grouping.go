// Package grouping partitions records by a categorical attribute and folds
// the long tail of small categories into a single "other" bucket.
package grouping

import (
	"log/slog"
	"sort"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

// OtherKey names the synthetic bucket. A real category with the same
// name is always folded into the bucket.
const OtherKey = "Other"

// DefaultThreshold is the fraction of the record count at or below which
// a category is folded into the "other" bucket.
const DefaultThreshold = 1.0 / 20

// Membership pairs a record with one of its values for the grouped
// attribute. A record with k values yields k memberships.
type Membership struct {
	Record *artwork.Record
	Value  string
	Other  bool
}

// Group is a named set of memberships. For the "other" bucket, Keys lists
// the original categories it subsumes.
type Group struct {
	Key     string
	Members []Membership
	Other   bool
	Keys    []string
}

// Records returns the distinct records of the group in membership order.
func (g *Group) Records() []*artwork.Record {
	seen := make(map[*artwork.Record]struct{}, len(g.Members))
	out := make([]*artwork.Record, 0, len(g.Members))
	for _, m := range g.Members {
		if _, ok := seen[m.Record]; ok {
			continue
		}
		seen[m.Record] = struct{}{}
		out = append(out, m.Record)
	}
	return out
}

// Grouping is the result of GroupByAttribute.
type Grouping struct {
	Attribute artwork.Attribute
	Threshold float64
	Records   int

	// Groups maps a group key to its group, including OtherKey when
	// any category was folded.
	Groups map[string]*Group
	// OtherKeys lists the folded categories in first-encounter order.
	OtherKeys []string

	order []string
}

// LegendEntry is one row of a grouping legend.
type LegendEntry struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
	Other bool   `json:"other,omitempty" yaml:"other,omitempty"`
}

// GroupByAttribute explodes records into memberships of attr, partitions
// them by value and folds every group with at most
// len(records)*threshold members into the "other" bucket. A non-positive
// threshold uses DefaultThreshold.
//
// Which categories are folded depends only on their counts.
func GroupByAttribute(records []*artwork.Record, attr artwork.Attribute, threshold float64) *Grouping {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	g := &Grouping{
		Attribute: attr,
		Threshold: threshold,
		Records:   len(records),
		Groups:    make(map[string]*Group),
	}

	var values []string
	partitions := make(map[string][]Membership)
	for _, r := range records {
		for _, v := range r.Values(attr) {
			if _, ok := partitions[v]; !ok {
				values = append(values, v)
			}
			partitions[v] = append(partitions[v], Membership{Record: r, Value: v})
		}
	}

	cutoff := float64(len(records)) * threshold
	var other *Group
	for _, v := range values {
		members := partitions[v]
		if float64(len(members)) > cutoff && v != OtherKey {
			g.Groups[v] = &Group{Key: v, Members: members}
			g.order = append(g.order, v)
			continue
		}

		if other == nil {
			other = &Group{Key: OtherKey, Other: true}
			g.Groups[OtherKey] = other
			g.order = append(g.order, OtherKey)
		}
		for _, m := range members {
			m.Other = true
			other.Members = append(other.Members, m)
		}
		other.Keys = append(other.Keys, v)
	}
	if other != nil {
		g.OtherKeys = other.Keys
	}

	slog.Debug("Grouped records",
		"attribute", attr,
		"records", len(records),
		"categories", len(values),
		"groups", len(g.Groups),
		"folded", len(g.OtherKeys))

	return g
}

// IsOther reports whether key names the "other" bucket of this grouping.
func (g *Grouping) IsOther(key string) bool {
	grp, ok := g.Groups[key]
	return ok && grp.Other
}

// Keys returns group keys in first-encounter order.
func (g *Grouping) Keys() []string {
	return append([]string(nil), g.order...)
}

// Legend returns the groups ordered by member count descending, ties
// broken by first encounter.
func (g *Grouping) Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(g.order))
	for _, k := range g.order {
		grp := g.Groups[k]
		entries = append(entries, LegendEntry{Key: k, Count: len(grp.Members), Other: grp.Other})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
