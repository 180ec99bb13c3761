package views

import (
	"github.com/lehigh-university-libraries/crossview/internal/aggregate"
	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// Treemap shows what the artworks of the current subset depict. It never
// filters.
type Treemap struct {
	opts    aggregate.Options
	entries []aggregate.Entry
	total   int
	subset  int
}

// TreemapSnapshot is the rendered state of the treemap panel.
type TreemapSnapshot struct {
	Subjects []aggregate.Entry `json:"subjects"`
	Total    int               `json:"total"`
	Records  int               `json:"records"`
}

func NewTreemap(opts aggregate.Options) *Treemap {
	return &Treemap{opts: opts}
}

func (t *Treemap) ID() crossfilter.ViewID { return TreemapID }

func (t *Treemap) Initialize(data []*artwork.Record, _ *crossfilter.Handle) {
	t.Update(data)
}

func (t *Treemap) Update(data []*artwork.Record) {
	t.entries = aggregate.Ranked(data, artwork.AttrDepicts, t.opts)
	t.total = 0
	for _, e := range t.entries {
		t.total += e.Count
	}
	t.subset = len(data)
}

// Entries returns the ranked subject counts.
func (t *Treemap) Entries() []aggregate.Entry {
	return t.entries
}

func (t *Treemap) Snapshot() any {
	return TreemapSnapshot{Subjects: t.entries, Total: t.total, Records: t.subset}
}
