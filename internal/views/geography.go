package views

import (
	"slices"

	"github.com/lehigh-university-libraries/crossview/internal/aggregate"
	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// Geography counts artworks by creator country. Clicking a country toggles
// it in the filter; hovering adds it to the filter until the pointer
// leaves.
type Geography struct {
	handle   *crossfilter.Handle
	selected []string
	hover    string

	counts aggregate.FrequencyTable
	ranked []aggregate.Entry
	domain [2]int
	subset int
}

// GeographySnapshot is the rendered state of the geography panel.
type GeographySnapshot struct {
	Countries []aggregate.Entry `json:"countries"`
	Selected  []string          `json:"selected"`
	Hover     string            `json:"hover,omitempty"`
	// Domain is the count extent over the full dataset, fixed for the
	// color scale.
	Domain  [2]int `json:"domain"`
	Records int    `json:"records"`
}

// NewGeography creates the panel. The color domain is taken from all.
func NewGeography(all []*artwork.Record) *Geography {
	g := &Geography{}
	first := true
	for _, n := range aggregate.Aggregate(all, artwork.AttrCountry, aggregate.Options{}) {
		if first {
			g.domain = [2]int{n, n}
			first = false
			continue
		}
		g.domain[0] = min(g.domain[0], n)
		g.domain[1] = max(g.domain[1], n)
	}
	return g
}

func (g *Geography) ID() crossfilter.ViewID { return GeographyID }

func (g *Geography) Initialize(data []*artwork.Record, h *crossfilter.Handle) {
	g.handle = h
	g.Update(data)
}

func (g *Geography) Update(data []*artwork.Record) {
	g.ranked = aggregate.Ranked(data, artwork.AttrCountry, aggregate.Options{})
	g.counts = make(aggregate.FrequencyTable, len(g.ranked))
	for _, e := range g.ranked {
		g.counts[e.Value] = e.Count
	}
	g.subset = len(data)
}

// Count returns how many artworks of the current subset come from country.
func (g *Geography) Count(country string) int {
	return g.counts[country]
}

// Toggle adds country to the selection, or removes it if present.
func (g *Geography) Toggle(country string) error {
	if i := slices.Index(g.selected, country); i >= 0 {
		g.selected = slices.Delete(g.selected, i, i+1)
	} else {
		g.selected = append(g.selected, country)
	}
	return g.publish()
}

// Hover marks country as hovered.
func (g *Geography) Hover(country string) error {
	g.hover = country
	return g.publish()
}

// Leave ends hovering over country.
func (g *Geography) Leave(country string) error {
	if g.hover == country {
		g.hover = ""
	}
	return g.publish()
}

// Reset clears the clicked selection. A hovered country stays.
func (g *Geography) Reset() error {
	g.selected = nil
	return g.publish()
}

func (g *Geography) publish() error {
	if len(g.selected) == 0 && g.hover == "" {
		return publish(g.handle, nil)
	}

	countries := slices.Clone(g.selected)
	if g.hover != "" {
		countries = append([]string{g.hover}, countries...)
	}
	return publish(g.handle, func(r *artwork.Record) bool {
		return slices.Contains(countries, r.Country)
	})
}

func (g *Geography) Snapshot() any {
	return GeographySnapshot{
		Countries: g.ranked,
		Selected:  slices.Clone(g.selected),
		Hover:     g.hover,
		Domain:    g.domain,
		Records:   g.subset,
	}
}
