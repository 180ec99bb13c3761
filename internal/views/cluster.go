package views

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
	"github.com/lehigh-university-libraries/crossview/internal/grouping"
)

// ErrUnknownGroup is returned when toggling a key the cluster does not show.
var ErrUnknownGroup = errors.New("unknown group")

// Cluster groups the current subset by a categorical attribute, folding
// small categories into the "other" bucket. Clicking a legend entry
// toggles it in the filter.
type Cluster struct {
	handle    *crossfilter.Handle
	attr      artwork.Attribute
	threshold float64
	selection *grouping.Selection

	grouping *grouping.Grouping
	subset   int
}

// ClusterEntry is one legend row.
type ClusterEntry struct {
	grouping.LegendEntry
	Selected bool `json:"selected"`
}

// ClusterSnapshot is the rendered state of the cluster panel.
type ClusterSnapshot struct {
	Attribute artwork.Attribute `json:"attribute"`
	Legend    []ClusterEntry    `json:"legend"`
	OtherKeys []string          `json:"other_keys,omitempty"`
	Selected  []string          `json:"selected"`
	Records   int               `json:"records"`
}

// NewCluster creates the panel. An empty attr groups by movement; a
// non-positive threshold uses grouping.DefaultThreshold.
func NewCluster(attr artwork.Attribute, threshold float64) *Cluster {
	if attr == "" {
		attr = artwork.AttrMovement
	}
	return &Cluster{attr: attr, threshold: threshold, selection: grouping.NewSelection()}
}

func (c *Cluster) ID() crossfilter.ViewID { return ClusterID }

func (c *Cluster) Initialize(data []*artwork.Record, h *crossfilter.Handle) {
	c.handle = h
	c.Update(data)
}

func (c *Cluster) Update(data []*artwork.Record) {
	c.grouping = grouping.GroupByAttribute(data, c.attr, c.threshold)
	c.subset = len(data)
}

// Grouping returns the grouping of the current subset.
func (c *Cluster) Grouping() *grouping.Grouping {
	return c.grouping
}

// Toggle selects or deselects the group named key. Toggling the "other"
// bucket selects or deselects every category it holds; a single folded
// category may also be toggled on its own.
func (c *Cluster) Toggle(key string) error {
	if c.grouping == nil {
		return ErrNotInitialized
	}
	if !c.known(key) {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, key)
	}
	c.selection.ToggleGroup(c.grouping, key)
	return publish(c.handle, c.selection.Predicate(c.attr))
}

// known reports whether key is a group, a category folded into the
// "other" bucket, or already selected.
func (c *Cluster) known(key string) bool {
	if _, ok := c.grouping.Groups[key]; ok || c.selection.Has(key) {
		return true
	}
	return slices.Contains(c.grouping.OtherKeys, key)
}

// Reset deselects every group.
func (c *Cluster) Reset() error {
	c.selection.Clear()
	return publish(c.handle, nil)
}

// Selected reports whether key is selected.
func (c *Cluster) Selected(key string) bool {
	return c.selection.Has(key)
}

func (c *Cluster) Snapshot() any {
	snap := ClusterSnapshot{
		Attribute: c.attr,
		Selected:  c.selection.Keys(),
		Records:   c.subset,
	}
	if c.grouping != nil {
		for _, e := range c.grouping.Legend() {
			snap.Legend = append(snap.Legend, ClusterEntry{LegendEntry: e, Selected: c.selection.Has(e.Key)})
		}
		snap.OtherKeys = c.grouping.OtherKeys
	}
	return snap
}
