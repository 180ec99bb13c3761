// Package crossfilter coordinates linked filtering between dashboard views.
//
// Every view may publish one predicate over the shared dataset. A view is
// always refreshed with the records that pass every other view's
// predicate, never its own, so a view cannot filter itself away.
package crossfilter

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

// ViewID identifies a view within one coordinator.
type ViewID string

// Predicate selects records. A nil Predicate means "no filter".
// Predicates must be total: they may not panic on any record.
type Predicate func(*artwork.Record) bool

type entry struct {
	pred    Predicate
	matches *roaring.Bitmap
}

// Registry maps view IDs to their active predicates. An absent entry and
// a nil predicate are the same thing.
//
// Because the dataset is immutable and predicates are pure, the set of
// matching positions is computed once when a predicate is installed and
// kept alongside it. Subsets handed out by Except are reused until the
// next Set, so repeated calls return the identical slice.
type Registry struct {
	data    []*artwork.Record
	entries map[ViewID]entry
	subsets map[ViewID][]*artwork.Record
}

// NewRegistry creates an empty registry over data.
func NewRegistry(data []*artwork.Record) *Registry {
	return &Registry{
		data:    data,
		entries: make(map[ViewID]entry),
		subsets: make(map[ViewID][]*artwork.Record),
	}
}

// Set replaces the predicate owned by id. A nil predicate removes it.
func (r *Registry) Set(id ViewID, p Predicate) {
	clear(r.subsets)
	if p == nil {
		delete(r.entries, id)
		return
	}

	matches := roaring.New()
	for i, rec := range r.data {
		if p(rec) {
			matches.Add(uint32(i))
		}
	}
	r.entries[id] = entry{pred: p, matches: matches}
}

// Get returns the predicate owned by id, or nil.
func (r *Registry) Get(id ViewID) Predicate {
	return r.entries[id].pred
}

// Active returns the IDs with an installed predicate, sorted.
func (r *Registry) Active() []ViewID {
	ids := make([]ViewID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Matches returns how many records pass the predicate owned by id.
func (r *Registry) Matches(id ViewID) (int, bool) {
	e, ok := r.entries[id]
	if !ok {
		return 0, false
	}
	return int(e.matches.GetCardinality()), true
}

// Except returns the records passing every predicate except the one
// owned by id, in dataset order. With no other predicate active it
// returns the dataset slice itself.
func (r *Registry) Except(id ViewID) []*artwork.Record {
	if subset, ok := r.subsets[id]; ok {
		return subset
	}

	var combined *roaring.Bitmap
	for owner, e := range r.entries {
		if owner == id {
			continue
		}
		if combined == nil {
			combined = e.matches.Clone()
			continue
		}
		combined.And(e.matches)
	}
	if combined == nil {
		return r.data
	}

	out := make([]*artwork.Record, 0, combined.GetCardinality())
	it := combined.Iterator()
	for it.HasNext() {
		out = append(out, r.data[it.Next()])
	}
	r.subsets[id] = out
	return out
}
