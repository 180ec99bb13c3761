package grouping

import (
	"sort"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// Selection is the set of group keys the user has selected. Selecting the
// "other" bucket also selects every category it subsumes.
type Selection struct {
	keys map[string]struct{}
	// subsumed holds, per selected bucket, the keys its selection added.
	subsumed map[string][]string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{keys: make(map[string]struct{}), subsumed: make(map[string][]string)}
}

// Toggle flips key. Selecting the "other" bucket adds the bucket key and
// all of otherKeys together. Deselecting a bucket removes exactly the keys
// its selection added, even if the grouping has changed since. The new
// key set replaces the old one in a single assignment.
func (s *Selection) Toggle(key string, isOther bool, otherKeys []string) {
	_, selected := s.keys[key]

	next := make(map[string]struct{}, len(s.keys)+len(otherKeys)+1)
	for k := range s.keys {
		next[k] = struct{}{}
	}
	subsumed := make(map[string][]string, len(s.subsumed)+1)
	for k, v := range s.subsumed {
		subsumed[k] = v
	}

	if selected {
		delete(next, key)
		for _, k := range subsumed[key] {
			delete(next, k)
		}
		delete(subsumed, key)
	} else {
		next[key] = struct{}{}
		if isOther {
			for _, k := range otherKeys {
				next[k] = struct{}{}
			}
			subsumed[key] = append([]string(nil), otherKeys...)
		}
	}

	s.keys, s.subsumed = next, subsumed
}

// ToggleGroup flips the group named key of g.
func (s *Selection) ToggleGroup(g *Grouping, key string) {
	s.Toggle(key, g.IsOther(key), g.OtherKeys)
}

// Has reports whether key is selected.
func (s *Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of selected keys.
func (s *Selection) Len() int {
	return len(s.keys)
}

// Keys returns the selected keys, sorted.
func (s *Selection) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.keys = make(map[string]struct{})
	s.subsumed = make(map[string][]string)
}

// Predicate builds the filter for the current selection: a record passes
// if any of its attr values is selected. An empty selection yields nil,
// meaning no filter. The predicate keeps a copy of the keys, so later
// toggles do not change it.
func (s *Selection) Predicate(attr artwork.Attribute) crossfilter.Predicate {
	if len(s.keys) == 0 {
		return nil
	}
	keys := make(map[string]struct{}, len(s.keys))
	for k := range s.keys {
		keys[k] = struct{}{}
	}
	return func(r *artwork.Record) bool {
		return r.HasValue(attr, keys)
	}
}
