package dashboard

import (
	"time"

	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// PanelState is what one panel currently shows.
type PanelState struct {
	// Active reports whether the panel owns a filter.
	Active bool `json:"active"`
	// Records is the size of the subset the panel renders.
	Records int `json:"records"`
	View    any `json:"view"`
}

// Snapshot is the state of every panel of a session.
type Snapshot struct {
	ID        string                            `json:"id"`
	CreatedAt time.Time                         `json:"created_at"`
	Records   int                               `json:"records"`
	Filters   []crossfilter.ViewID              `json:"filters"`
	Panels    map[crossfilter.ViewID]PanelState `json:"panels"`
}

// Snapshot returns the current state of every panel.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Records:   len(s.coordinator.Data()),
		Filters:   s.coordinator.ActiveViews(),
		Panels:    make(map[crossfilter.ViewID]PanelState, len(s.panels)),
	}
	for _, p := range s.panels {
		id := p.ID()
		snap.Panels[id] = PanelState{
			Active:  s.coordinator.Active(id),
			Records: len(s.coordinator.FilteredFor(id)),
			View:    p.Snapshot(),
		}
	}
	return snap
}
