// Package dashboard assembles the five linked panels over one dataset and
// applies user interactions to them one at a time.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/crossview/internal/aggregate"
	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
	"github.com/lehigh-university-libraries/crossview/internal/images"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

var (
	// ErrUnknownAction is returned for an action kind the target panel
	// does not support.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoImage is returned by LoadImage when the shown artwork needs no
	// image metadata.
	ErrNoImage = errors.New("no image to load")
)

// Options configures a Session.
type Options struct {
	// Threshold is the "other" bucket fraction of the cluster panel.
	Threshold float64
	// DropSingletons hides subjects depicted only once in the treemap.
	DropSingletons bool
	// ClusterAttribute is the attribute the cluster panel groups by.
	ClusterAttribute artwork.Attribute
	// Bins is the approximate number of timeline bins.
	Bins int
	// Fetcher measures images for the detail panel. Nil disables
	// LoadImage.
	Fetcher *images.Fetcher
}

// Session is one dashboard. All interactions are serialized by its mutex,
// which stands in for a UI event loop.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	coordinator *crossfilter.Coordinator
	fetcher     *images.Fetcher
	cancelFetch context.CancelFunc

	Geography *views.Geography
	Timeline  *views.Timeline
	Treemap   *views.Treemap
	Cluster   *views.Cluster
	Detail    *views.Detail

	panels []views.Panel
}

// New builds a session over data and starts its coordinator.
func New(id string, data []*artwork.Record, opts Options) (*Session, error) {
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		coordinator: crossfilter.NewCoordinator(data),
		fetcher:     opts.Fetcher,
		Geography:   views.NewGeography(data),
		Timeline:    views.NewTimeline(data, opts.Bins),
		Treemap:     views.NewTreemap(aggregate.Options{DropSingletons: opts.DropSingletons}),
		Cluster:     views.NewCluster(opts.ClusterAttribute, opts.Threshold),
		Detail:      views.NewDetail(),
	}
	s.panels = []views.Panel{s.Geography, s.Timeline, s.Treemap, s.Cluster, s.Detail}

	for _, p := range s.panels {
		if _, err := s.coordinator.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register %s panel: %w", p.ID(), err)
		}
	}
	s.coordinator.Start()

	slog.Info("Dashboard session created", "session_id", id, "records", len(data), "panels", len(s.panels))

	return s, nil
}

// Coordinator exposes the session's coordinator.
func (s *Session) Coordinator() *crossfilter.Coordinator {
	return s.coordinator
}

// Apply performs action and returns the resulting snapshot.
func (s *Session) Apply(ctx context.Context, action Action) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.apply(action); err != nil {
		return Snapshot{}, fmt.Errorf("failed to apply %s to %s: %w", action.Kind, action.View, err)
	}

	slog.Debug("Action applied", "session_id", s.ID, "kind", action.Kind, "view", action.View, "key", action.Key)

	return s.snapshot(), nil
}

func (s *Session) apply(a Action) error {
	switch a.View {
	case views.GeographyID:
		switch a.Kind {
		case ActionToggle:
			return s.Geography.Toggle(a.Key)
		case ActionHover:
			return s.Geography.Hover(a.Key)
		case ActionLeave:
			return s.Geography.Leave(a.Key)
		case ActionReset, ActionClear:
			return s.Geography.Reset()
		}
	case views.TimelineID:
		switch a.Kind {
		case ActionBrush:
			return s.Timeline.Brush(a.Lo, a.Hi)
		case ActionClear, ActionReset:
			return s.Timeline.ClearBrush()
		}
	case views.ClusterID:
		switch a.Kind {
		case ActionToggle:
			return s.Cluster.Toggle(a.Key)
		case ActionReset, ActionClear:
			return s.Cluster.Reset()
		}
	case views.DetailID:
		switch a.Kind {
		case ActionNext:
			return s.Detail.Next()
		case ActionPrev:
			return s.Detail.Prev()
		}
	case views.TreemapID:
	default:
		return fmt.Errorf("%w: %s", crossfilter.ErrUnknownView, a.View)
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, a.Kind)
}

// LoadImage measures the image of the artwork the detail panel shows. A
// fetch still running for an earlier artwork is canceled, and a result
// that arrives after the panel moved on is discarded; the returned bool
// reports whether the metadata was applied.
func (s *Session) LoadImage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.fetcher == nil {
		s.mu.Unlock()
		return false, ErrNoImage
	}
	req, ok := s.Detail.PendingImage()
	if !ok {
		s.mu.Unlock()
		return false, ErrNoImage
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.mu.Unlock()

	defer cancel()
	meta, err := s.fetcher.FetchMeta(fetchCtx, req.URL)
	if err != nil {
		slog.Warn("Failed to load image metadata", "session_id", s.ID, "url", req.URL, "err", err)
		return false, fmt.Errorf("failed to load image metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.Detail.ApplyImage(req, meta)
	if !applied {
		slog.Debug("Discarded stale image metadata", "session_id", s.ID, "url", req.URL)
	}
	return applied, nil
}

// Close cancels any running image fetch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
}
