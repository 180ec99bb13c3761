package crossfilter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

var (
	// ErrUnknownView is returned for operations on an unregistered view ID.
	ErrUnknownView = errors.New("unknown view")
	// ErrDuplicateView is returned when two views register the same ID.
	ErrDuplicateView = errors.New("duplicate view")
)

// View is a panel that renders a subset of the dataset.
type View interface {
	// ID returns the stable identifier the view registers under.
	ID() ViewID
	// Initialize is called once, with the view's initial subset and the
	// handle it uses to publish its own filter.
	Initialize(data []*artwork.Record, h *Handle)
	// Update is called with a fresh subset whenever a refresh reaches
	// the view.
	Update(data []*artwork.Record)
}

// Coordinator owns the filter registry for one dashboard and drives
// refreshes of its views. It is not safe for concurrent use; callers
// serialize interactions the way a UI event loop would.
type Coordinator struct {
	data     []*artwork.Record
	registry *Registry
	views    []View
	byID     map[ViewID]View
	started  bool
}

// NewCoordinator creates a coordinator over an immutable dataset.
func NewCoordinator(data []*artwork.Record) *Coordinator {
	return &Coordinator{
		data:     data,
		registry: NewRegistry(data),
		byID:     make(map[ViewID]View),
	}
}

// Data returns the full dataset.
func (c *Coordinator) Data() []*artwork.Record {
	return c.data
}

// Register adds a view. Views are initialized and refreshed in
// registration order.
func (c *Coordinator) Register(v View) (*Handle, error) {
	id := v.ID()
	if _, exists := c.byID[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateView, id)
	}
	c.views = append(c.views, v)
	c.byID[id] = v

	h := &Handle{c: c, id: id}
	if c.started {
		v.Initialize(c.FilteredFor(id), h)
	}
	return h, nil
}

// Start initializes every registered view with its subset.
func (c *Coordinator) Start() {
	if c.started {
		return
	}
	c.started = true

	for _, v := range c.views {
		id := v.ID()
		v.Initialize(c.FilteredFor(id), &Handle{c: c, id: id})
	}

	slog.Debug("Coordinator started", "views", len(c.views), "records", len(c.data))
}

// Views returns the registered view IDs in registration order.
func (c *Coordinator) Views() []ViewID {
	ids := make([]ViewID, len(c.views))
	for i, v := range c.views {
		ids[i] = v.ID()
	}
	return ids
}

// SetFilter replaces the predicate owned by id (nil clears it) and
// refreshes every view. There is no no-op detection.
func (c *Coordinator) SetFilter(id ViewID, p Predicate) error {
	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, id)
	}

	c.registry.Set(id, p)

	matched, active := c.registry.Matches(id)
	slog.Debug("Filter updated", "view", id, "active", active, "matched", matched)

	if c.started {
		c.RefreshAll()
	}
	return nil
}

// Active reports whether id currently owns a predicate.
func (c *Coordinator) Active(id ViewID) bool {
	return c.registry.Get(id) != nil
}

// ActiveViews returns the IDs that currently own a predicate.
func (c *Coordinator) ActiveViews() []ViewID {
	return c.registry.Active()
}

// FilteredFor returns the dataset filtered by every active predicate
// except the one owned by id. When no other view filters, the dataset
// slice itself is returned so callers can compare by identity.
func (c *Coordinator) FilteredFor(id ViewID) []*artwork.Record {
	return c.registry.Except(id)
}

// RefreshAll updates every view with its own subset.
func (c *Coordinator) RefreshAll() {
	for _, v := range c.views {
		v.Update(c.FilteredFor(v.ID()))
	}
	slog.Debug("Refreshed views", "views", len(c.views), "active_filters", len(c.registry.entries))
}

// Refresh updates a single view, used by views that page through their
// own static subset.
func (c *Coordinator) Refresh(id ViewID) error {
	v, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, id)
	}
	v.Update(c.FilteredFor(id))
	return nil
}

// Handle is the typed filter setter given to one view.
type Handle struct {
	c  *Coordinator
	id ViewID
}

// ID returns the view ID the handle publishes for.
func (h *Handle) ID() ViewID {
	return h.id
}

// Set publishes p as the view's filter. A nil p clears it.
func (h *Handle) Set(p Predicate) error {
	return h.c.SetFilter(h.id, p)
}

// Clear removes the view's filter.
func (h *Handle) Clear() error {
	return h.c.SetFilter(h.id, nil)
}

// Refresh re-delivers the view's current subset to itself.
func (h *Handle) Refresh() error {
	return h.c.Refresh(h.id)
}
