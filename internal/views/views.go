// Package views holds the dashboard panels. Each panel renders a subset of
// the dataset into a JSON-ready snapshot and, for the interactive ones,
// publishes its own filter through a crossfilter.Handle.
package views

import (
	"errors"
	"strings"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// Panel identifiers.
const (
	GeographyID crossfilter.ViewID = "geography"
	TimelineID  crossfilter.ViewID = "timeline"
	TreemapID   crossfilter.ViewID = "treemap"
	ClusterID   crossfilter.ViewID = "cluster"
	DetailID    crossfilter.ViewID = "detail"
)

// ErrNotInitialized is returned when an interaction reaches a panel that
// has not been started by its coordinator.
var ErrNotInitialized = errors.New("view not initialized")

// Panel is a view that can describe its current state.
type Panel interface {
	crossfilter.View
	Snapshot() any
}

// Unknown is shown in place of blank values.
const Unknown = "Unknown"

func orUnknown(s string) string {
	if artwork.IsBlank(s) {
		return Unknown
	}
	return s
}

func joinOrUnknown(values []string) string {
	if len(values) == 0 {
		return Unknown
	}
	return strings.Join(values, ", ")
}

func publish(h *crossfilter.Handle, p crossfilter.Predicate) error {
	if h == nil {
		return ErrNotInitialized
	}
	return h.Set(p)
}
