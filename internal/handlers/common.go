// Package handlers serves dashboard sessions over a JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/storage"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

type Handler struct {
	sessionStore *storage.SessionStore
	data         []*artwork.Record
	defaults     dashboard.Options
	seq          atomic.Uint64
}

// New creates a handler serving dashboards over data. defaults apply to
// every new session unless the create request overrides them.
func New(data []*artwork.Record, defaults dashboard.Options) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		data:         data,
		defaults:     defaults,
	}
}

// Routes registers the API on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*dashboard.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *Handler) newSessionID() string {
	return fmt.Sprintf("dashboard_%d_%d", time.Now().Unix(), h.seq.Add(1))
}

// actionStatus maps an Apply error to an HTTP status.
func actionStatus(err error) int {
	switch {
	case errors.Is(err, crossfilter.ErrUnknownView),
		errors.Is(err, dashboard.ErrUnknownAction),
		errors.Is(err, views.ErrUnknownGroup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
