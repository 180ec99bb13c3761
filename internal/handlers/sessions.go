package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Filters   int       `json:"filters"`
}

// createRequest optionally overrides the session defaults.
type createRequest struct {
	Threshold        *float64 `json:"threshold,omitempty"`
	DropSingletons   *bool    `json:"drop_singletons,omitempty"`
	ClusterAttribute string   `json:"cluster_attribute,omitempty"`
	Bins             *int     `json:"bins,omitempty"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.List()
		sessionList := make([]SessionSummary, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, SessionSummary{
				ID:        session.ID,
				CreatedAt: session.CreatedAt,
				Filters:   len(session.Snapshot().Filters),
			})
		}
		h.writeJSON(w, sessionList)
	case "POST":
		h.createSession(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var request createRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts, err := h.options(request)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := dashboard.New(h.newSessionID(), h.data, opts)
	if err != nil {
		h.writeError(w, "Failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.sessionStore.Set(session.ID, session)

	slog.Info("Session created", "session_id", session.ID, "threshold", opts.Threshold, "cluster_attribute", opts.ClusterAttribute)

	h.writeJSONStatus(w, session.Snapshot(), http.StatusCreated)
}

func (h *Handler) options(request createRequest) (dashboard.Options, error) {
	opts := h.defaults
	if request.Threshold != nil {
		if *request.Threshold <= 0 || *request.Threshold >= 1 {
			return opts, fmt.Errorf("threshold must be between 0 and 1, got %v", *request.Threshold)
		}
		opts.Threshold = *request.Threshold
	}
	if request.DropSingletons != nil {
		opts.DropSingletons = *request.DropSingletons
	}
	if request.ClusterAttribute != "" {
		attr, ok := artwork.ParseAttribute(request.ClusterAttribute)
		if !ok {
			return opts, fmt.Errorf("unknown cluster_attribute %q", request.ClusterAttribute)
		}
		opts.ClusterAttribute = attr
	}
	if request.Bins != nil {
		if *request.Bins < 1 || *request.Bins > views.MaxBinCount {
			return opts, fmt.Errorf("bins must be between 1 and %d, got %d", views.MaxBinCount, *request.Bins)
		}
		opts.Bins = *request.Bins
	}
	return opts, nil
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, sub, _ := strings.Cut(path, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch sub {
	case "":
	case "actions":
		h.handleAction(w, r, session)
		return
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session.Snapshot())
	case "DELETE":
		h.sessionStore.Delete(sessionID)
		slog.Info("Session deleted", "session_id", sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAction applies one interaction. Unless images=false is given,
// the image of the artwork the detail panel ends up on is measured before
// responding.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, session *dashboard.Session) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var action dashboard.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, err := session.Apply(r.Context(), action)
	if err != nil {
		h.writeError(w, err.Error(), actionStatus(err))
		return
	}

	if r.URL.Query().Get("images") != "false" {
		applied, err := session.LoadImage(r.Context())
		switch {
		case errors.Is(err, dashboard.ErrNoImage):
		case err != nil:
			// the snapshot is still useful without image dimensions
			slog.Warn("Image metadata unavailable", "session_id", session.ID, "err", err)
		case applied:
			snapshot = session.Snapshot()
		}
	}

	h.writeJSON(w, snapshot)
}
