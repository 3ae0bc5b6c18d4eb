package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/dispatch"
)

// GET /alerts?since=<RFC3339>&severity=<level>&limit=<n>
func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var since time.Time
	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = t
	}

	severity := decision.Severity(q.Get("severity"))

	limit := 100
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	matches := func(a *dispatch.Alert) bool {
		if !since.IsZero() && a.Timestamp.Before(since) {
			return false
		}
		if severity != "" && a.Severity != severity {
			return false
		}
		return true
	}

	respondJSON(w, http.StatusOK, s.Dispatcher.Query(matches, limit))
}

// POST /alerts/{id}/acknowledge
func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Dispatcher.Acknowledge(id) {
		respondError(w, http.StatusNotFound, "unknown alert")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
