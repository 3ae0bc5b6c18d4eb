package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentrywatch/vms/internal/directive"
)

// createDirectiveRequest is the POST /directives body: free text plus an
// optional camera scope. An empty CameraIDs means "all cameras" (§3).
type createDirectiveRequest struct {
	Text      string   `json:"text"`
	CameraIDs []string `json:"camera_ids,omitempty"`
}

type directiveResponse struct {
	DirectiveID      string `json:"directive_id"`
	Kind             string `json:"kind"`
	Target           string `json:"target"`
	RequiresBaseline bool   `json:"requires_baseline"`
	Action           string `json:"action"`
}

// POST /directives
func (s *Server) createDirective(w http.ResponseWriter, r *http.Request) {
	var req createDirectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed := s.Parser.Parse(req.Text)
	scope := directive.AllCameras()
	if len(req.CameraIDs) > 0 {
		scope = directive.ScopeFor(req.CameraIDs...)
	}

	d := directive.NewDirective(uuid.New().String(), directive.Kind(parsed.Kind), parsed.Target, scope)
	s.Supervisor.ProcessDirective(r.Context(), d, s.Cameras.IDs())

	respondJSON(w, http.StatusCreated, directiveResponse{
		DirectiveID:      d.ID,
		Kind:             string(d.Kind),
		Target:           d.Target,
		RequiresBaseline: d.RequiresBaseline,
		Action:           "created",
	})
}

// GET /directives
func (s *Server) listDirectives(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Registry.List())
}

// DELETE /directives/{id}
func (s *Server) removeDirective(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Supervisor.RemoveDirective(id) {
		respondError(w, http.StatusNotFound, "unknown directive")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
