package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentrywatch/vms/internal/worker"
)

type cameraStatus struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// GET /cameras
func (s *Server) listCameras(w http.ResponseWriter, r *http.Request) {
	ids := s.Cameras.IDs()
	out := make([]cameraStatus, 0, len(ids))
	for _, id := range ids {
		entry, _ := s.Cameras.Get(id)
		state, ok := s.Supervisor.CameraState(id)
		if !ok {
			state = worker.StateStopped
		}
		out = append(out, cameraStatus{ID: id, Name: entry.Name, State: state.String()})
	}
	respondJSON(w, http.StatusOK, out)
}

// POST /cameras/{id}/start
func (s *Server) startCamera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Cameras.Get(id); !ok {
		respondError(w, http.StatusNotFound, "unknown camera")
		return
	}
	if err := s.Supervisor.StartCamera(r.Context(), id); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "action": "started"})
}

// POST /cameras/{id}/stop
func (s *Server) stopCamera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Cameras.Get(id); !ok {
		respondError(w, http.StatusNotFound, "unknown camera")
		return
	}
	s.Supervisor.StopCamera(id)
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "action": "stopped"})
}
