package api

import (
	"net/http"
	"time"

	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/worker"
)

type diagnosticsResponse struct {
	UptimeSeconds   float64               `json:"uptime_seconds"`
	Cameras         []cameraStatus        `json:"cameras"`
	TotalDrops      uint64                `json:"total_drops"`
	SubscriberCount int                   `json:"subscriber_count"`
	Subscribers     []dispatch.SubscriberStat `json:"subscribers"`
}

// GET /diagnostics
func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	ids := s.Cameras.IDs()
	cams := make([]cameraStatus, 0, len(ids))
	for _, id := range ids {
		entry, _ := s.Cameras.Get(id)
		state, ok := s.Supervisor.CameraState(id)
		if !ok {
			state = worker.StateStopped
		}
		cams = append(cams, cameraStatus{ID: id, Name: entry.Name, State: state.String()})
	}

	respondJSON(w, http.StatusOK, diagnosticsResponse{
		UptimeSeconds:   time.Since(s.StartedAt).Seconds(),
		Cameras:         cams,
		TotalDrops:      s.Dispatcher.TotalDrops(),
		SubscriberCount: s.Dispatcher.SubscriberCount(),
		Subscribers:     s.Dispatcher.Snapshot(),
	})
}
