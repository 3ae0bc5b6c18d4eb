// Package api is the command-intake HTTP surface and push-channel bridge:
// a chi router serving directive/camera/alert/diagnostics REST endpoints
// plus gorilla/websocket handlers that re-stream the live-feed, analysis,
// system and alert channels to UI clients. Grounded on the teacher's
// cmd/hlsd/main.go router wiring (chi + chi/middleware stack, inline CORS,
// promhttp.Handler on /metrics) and internal/api/camera_handlers.go's
// respondJSON/respondError helper shape.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"

	"github.com/sentrywatch/vms/internal/camregistry"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/intake"
	"github.com/sentrywatch/vms/internal/metrics"
	"github.com/sentrywatch/vms/internal/supervisor"
)

// Server holds every collaborator the HTTP/WS surface depends on. All
// fields except Parser and Nats are required; Nats may be nil, in which
// case the live-feed/analysis/system streams serve an empty connection
// (the alerts stream works regardless, since it reads the Dispatcher
// in-process).
type Server struct {
	Registry    *directive.Registry
	Supervisor  *supervisor.Supervisor
	Dispatcher  *dispatch.Dispatcher
	Cameras     *camregistry.Registry
	Metrics     *metrics.Collector
	Parser      intake.Parser
	Nats        *nats.Conn
	StartedAt   time.Time
}

// New builds a Server with a default HeuristicParser if none is supplied.
func New(registry *directive.Registry, sup *supervisor.Supervisor, disp *dispatch.Dispatcher, cams *camregistry.Registry, m *metrics.Collector) *Server {
	return &Server{
		Registry:   registry,
		Supervisor: sup,
		Dispatcher: disp,
		Cameras:    cams,
		Metrics:    m,
		Parser:     intake.HeuristicParser{},
		StartedAt:  time.Now(),
	}
}

// WithNats attaches the NATS connection the push-channel bridges read
// from. Optional: a Server without one simply never bridges those
// subjects to websocket clients.
func (s *Server) WithNats(conn *nats.Conn) *Server {
	s.Nats = conn
	return s
}

// WithParser overrides the default HeuristicParser, e.g. with a real
// external NL command-parser client.
func (s *Server) WithParser(p intake.Parser) *Server {
	s.Parser = p
	return s
}

// Router builds the complete chi.Mux: middleware stack, health/metrics,
// then the REST and websocket route groups.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/directives", func(r chi.Router) {
		r.Post("/", s.createDirective)
		r.Get("/", s.listDirectives)
		r.Delete("/{id}", s.removeDirective)
	})

	r.Route("/cameras", func(r chi.Router) {
		r.Get("/", s.listCameras)
		r.Post("/{id}/start", s.startCamera)
		r.Post("/{id}/stop", s.stopCamera)
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", s.listAlerts)
		r.Post("/{id}/acknowledge", s.acknowledgeAlert)
		r.Get("/stream", s.streamAlerts)
	})

	r.Get("/diagnostics", s.diagnostics)

	r.Get("/stream/live-feed/{camera_id}", s.streamLiveFeed)
	r.Get("/stream/analysis/{camera_id}", s.streamAnalysis)
	r.Get("/stream/system", s.streamSystem)

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
