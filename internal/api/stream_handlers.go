package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"github.com/sentrywatch/vms/internal/bus"
)

// upgrader allows any origin, matching the teacher's dev-mode WS upgrader
// (CORS is enforced at the REST layer; these are read-only fan-out
// streams with no mutating side effects).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// drainReads discards incoming client frames so the connection's read
// deadline never trips and a client-initiated close is observed. These
// streams are server-push only; nothing the client sends is acted on.
func drainReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// GET /alerts/stream — bridges dispatch.Dispatcher directly, no NATS
// round-trip needed since the API process and the dispatcher are the
// same process.
func (s *Server) streamAlerts(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := s.Dispatcher.Subscribe()
	defer sub.Close()

	go drainReads(conn)

	for a := range sub.Alerts {
		if err := conn.WriteJSON(a); err != nil {
			return
		}
	}
}

// GET /stream/live-feed/{camera_id}
func (s *Server) streamLiveFeed(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")
	s.bridgeNatsSubject(w, r, bus.LiveFeedSubject(cameraID))
}

// GET /stream/analysis/{camera_id}
func (s *Server) streamAnalysis(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")
	s.bridgeNatsSubject(w, r, bus.AnalysisSubject(cameraID))
}

// GET /stream/system
func (s *Server) streamSystem(w http.ResponseWriter, r *http.Request) {
	s.bridgeNatsSubject(w, r, bus.SubjectSystem)
}

// bridgeNatsSubject upgrades the connection then re-publishes every
// message received on subject as a websocket text frame, until either
// side closes. If no NATS connection is configured the socket is upgraded
// and immediately idle — a client sees a live connection with no frames,
// rather than a hard failure, since NATS is optional infrastructure.
func (s *Server) bridgeNatsSubject(w http.ResponseWriter, r *http.Request, subject string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	go drainReads(conn)

	if s.Nats == nil {
		<-r.Context().Done()
		return
	}

	msgs := make(chan *nats.Msg, 64)
	natsSub, err := s.Nats.ChanSubscribe(subject, msgs)
	if err != nil {
		log.Printf("api: nats subscribe %s failed: %v", subject, err)
		return
	}
	defer natsSub.Unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, m.Data); err != nil {
				return
			}
		}
	}
}
