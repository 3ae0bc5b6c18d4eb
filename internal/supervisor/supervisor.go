// Package supervisor wires DirectiveRegistry, CameraWorker and
// AlertDispatcher together: accepting directives, starting/stopping
// cameras, and coordinating shutdown.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/worker"
)

// ShutdownGrace is the ceiling Shutdown waits for every worker to reach
// STOPPED before moving on regardless.
const ShutdownGrace = 5 * time.Second

// CameraFactory builds a new, unstarted Worker for cameraID. Supervisor
// calls it at most once per camera id over its lifetime — a camera is
// never rebuilt, only started and stopped.
type CameraFactory func(cameraID string) *worker.Worker

// Supervisor is the single place that knows about every camera and
// every active directive.
type Supervisor struct {
	registry   *directive.Registry
	dispatcher *dispatch.Dispatcher
	newWorker  CameraFactory

	mu          sync.Mutex
	workers     map[string]*worker.Worker
	autoStarted map[string]bool
}

func New(registry *directive.Registry, dispatcher *dispatch.Dispatcher, newWorker CameraFactory) *Supervisor {
	return &Supervisor{
		registry:    registry,
		dispatcher:  dispatcher,
		newWorker:   newWorker,
		workers:     make(map[string]*worker.Worker),
		autoStarted: make(map[string]bool),
	}
}

// KnownCameraIDs returns every camera id a worker has been created for.
func (s *Supervisor) KnownCameraIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	return ids
}

// CameraState reports the current state of cameraID, or worker.StateStopped
// with ok=false if no worker has ever been created for it.
func (s *Supervisor) CameraState(cameraID string) (state worker.State, ok bool) {
	s.mu.Lock()
	w, exists := s.workers[cameraID]
	s.mu.Unlock()
	if !exists {
		return worker.StateStopped, false
	}
	return w.State(), true
}

// ProcessDirective stores d in the registry and auto-starts every STOPPED
// camera in its scope, then publishes a directive_accepted system alert.
// Re-processing the same directive id is a no-op on the registry (Add
// overwrites in place) and never double-starts a running camera.
func (s *Supervisor) ProcessDirective(ctx context.Context, d *directive.Directive, knownCameraIDs []string) {
	s.registry.Add(d)

	for _, cameraID := range knownCameraIDs {
		if !d.CameraScope.Matches(cameraID) {
			continue
		}
		state, exists := s.CameraState(cameraID)
		if exists && state != worker.StateStopped && state != worker.StateFailed {
			continue
		}
		if err := s.StartCamera(ctx, cameraID); err == nil {
			s.mu.Lock()
			s.autoStarted[cameraID] = true
			s.mu.Unlock()
		}
	}

	s.dispatcher.Publish(&dispatch.Alert{
		Severity:  decision.SeverityInfo,
		Kind:      dispatch.AlertKindSystem,
		Title:     "Directive accepted",
		Message:   fmt.Sprintf("%s: %s", d.Kind, d.Target),
		Timestamp: time.Now(),
		Reasons:   []string{"directive_accepted"},
		Source:    decision.SourceAggregator,
	})
}

// StartCamera is idempotent: starting an already-RUNNING camera is a
// no-op.
func (s *Supervisor) StartCamera(ctx context.Context, cameraID string) error {
	s.mu.Lock()
	w, exists := s.workers[cameraID]
	if !exists {
		w = s.newWorker(cameraID)
		s.workers[cameraID] = w
	}
	s.mu.Unlock()
	return w.Start(ctx)
}

// StopCamera is idempotent: stopping an already-STOPPED camera is a
// no-op. A manually-stopped camera is no longer considered auto-started.
func (s *Supervisor) StopCamera(cameraID string) {
	s.mu.Lock()
	w, exists := s.workers[cameraID]
	delete(s.autoStarted, cameraID)
	s.mu.Unlock()
	if exists {
		w.Stop()
	}
}

// RemoveDirective deletes id from the registry, then stops any camera in
// its scope that now has no remaining active directive — but only if
// that camera was auto-started by a directive, never one the operator
// started by hand.
func (s *Supervisor) RemoveDirective(id string) bool {
	d, ok := s.registry.Get(id)
	if !ok {
		return false
	}
	s.registry.Remove(id)

	s.mu.Lock()
	candidates := make([]string, 0, len(s.workers))
	for cameraID := range s.workers {
		if d.CameraScope.Matches(cameraID) && s.autoStarted[cameraID] {
			candidates = append(candidates, cameraID)
		}
	}
	s.mu.Unlock()

	for _, cameraID := range candidates {
		if len(s.registry.ListForCamera(cameraID)) == 0 {
			s.StopCamera(cameraID)
		}
	}
	return true
}

// Shutdown stops every worker and waits up to ShutdownGrace for each to
// report STOPPED before returning regardless.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	workers := make([]*worker.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}

	deadline := time.Now().Add(ShutdownGrace)
	for _, w := range workers {
		if w.State() == worker.StateStopped {
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		timer := time.NewTimer(remaining)
		select {
		case <-w.Done():
			timer.Stop()
		case <-timer.C:
			return
		}
	}
}
