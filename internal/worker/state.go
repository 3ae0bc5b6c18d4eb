// Package worker implements CameraWorker: the per-camera ingest loop that
// pulls frames, runs them through the vision/reasoning/decision pipeline,
// and dispatches or collects the result.
package worker

import "sync/atomic"

// State is one point in the CameraWorker lifecycle.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// stateBox is an atomically-readable/writable State, so API handlers can
// report a worker's current state without taking any lock the ingest
// goroutine might hold.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() State      { return State(b.v.Load()) }
func (b *stateBox) store(s State)    { b.v.Store(int32(s)) }
func (b *stateBox) cas(old, next State) bool {
	return b.v.CompareAndSwap(int32(old), int32(next))
}
