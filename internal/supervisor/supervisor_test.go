package supervisor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/supervisor"
	"github.com/sentrywatch/vms/internal/vision"
	"github.com/sentrywatch/vms/internal/worker"
)

func newTestSupervisor(t *testing.T) (*supervisor.Supervisor, *directive.Registry) {
	registry := directive.NewRegistry()
	disp := dispatch.NewDispatcher(50)
	frameRoot := t.TempDir()

	newWorker := func(cameraID string) *worker.Worker {
		src := frame.NewMockSource(cameraID, 50)
		store := frame.NewStore(frameRoot)
		return worker.New(worker.Config{
			CameraID:        cameraID,
			Cadence:         20 * time.Millisecond,
			RetryBudget:     frame.RetryBudget{Base: time.Millisecond, Cap: time.Millisecond, MaxAttempts: 1},
			Thresholds:      decision.DefaultThresholds(),
			HistoryWindow:   8,
			StabilityFrames: 3,
			SummaryInterval: time.Hour,
		}, src, store, registry, &vision.ScriptedClient{}, nil, disp)
	}

	return supervisor.New(registry, disp, newWorker), registry
}

func waitForState(t *testing.T, sup *supervisor.Supervisor, cameraID string, want worker.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state, ok := sup.CameraState(cameraID); ok && state == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("camera %s never reached state %s", cameraID, want)
}

func TestSupervisor_ProcessDirectiveAutoStartsScopedCamera(t *testing.T) {
	sup, registry := newTestSupervisor(t)
	d := directive.NewDirective("d1", directive.KindSurveillance, "watch the lobby", directive.ScopeFor("cam-1"))

	sup.ProcessDirective(context.Background(), d, []string{"cam-1", "cam-2"})

	waitForState(t, sup, "cam-1", worker.StateRunning)
	_, ok := sup.CameraState("cam-2")
	assert.False(t, ok, "camera out of scope must not be auto-started")

	_, ok = registry.Get("d1")
	assert.True(t, ok)
}

func TestSupervisor_StartCameraIsIdempotent(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	assert.NoError(t, sup.StartCamera(context.Background(), "cam-1"))
	waitForState(t, sup, "cam-1", worker.StateRunning)
	assert.NoError(t, sup.StartCamera(context.Background(), "cam-1"))

	state, ok := sup.CameraState("cam-1")
	assert.True(t, ok)
	assert.Equal(t, worker.StateRunning, state)
}

func TestSupervisor_StopCameraOnStoppedIsNoop(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	sup.StopCamera("never-started")
}

func TestSupervisor_RemoveDirectiveOnlyStopsAutoStartedCameras(t *testing.T) {
	sup, registry := newTestSupervisor(t)

	assert.NoError(t, sup.StartCamera(context.Background(), "cam-manual"))
	waitForState(t, sup, "cam-manual", worker.StateRunning)

	d := directive.NewDirective("d1", directive.KindSurveillance, "watch everything", directive.AllCameras())
	sup.ProcessDirective(context.Background(), d, []string{"cam-manual", "cam-auto"})
	waitForState(t, sup, "cam-auto", worker.StateRunning)

	assert.True(t, sup.RemoveDirective("d1"))

	waitForState(t, sup, "cam-auto", worker.StateStopped)
	state, ok := sup.CameraState("cam-manual")
	assert.True(t, ok)
	assert.Equal(t, worker.StateRunning, state, "a manually-started camera must survive directive removal")

	_, ok = registry.Get("d1")
	assert.False(t, ok)
}

func TestSupervisor_ReprocessingSameDirectiveIDIsNoop(t *testing.T) {
	sup, registry := newTestSupervisor(t)
	d := directive.NewDirective("d1", directive.KindSurveillance, "watch the lobby", directive.ScopeFor("cam-1"))

	sup.ProcessDirective(context.Background(), d, []string{"cam-1"})
	waitForState(t, sup, "cam-1", worker.StateRunning)
	sup.ProcessDirective(context.Background(), d, []string{"cam-1"})

	assert.Len(t, registry.List(), 1)
}
