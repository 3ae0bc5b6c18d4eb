package dispatch_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/dispatch"
)

func TestDispatcher_SubscribeReplaysRecentAlerts(t *testing.T) {
	d := dispatch.NewDispatcher(200)
	for i := 0; i < 5; i++ {
		d.Publish(&dispatch.Alert{CameraID: "cam-1", Message: fmt.Sprintf("alert-%d", i)})
	}

	sub := d.Subscribe()
	defer sub.Close()

	for i := 0; i < 5; i++ {
		select {
		case a := <-sub.Alerts:
			assert.Equal(t, fmt.Sprintf("alert-%d", i), a.Message)
		case <-time.After(time.Second):
			t.Fatal("expected a replayed alert")
		}
	}
}

func TestDispatcher_AcknowledgeIsIdempotent(t *testing.T) {
	d := dispatch.NewDispatcher(200)
	a := d.Publish(&dispatch.Alert{CameraID: "cam-1"})

	assert.True(t, d.Acknowledge(a.ID))
	assert.True(t, d.Acknowledge(a.ID))
	assert.False(t, d.Acknowledge("unknown-id"))
}

func TestDispatcher_QueryFiltersBySeverityAndLimit(t *testing.T) {
	d := dispatch.NewDispatcher(200)
	d.Publish(&dispatch.Alert{CameraID: "cam-1", Severity: decision.SeverityCritical})
	d.Publish(&dispatch.Alert{CameraID: "cam-1", Severity: decision.SeverityInfo})
	d.Publish(&dispatch.Alert{CameraID: "cam-1", Severity: decision.SeverityCritical})

	out := d.Query(func(a *dispatch.Alert) bool { return a.Severity == decision.SeverityCritical }, 10)

	assert.Len(t, out, 2)
}

func TestDispatcher_SlowSubscriberDropsOldestWithoutBlockingPublish(t *testing.T) {
	d := dispatch.NewDispatcher(200)
	sub := d.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			d.Publish(&dispatch.Alert{CameraID: "cam-1", Message: fmt.Sprintf("m-%d", i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	assert.Greater(t, sub.Dropped(), uint64(0))
}

func TestDispatcher_RingCapacityBounds(t *testing.T) {
	d := dispatch.NewDispatcher(10)
	for i := 0; i < 25; i++ {
		d.Publish(&dispatch.Alert{CameraID: "cam-1"})
	}

	out := d.Query(nil, 0)
	assert.Len(t, out, 10)
}
