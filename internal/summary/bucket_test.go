package summary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/summary"
	"github.com/sentrywatch/vms/internal/vision"
)

func TestBucket_FlushPicksPeakSignificanceAsRepresentative(t *testing.T) {
	b := summary.NewBucket("cam-1", 2*time.Minute)
	b.Collect(&vision.Observation{SceneDescription: "a", Significance: 52, Detections: []vision.Detection{{Label: "person"}}}, frame.Frame{URL: "a.jpg"}, time.Now())
	b.Collect(&vision.Observation{SceneDescription: "b", Significance: 58, Detections: []vision.Detection{{Label: "backpack"}}}, frame.Frame{URL: "b.jpg"}, time.Now())
	b.Collect(&vision.Observation{SceneDescription: "c", Significance: 54}, frame.Frame{URL: "c.jpg"}, time.Now())
	b.Collect(&vision.Observation{SceneDescription: "d", Significance: 50}, frame.Frame{URL: "d.jpg"}, time.Now())

	alert := b.Flush(time.Now())

	assert.NotNil(t, alert)
	assert.Equal(t, dispatch.AlertKindSummary, alert.Kind)
	assert.Equal(t, decision.SeverityWarning, alert.Severity)
	assert.Equal(t, 58.0, alert.Confidence)
	assert.Equal(t, "b.jpg", alert.FrameURL)
	assert.ElementsMatch(t, []string{"person", "backpack"}, alert.DetectedObjects)
}

func TestBucket_FlushOnEmptyReturnsNil(t *testing.T) {
	b := summary.NewBucket("cam-1", time.Minute)
	assert.Nil(t, b.Flush(time.Now()))
}

func TestBucket_FlushClearsEntries(t *testing.T) {
	b := summary.NewBucket("cam-1", time.Minute)
	b.Collect(&vision.Observation{Significance: 55}, frame.Frame{}, time.Now())
	b.Flush(time.Now())

	assert.True(t, b.Empty())
	assert.Equal(t, 0, b.Size())
}

func TestBucket_SeverityEscalatesAtHighSignificance(t *testing.T) {
	b := summary.NewBucket("cam-1", time.Minute)
	b.Collect(&vision.Observation{Significance: 85}, frame.Frame{}, time.Now())

	alert := b.Flush(time.Now())
	assert.Equal(t, decision.SeverityCritical, alert.Severity)
}
