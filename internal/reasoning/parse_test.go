package reasoning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/reasoning"
)

func TestParseDecision_TolerantOfSurroundingProse(t *testing.T) {
	raw := []byte("Here's my assessment:\n{\"should_alert\": true, \"confidence_percentage\": 92, \"alert_priority\": \"critical\",}")

	d, ok := reasoning.ParseDecision(raw)

	assert.True(t, ok)
	assert.True(t, d.ShouldAlert)
	assert.Equal(t, 92.0, d.ConfidencePercentage)
	assert.Equal(t, reasoning.PriorityCritical, d.AlertPriority)
}

func TestParseDecision_UnknownPriorityDefaultsToInfo(t *testing.T) {
	raw := []byte(`{"should_alert": false, "alert_priority": "URGENT"}`)

	d, ok := reasoning.ParseDecision(raw)

	assert.True(t, ok)
	assert.Equal(t, reasoning.PriorityInfo, d.AlertPriority)
}

func TestParseDecision_MalformedJSONReportsNotOK(t *testing.T) {
	_, ok := reasoning.ParseDecision([]byte("I cannot comply with this request."))
	assert.False(t, ok)
}

func TestParseDecision_ConfidenceClampedToRange(t *testing.T) {
	raw := []byte(`{"confidence_percentage": -10}`)

	d, ok := reasoning.ParseDecision(raw)

	assert.True(t, ok)
	assert.Equal(t, 0.0, d.ConfidencePercentage)
}
