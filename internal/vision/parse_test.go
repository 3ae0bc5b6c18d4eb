package vision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/vision"
)

func TestParseObservation_TolerantOfSurroundingProseAndTrailingCommas(t *testing.T) {
	raw := []byte("Sure, here is the analysis:\n{\"scene_description\": \"a quiet hallway\", \"significance\": 42,}\nHope that helps!")

	obs, ok := vision.ParseObservation(raw, false, false)

	assert.True(t, ok)
	assert.Equal(t, "a quiet hallway", obs.SceneDescription)
	assert.Equal(t, 42.0, obs.Significance)
}

func TestParseObservation_MissingOptionalFieldsDefaultToZero(t *testing.T) {
	raw := []byte(`{"scene_description": "empty lot"}`)

	obs, ok := vision.ParseObservation(raw, false, false)

	assert.True(t, ok)
	assert.Equal(t, "empty lot", obs.SceneDescription)
	assert.Equal(t, 0.0, obs.Significance)
	assert.Empty(t, obs.Detections)
}

func TestParseObservation_MalformedJSONDegradesToFailed(t *testing.T) {
	_, ok := vision.ParseObservation([]byte("not json at all"), false, false)
	assert.False(t, ok)

	obs := vision.Failed()
	assert.Equal(t, "Analysis failed", obs.SceneDescription)
	assert.Equal(t, 0.0, obs.Significance)
}

func TestParseObservation_QueryMatchTieBreakFromConfidence(t *testing.T) {
	raw := []byte(`{"scene_description": "scissors on the table", "query_confidence": 72}`)

	obs, ok := vision.ParseObservation(raw, true, false)

	assert.True(t, ok)
	assert.True(t, obs.QueryMatch, "query_confidence >= 50 with query_match omitted must imply a match")
	assert.Equal(t, 72.0, obs.QueryConfidence)
}

func TestParseObservation_QueryMatchTieBreakBelowFifty(t *testing.T) {
	raw := []byte(`{"scene_description": "maybe scissors", "query_confidence": 30}`)

	obs, ok := vision.ParseObservation(raw, true, false)

	assert.True(t, ok)
	assert.False(t, obs.QueryMatch)
}

func TestParseObservation_QueryMatchTrueImpliesConfidenceAtLeastOne(t *testing.T) {
	raw := []byte(`{"scene_description": "scissors", "query_match": true}`)

	obs, ok := vision.ParseObservation(raw, true, false)

	assert.True(t, ok)
	assert.True(t, obs.QueryMatch)
	assert.GreaterOrEqual(t, obs.QueryConfidence, 1.0)
}

func TestParseObservation_SignificanceClampedToRange(t *testing.T) {
	raw := []byte(`{"scene_description": "x", "significance": 150}`)

	obs, ok := vision.ParseObservation(raw, false, false)

	assert.True(t, ok)
	assert.Equal(t, 100.0, obs.Significance)
}

func TestParseObservation_BaselineFieldsPopulatedWhenBaselineSupplied(t *testing.T) {
	raw := []byte(`{"scene_description": "empty chair", "person_present": false, "baseline_match": false, "state_analysis": "person left"}`)

	obs, ok := vision.ParseObservation(raw, false, true)

	assert.True(t, ok)
	assert.False(t, obs.PersonPresent)
	assert.False(t, obs.BaselineMatch)
	assert.Equal(t, "person left", obs.StateAnalysis)
}
