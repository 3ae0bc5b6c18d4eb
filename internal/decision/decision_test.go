package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentrywatch/vms/internal/baseline"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/reasoning"
	"github.com/sentrywatch/vms/internal/vision"
)

func TestDecide_HazardKeywordOverridesEverything(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "a man holding a knife near the entrance", Significance: 10}
	d := Decide(nil, obs, nil, nil, DefaultThresholds())

	assert.True(t, d.ShouldAlert)
	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, KindImmediate, d.Kind)
	assert.Contains(t, d.Reasons[0], "hazard_keyword:knife")
}

func TestDecide_ActivityPresenceLostOverride(t *testing.T) {
	dir := &directive.Directive{Kind: directive.KindActivityDetection}
	bl := &baseline.State{Established: true, PersonWasPresent: true}
	obs := &vision.Observation{SceneDescription: "empty room, no person visible", PersonPresent: false}

	d := Decide(dir, obs, bl, nil, DefaultThresholds())

	assert.True(t, d.ShouldAlert)
	assert.Equal(t, float64(presenceLostOverrideConfidence), d.FinalConfidence)
	assert.Equal(t, SourceOverride, d.Source)
	assert.Equal(t, "presence_lost", d.OverrideReason)
}

func TestDecide_ActivityOverrideDoesNotFireWhenPersonStillPresent(t *testing.T) {
	dir := &directive.Directive{Kind: directive.KindActivityDetection}
	bl := &baseline.State{Established: true, PersonWasPresent: true}
	obs := &vision.Observation{SceneDescription: "same person still standing there", PersonPresent: true}

	d := Decide(dir, obs, bl, nil, DefaultThresholds())

	assert.False(t, d.ShouldAlert)
}

func TestDecide_ReasoningOverrideRequiresHigherConfidenceThanVision(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "ordinary scene", QueryConfidence: 30}
	rd := &reasoning.Decision{ShouldAlert: true, ConfidencePercentage: 70, AlertPriority: reasoning.PriorityWarning}

	d := Decide(nil, obs, nil, rd, DefaultThresholds())

	assert.True(t, d.ShouldAlert)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, SourceReasoning, d.Source)
	assert.Equal(t, 70.0, d.FinalConfidence)
}

func TestDecide_ReasoningOverrideSuppressedWhenVisionConfidenceHigher(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "ordinary scene", QueryConfidence: 90}
	rd := &reasoning.Decision{ShouldAlert: true, ConfidencePercentage: 70}

	d := Decide(nil, obs, nil, rd, DefaultThresholds())

	assert.NotEqual(t, SourceReasoning, d.Source)
}

func TestDecide_DirectiveMatchObjectDetection(t *testing.T) {
	dir := &directive.Directive{Kind: directive.KindObjectDetection}
	obs := &vision.Observation{SceneDescription: "a red backpack on the bench", QueryMatch: true, QueryConfidence: 75}

	d := Decide(dir, obs, nil, nil, DefaultThresholds())

	assert.True(t, d.ShouldAlert)
	assert.Equal(t, KindImmediate, d.Kind)
	assert.Equal(t, 75.0, d.FinalConfidence)
}

func TestDecide_DirectiveMatchBelowThresholdDoesNotAlert(t *testing.T) {
	dir := &directive.Directive{Kind: directive.KindObjectDetection}
	obs := &vision.Observation{SceneDescription: "maybe a backpack", QueryMatch: true, QueryConfidence: 40}

	d := Decide(dir, obs, nil, nil, DefaultThresholds())

	assert.False(t, d.ShouldAlert)
}

func TestDecide_UndirectedSignificanceRequiresNoActiveDirective(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "a car crashes into the gate", Significance: 85}

	d := Decide(nil, obs, nil, nil, DefaultThresholds())

	assert.True(t, d.ShouldAlert)
	assert.Equal(t, SourceVision, d.Source)
	assert.Contains(t, d.Reasons, "undirected_significance")
}

func TestDecide_SummaryCandidacyWhenBelowImmediateButAboveCollectThreshold(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "person walks across the yard", Significance: 55}

	d := Decide(nil, obs, nil, nil, DefaultThresholds())

	assert.False(t, d.ShouldAlert)
	assert.Equal(t, KindSummaryCandidate, d.Kind)
}

func TestDecide_NothingBelowEveryThreshold(t *testing.T) {
	obs := &vision.Observation{SceneDescription: "quiet empty hallway", Significance: 5}

	d := Decide(nil, obs, nil, nil, DefaultThresholds())

	assert.False(t, d.ShouldAlert)
	assert.Equal(t, KindNone, d.Kind)
}

func TestMatchHazardKeyword_WordBoundary(t *testing.T) {
	_, ok := MatchHazardKeyword("a firefly landed on the mat")
	assert.False(t, ok, "\"firefly\" must not match \"fire\": keywords match whole words only")

	kw, ok := MatchHazardKeyword("I smell smoke in the hallway")
	assert.True(t, ok)
	assert.Equal(t, "smoke", kw)
}
