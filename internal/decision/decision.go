package decision

import (
	"strings"

	"github.com/sentrywatch/vms/internal/baseline"
	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/reasoning"
	"github.com/sentrywatch/vms/internal/vision"
)

// Severity is the alert severity tier.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Kind classifies how (or whether) an observation is dispatched.
type Kind string

const (
	KindImmediate        Kind = "immediate"
	KindSummaryCandidate Kind = "summary-candidate"
	KindNone             Kind = "none"
)

// Source names which layer/collaborator produced the decision.
type Source string

const (
	SourceVision     Source = "vision"
	SourceReasoning  Source = "reasoning"
	SourceOverride   Source = "override"
	SourceAggregator Source = "aggregator"
)

// Decision is DecisionEngine's output.
//
// Layer B's forced-95-confidence emergency override is modeled as an
// explicit OverrideReason rather than a bare numeric field: a magic
// confidence value with no tag would read as a bug to the next person
// touching this file.
type Decision struct {
	ShouldAlert     bool
	Severity        Severity
	Kind            Kind
	FinalConfidence float64
	Reasons         []string
	Source          Source
	OverrideReason  string
}

// presenceLostOverrideConfidence is Layer B's fixed policy constant — not
// a computed confidence — so a downstream threshold comparison can never
// suppress a clear disappearance.
const presenceLostOverrideConfidence = 95

// Decide is the pure DecisionEngine function. It never mutates its inputs
// and never performs I/O; CameraWorker is solely responsible for acting on
// the result.
func Decide(d *directive.Directive, obs *vision.Observation, bl *baseline.State, rd *reasoning.Decision, th Thresholds) Decision {
	// Layer A — hazard keyword override, always active.
	if kw, ok := MatchHazardKeyword(obs.SceneDescription + " " + obs.Activity); ok {
		return Decision{
			ShouldAlert:     true,
			Severity:        SeverityCritical,
			Kind:            KindImmediate,
			FinalConfidence: maxFloat(obs.Significance, 60),
			Reasons:         []string{"hazard_keyword:" + kw},
			Source:          SourceVision,
		}
	}

	// Layer B — activity-detection emergency override.
	if d != nil && d.Kind == directive.KindActivityDetection && bl != nil && bl.Established {
		baselineHadPerson := bl.PersonWasPresent
		noPersonPhrase := strings.Contains(strings.ToLower(obs.SceneDescription), "no person")
		currentHasPerson := obs.PersonPresent && !noPersonPhrase
		if baselineHadPerson && !currentHasPerson {
			return Decision{
				ShouldAlert:     true,
				Severity:        SeverityCritical,
				Kind:            KindImmediate,
				FinalConfidence: presenceLostOverrideConfidence,
				Reasons:         []string{"presence_lost_override"},
				Source:          SourceOverride,
				OverrideReason:  "presence_lost",
			}
		}
	}

	// Layer C — reasoning override.
	if rd != nil && rd.ShouldAlert && rd.ConfidencePercentage > obs.QueryConfidence {
		return Decision{
			ShouldAlert:     true,
			Severity:        mapReasoningSeverity(rd.AlertPriority),
			Kind:            KindImmediate,
			FinalConfidence: rd.ConfidencePercentage,
			Reasons:         []string{"reasoning_override"},
			Source:          SourceReasoning,
		}
	}

	// Layer D — directive match.
	if d != nil {
		switch d.Kind {
		case directive.KindObjectDetection:
			if obs.QueryMatch && obs.QueryConfidence >= th.ObjectThreshold {
				return Decision{
					ShouldAlert:     true,
					Severity:        severityByConfidence(obs.QueryConfidence),
					Kind:            KindImmediate,
					FinalConfidence: obs.QueryConfidence,
					Reasons:         []string{"directive_match:object_detection"},
					Source:          SourceVision,
				}
			}
		case directive.KindActivityDetection:
			if obs.QueryMatch && obs.QueryConfidence >= th.ActivityThreshold {
				return Decision{
					ShouldAlert:     true,
					Severity:        SeverityCritical,
					Kind:            KindImmediate,
					FinalConfidence: obs.QueryConfidence,
					Reasons:         []string{"directive_match:activity_detection"},
					Source:          SourceVision,
				}
			}
		default:
			if obs.QueryConfidence >= th.ObjectThreshold {
				return Decision{
					ShouldAlert:     true,
					Severity:        SeverityWarning,
					Kind:            KindImmediate,
					FinalConfidence: obs.QueryConfidence,
					Reasons:         []string{"directive_match:" + string(d.Kind)},
					Source:          SourceVision,
				}
			}
		}
	}

	// Layer E — undirected significance.
	if d == nil && obs.Significance >= th.UndirectedImmediateThreshold {
		return Decision{
			ShouldAlert:     true,
			Severity:        severityByConfidence(obs.Significance),
			Kind:            KindImmediate,
			FinalConfidence: obs.Significance,
			Reasons:         []string{"undirected_significance"},
			Source:          SourceVision,
		}
	}

	// Layer F — summary candidacy.
	if obs.Significance >= th.SummaryCollectThreshold {
		return Decision{
			ShouldAlert: false,
			Kind:        KindSummaryCandidate,
			Reasons:     []string{"summary_candidate"},
			Source:      SourceVision,
		}
	}

	return Decision{ShouldAlert: false, Kind: KindNone}
}

func severityByConfidence(v float64) Severity {
	if v >= 80 {
		return SeverityCritical
	}
	return SeverityWarning
}

func mapReasoningSeverity(p reasoning.Priority) Severity {
	switch p {
	case reasoning.PriorityCritical:
		return SeverityCritical
	case reasoning.PriorityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
