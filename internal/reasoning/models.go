// Package reasoning wraps the external reasoning model: given the active
// directive, baseline, current observation, and a short history of
// observations, it returns an event decision.
package reasoning

import "time"

// Priority is the reasoning model's suggested alert severity.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityWarning  Priority = "WARNING"
	PriorityInfo     Priority = "INFO"
)

// Decision is the reasoning model's output.
type Decision struct {
	EventOccurred        bool     `json:"event_occurred"`
	ConfidencePercentage float64  `json:"confidence_percentage"`
	Reasoning            string   `json:"reasoning"`
	ShouldAlert          bool     `json:"should_alert"`
	AlertPriority        Priority `json:"alert_priority"`
	AlertMessage         string   `json:"alert_message"`
}

// HistoryEntry is one prior observation supplied as reasoning context.
type HistoryEntry struct {
	SceneDescription string
	Activity         string
	Significance     float64
	At               time.Time
}
