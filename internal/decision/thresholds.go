// Package decision implements DecisionEngine: a pure function merging
// vision output, baseline state, and reasoning output into a final
// {should_alert, confidence, severity, kind, reasons} decision.
package decision

// Thresholds holds the tunable policy constants exposed as environment
// configuration.
type Thresholds struct {
	ObjectThreshold              float64
	ActivityThreshold            float64
	UndirectedImmediateThreshold float64
	SummaryCollectThreshold      float64
}

// DefaultThresholds mirrors the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ObjectThreshold:              60,
		ActivityThreshold:            40,
		UndirectedImmediateThreshold: 60,
		SummaryCollectThreshold:      50,
	}
}
