package reasoning

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)

func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

type rawDecision struct {
	EventOccurred        *bool    `json:"event_occurred"`
	ConfidencePercentage *float64 `json:"confidence_percentage"`
	Reasoning            *string  `json:"reasoning"`
	ShouldAlert          *bool    `json:"should_alert"`
	AlertPriority        *string  `json:"alert_priority"`
	AlertMessage         *string  `json:"alert_message"`
}

// ParseDecision defensively parses a reasoning model response. On any
// malformation it reports ok=false; the caller returns ErrUnavailable for
// that call only.
func ParseDecision(raw []byte) (*Decision, bool) {
	text, ok := extractJSONObject(string(bytes.TrimSpace(raw)))
	if !ok {
		return nil, false
	}
	text = trailingCommaRE.ReplaceAllString(text, "$1")

	var rd rawDecision
	if err := json.Unmarshal([]byte(text), &rd); err != nil {
		return nil, false
	}

	d := &Decision{AlertPriority: PriorityInfo}
	if rd.EventOccurred != nil {
		d.EventOccurred = *rd.EventOccurred
	}
	if rd.ConfidencePercentage != nil {
		d.ConfidencePercentage = clamp(*rd.ConfidencePercentage, 0, 100)
	}
	if rd.Reasoning != nil {
		d.Reasoning = *rd.Reasoning
	}
	if rd.ShouldAlert != nil {
		d.ShouldAlert = *rd.ShouldAlert
	}
	if rd.AlertPriority != nil {
		switch Priority(strings.ToUpper(*rd.AlertPriority)) {
		case PriorityCritical:
			d.AlertPriority = PriorityCritical
		case PriorityWarning:
			d.AlertPriority = PriorityWarning
		default:
			d.AlertPriority = PriorityInfo
		}
	}
	if rd.AlertMessage != nil {
		d.AlertMessage = *rd.AlertMessage
	}
	return d, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
