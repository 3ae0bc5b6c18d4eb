// Package dispatch builds alert payloads and fans them out to subscribed
// UI clients, plus keeps a bounded in-memory ring for late subscribers and
// the query API.
package dispatch

import (
	"time"

	"github.com/sentrywatch/vms/internal/decision"
)

// AlertKind mirrors decision.Kind for the subset that ever reaches an
// Alert (an observation that never alerts never becomes one).
type AlertKind string

const (
	AlertKindImmediate AlertKind = "immediate"
	AlertKindSummary   AlertKind = "summary"
	AlertKindSystem    AlertKind = "system"
)

// Alert is the dispatched record.
type Alert struct {
	ID              string            `json:"id"`
	CameraID        string            `json:"camera_id"`
	Severity        decision.Severity `json:"severity"`
	Kind            AlertKind         `json:"kind"`
	Title           string            `json:"title"`
	Message         string            `json:"message"`
	Confidence      float64           `json:"confidence"`
	Timestamp       time.Time         `json:"timestamp"`
	DetectedObjects []string          `json:"detected_objects,omitempty"`
	FrameURL        string            `json:"frame_url,omitempty"`
	FrameBase64     string            `json:"frame_base64,omitempty"`
	Reasons         []string          `json:"reasons,omitempty"`
	Source          decision.Source   `json:"source"`
	Acknowledged    bool              `json:"acknowledged"`
}
