// Package bus publishes the live-feed, analysis and system push channels
// over NATS, one subject per channel (per-camera for live-feed/analysis).
// Adapted from the NVR event publisher: same retry-with-backoff publish
// loop, generalized from one fixed subject to a per-channel subject
// scheme.
package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects used by the push channels (§6 EXTERNAL INTERFACES).
const (
	SubjectLiveFeedPrefix = "vms.live-feed."
	SubjectAnalysisPrefix = "vms.analysis."
	SubjectAlerts         = "vms.alerts"
	SubjectSystem         = "vms.system"
)

// Publisher publishes JSON payloads to a NATS subject, retrying on a
// failed publish with linear backoff before giving up.
type Publisher struct {
	conn       *nats.Conn
	maxRetries int
}

func NewPublisher(conn *nats.Conn, maxRetries int) *Publisher {
	return &Publisher{conn: conn, maxRetries: maxRetries}
}

// Publish marshals v to JSON and publishes it to subject.
func (p *Publisher) Publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bus: marshal: %w", err)
	}

	var last error
	for i := 0; i <= p.maxRetries; i++ {
		last = p.conn.Publish(subject, data)
		if last == nil {
			return nil
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}
	return fmt.Errorf("bus: publish to %s failed after %d retries: %w", subject, p.maxRetries, last)
}

// LiveFeedSubject returns the per-camera live-feed subject.
func LiveFeedSubject(cameraID string) string {
	return SubjectLiveFeedPrefix + cameraID
}

// AnalysisSubject returns the per-camera analysis subject.
func AnalysisSubject(cameraID string) string {
	return SubjectAnalysisPrefix + cameraID
}
