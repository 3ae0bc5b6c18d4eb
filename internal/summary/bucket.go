// Package summary implements SummaryAggregator: a per-camera timer that
// folds individually-unremarkable-but-significant observations into one
// periodic summary alert, instead of letting each cross the immediate
// alert path.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/sentrywatch/vms/internal/decision"
	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/vision"
)

// DefaultInterval is SUMMARY_INTERVAL_SECONDS' default.
const DefaultInterval = 120 * time.Second

// maxEventsInBody caps how many individual events the summary body lists.
const maxEventsInBody = 5

// entry is one collected observation awaiting the next flush.
type entry struct {
	obs *vision.Observation
	f   frame.Frame
	at  time.Time
}

// Bucket accumulates summary-candidate observations for a single camera
// between flushes. Not safe for concurrent use; owned by one CameraWorker
// goroutine like BaselineTracker and ObservationHistory.
type Bucket struct {
	cameraID string
	interval time.Duration
	entries  []entry
}

func NewBucket(cameraID string, interval time.Duration) *Bucket {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Bucket{cameraID: cameraID, interval: interval}
}

// Collect appends a summary-candidate observation (decision.KindSummaryCandidate).
func (b *Bucket) Collect(obs *vision.Observation, f frame.Frame, at time.Time) {
	b.entries = append(b.entries, entry{obs: obs, f: f, at: at})
}

// Empty reports whether the bucket has nothing to flush.
func (b *Bucket) Empty() bool {
	return len(b.entries) == 0
}

// Size reports how many observations are currently collected but
// unflushed.
func (b *Bucket) Size() int {
	return len(b.entries)
}

// Flush builds the summary Alert from the peak-significance entry and
// clears the bucket. Calling Flush on an empty bucket returns nil; the
// caller must still reset its timer.
func (b *Bucket) Flush(now time.Time) *dispatch.Alert {
	if len(b.entries) == 0 {
		return nil
	}

	peak := b.entries[0]
	for _, e := range b.entries[1:] {
		if e.obs.Significance > peak.obs.Significance {
			peak = e
		}
	}

	objects := unionObjects(b.entries)
	minutes := int(b.interval / time.Minute)
	if minutes == 0 {
		minutes = 1
	}

	alert := &dispatch.Alert{
		CameraID:        b.cameraID,
		Kind:            dispatch.AlertKindSummary,
		Severity:        summarySeverity(peak.obs.Significance),
		Title:           summaryTitle(minutes, b.cameraID),
		Message:         summaryBody(b.entries),
		Confidence:      peak.obs.Significance,
		Timestamp:       now,
		DetectedObjects: objects,
		FrameURL:        peak.f.URL,
		FrameBase64:     peak.f.Base64,
		Reasons:         []string{"summary_window"},
		Source:          decision.SourceAggregator,
	}

	b.entries = nil
	return alert
}

func summarySeverity(peak float64) decision.Severity {
	if peak >= 80 {
		return decision.SeverityCritical
	}
	return decision.SeverityWarning
}

func summaryTitle(minutes int, cameraID string) string {
	return fmt.Sprintf("Activity summary (%dm) – Camera %s", minutes, cameraID)
}

func summaryBody(entries []entry) string {
	shown := entries
	if len(shown) > maxEventsInBody {
		shown = shown[len(shown)-maxEventsInBody:]
	}
	lines := make([]string, 0, len(shown))
	for _, e := range shown {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.at.Format("15:04:05"), e.obs.SceneDescription))
	}
	return strings.Join(lines, "\n")
}

func unionObjects(entries []entry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		for _, d := range e.obs.Detections {
			if _, ok := seen[d.Label]; ok {
				continue
			}
			seen[d.Label] = struct{}{}
			out = append(out, d.Label)
		}
	}
	return out
}
