package bus

import "time"

// LiveFeedFrame is published on vms.live-feed.<camera_id> at the
// configured frame cadence.
type LiveFeedFrame struct {
	CameraID           string    `json:"camera_id"`
	Timestamp          time.Time `json:"timestamp"`
	FrameBase64        string    `json:"frame_base64"`
	ObservationSummary string    `json:"observation_summary"`
}

// AnalysisEvent is published on vms.analysis.<camera_id> for UI
// narration; it may be throttled by the subscriber side.
type AnalysisEvent struct {
	CameraID         string    `json:"camera_id"`
	Timestamp        time.Time `json:"timestamp"`
	SceneDescription string    `json:"scene_description"`
	Activity         string    `json:"activity"`
	Significance     float64   `json:"significance"`
}

// SystemEvent is published on vms.system for directive acceptance,
// camera state changes, and dispatcher drop counters.
type SystemEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
}
