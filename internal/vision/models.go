// Package vision wraps the external vision model: given a frame plus an
// optional directive target and baseline description, it returns a
// structured scene description.
package vision

// Detection is one object the vision model located in the frame.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       *BBox   `json:"bbox,omitempty"`
}

// BBox is a normalized [0,1] bounding box.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Observation is the vision model's output for one frame.
type Observation struct {
	SceneDescription string      `json:"scene_description"`
	Activity         string      `json:"activity"`
	Detections       []Detection `json:"detections"`
	Significance     float64     `json:"significance"`

	// Populated only when a directive was supplied.
	HasDirective    bool    `json:"-"`
	QueryMatch      bool    `json:"query_match"`
	QueryConfidence float64 `json:"query_confidence"`
	QueryDetails    string  `json:"query_details"`

	// Populated only when a baseline was supplied.
	HasBaseline     bool     `json:"-"`
	BaselineMatch   bool     `json:"baseline_match"`
	StateAnalysis   string   `json:"state_analysis"`
	ChangesDetected []string `json:"changes_detected"`
	PersonPresent   bool     `json:"person_present"`
}

// Failed returns the "Analysis failed" sentinel observation used when the
// model's response cannot be parsed even after normalisation. Parsing
// failures are never fatal to the pipeline.
func Failed() *Observation {
	return &Observation{
		SceneDescription: "Analysis failed",
		Significance:     0,
	}
}
