// Package frame defines the captured-image abstraction shared by every
// camera worker: the Frame value itself, the FrameSource a camera is read
// from, and the FrameStore that persists captured JPEGs to disk.
package frame

import "time"

// Frame is one JPEG-encoded capture from a single camera.
//
// A Frame is owned by the CameraWorker that produced it and handed off by
// value into the decision/dispatch path; FrameStore retains the bytes on
// disk indefinitely within scope (cleanup is an external concern).
type Frame struct {
	CameraID   string
	CapturedAt time.Time
	JPEG       []byte
	URL        string
	Base64     string
	SequenceNo uint64
}
