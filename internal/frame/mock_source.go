package frame

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"sync/atomic"
	"time"
)

// MockSource is a synthetic Source used where no real camera driver is
// wired. It encodes
// a small solid-color JPEG on each tick so the rest of the pipeline has
// real bytes to hash, store, and attach to alerts.
type MockSource struct {
	CameraID string
	Interval time.Duration

	seq    atomic.Uint64
	opened bool
}

func NewMockSource(cameraID string, fps float64) *MockSource {
	interval := time.Second
	if fps > 0 {
		interval = time.Duration(float64(time.Second) / fps)
	}
	return &MockSource{CameraID: cameraID, Interval: interval}
}

func (m *MockSource) Open(ctx context.Context) error {
	m.opened = true
	return nil
}

func (m *MockSource) Close() error {
	m.opened = false
	return nil
}

func (m *MockSource) NextFrame(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-time.After(m.Interval):
	}

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	shade := uint8(rand.Intn(256))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		return Frame{}, err
	}

	return Frame{
		CameraID:   m.CameraID,
		CapturedAt: time.Now(),
		JPEG:       buf.Bytes(),
		SequenceNo: m.seq.Add(1),
	}, nil
}
