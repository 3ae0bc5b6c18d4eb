package summary

import (
	"context"
	"time"

	"github.com/sentrywatch/vms/internal/dispatch"
	"github.com/sentrywatch/vms/internal/frame"
	"github.com/sentrywatch/vms/internal/vision"
)

// Aggregator runs one per-camera flush timer, folding collected
// observations into at most one dispatched Alert per interval. Stopping
// the camera cancels the timer and discards whatever the bucket holds —
// there is no final flush on shutdown.
type Aggregator struct {
	bucket   *Bucket
	disp     *dispatch.Dispatcher
	interval time.Duration

	cancel context.CancelFunc
}

// NewAggregator starts the flush timer immediately; Stop cancels it.
func NewAggregator(ctx context.Context, cameraID string, interval time.Duration, disp *dispatch.Dispatcher) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	runCtx, cancel := context.WithCancel(ctx)
	a := &Aggregator{
		bucket:   NewBucket(cameraID, interval),
		disp:     disp,
		interval: interval,
		cancel:   cancel,
	}
	go a.run(runCtx)
	return a
}

func (a *Aggregator) run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if a.bucket.Empty() {
				continue
			}
			if alert := a.bucket.Flush(now); alert != nil {
				a.disp.Publish(alert)
			}
		}
	}
}

// Collect hands an observation+frame pair that DecisionEngine classified
// as summary-candidate to the current bucket.
func (a *Aggregator) Collect(obs *vision.Observation, f frame.Frame) {
	a.bucket.Collect(obs, f, time.Now())
}

// BucketSize reports how many observations are currently collected but
// unflushed, for the summary-bucket-size metric.
func (a *Aggregator) BucketSize() int {
	return a.bucket.Size()
}

// Stop cancels the flush timer and discards any uncommitted bucket state.
func (a *Aggregator) Stop() {
	a.cancel()
}
