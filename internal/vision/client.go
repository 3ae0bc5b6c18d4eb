package vision

import (
	"context"
	"errors"

	"github.com/sentrywatch/vms/internal/directive"
)

// ErrRateLimited is a soft error: the CameraWorker handles it as a
// skipped frame (no alert, no observation).
var ErrRateLimited = errors.New("vision: rate limited")

// Client analyzes one frame against an optional directive target and an
// optional established-baseline description.
type Client interface {
	Analyze(ctx context.Context, jpeg []byte, directiveTarget string, hasDirective bool, baselineDescription string, hasBaseline bool) (*Observation, error)
}

// AnalyzeFrame is a convenience wrapper over Client.Analyze that takes the
// richer directive/baseline types CameraWorker holds.
func AnalyzeFrame(ctx context.Context, c Client, jpeg []byte, d *directive.Directive, baselineDescription string, baselineEstablished bool) (*Observation, error) {
	var target string
	hasDirective := d != nil
	if hasDirective {
		target = d.Target
	}
	return c.Analyze(ctx, jpeg, target, hasDirective, baselineDescription, baselineEstablished)
}
