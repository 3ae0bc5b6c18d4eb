package reasoning

import (
	"context"

	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/vision"
)

// ScriptedClient replays a fixed sequence of Decisions, one per call. It
// exists for tests and local demos where no real reasoning endpoint is
// configured.
type ScriptedClient struct {
	Script []*Decision
	calls  int
}

func (c *ScriptedClient) AnalyzeProgression(ctx context.Context, d directive.Directive, baselineEstablished bool, baselineDescription string, current *vision.Observation, history []HistoryEntry) (*Decision, error) {
	if len(c.Script) == 0 {
		return nil, ErrUnavailable
	}
	idx := c.calls
	if idx >= len(c.Script) {
		idx = len(c.Script) - 1
	}
	c.calls++
	if c.Script[idx] == nil {
		return nil, ErrUnavailable
	}
	decision := *c.Script[idx]
	return &decision, nil
}
