package vision

import "context"

// ScriptedClient replays a fixed sequence of Observations, one per call,
// holding the last one once exhausted. It exists for tests and local
// demos where no real vision model endpoint is configured, mirroring the
// teacher's mock-detection fallback in cmd/ai-service/inference.go.
type ScriptedClient struct {
	Script []*Observation
	calls  int
}

func (c *ScriptedClient) Analyze(ctx context.Context, jpeg []byte, directiveTarget string, hasDirective bool, baselineDescription string, hasBaseline bool) (*Observation, error) {
	if len(c.Script) == 0 {
		return Failed(), nil
	}
	idx := c.calls
	if idx >= len(c.Script) {
		idx = len(c.Script) - 1
	}
	c.calls++
	obs := *c.Script[idx]
	obs.HasDirective = hasDirective
	obs.HasBaseline = hasBaseline
	return &obs, nil
}
