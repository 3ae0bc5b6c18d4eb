package reasoning

import (
	"context"
	"errors"

	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/vision"
)

// ErrUnavailable is returned both when no reasoning credential is
// configured (the pipeline never calls the client) and when a single call
// fails or the model's response can't be parsed (the pipeline proceeds
// with vision output alone for that call only).
var ErrUnavailable = errors.New("reasoning: unavailable")

// Client interprets a sequence of observations against a directive.
type Client interface {
	AnalyzeProgression(ctx context.Context, d directive.Directive, baselineEstablished bool, baselineDescription string, current *vision.Observation, history []HistoryEntry) (*Decision, error)
}

// Configured reports whether a reasoning credential was supplied at
// startup. When false, the client is never constructed and the pipeline
// runs vision-only.
func Configured(apiKey string) bool {
	return apiKey != ""
}
