package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sentrywatch/vms/internal/directive"
	"github.com/sentrywatch/vms/internal/vision"
)

// CallDeadline mirrors vision.CallDeadline: a 20s per-call default on
// both model clients.
const CallDeadline = 20 * time.Second

// Temperature bounds the model towards reproducibility.
const Temperature = 0.2

// HTTPClient calls an HTTP JSON endpoint for the reasoning model.
type HTTPClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, APIKey: apiKey, HTTPClient: &http.Client{Timeout: CallDeadline}}
}

type historyEntryWire struct {
	SceneDescription string  `json:"scene_description"`
	Activity         string  `json:"activity"`
	Significance     float64 `json:"significance"`
	AtUnix           int64   `json:"at_unix"`
}

type reasoningRequest struct {
	DirectiveKind       string             `json:"directive_kind"`
	DirectiveTarget     string             `json:"directive_target"`
	BaselineEstablished bool               `json:"baseline_established"`
	BaselineDescription string             `json:"baseline_description,omitempty"`
	CurrentObservation  *vision.Observation `json:"current_observation"`
	History             []historyEntryWire `json:"history"`
	Temperature         float64            `json:"temperature"`
}

func (c *HTTPClient) AnalyzeProgression(ctx context.Context, d directive.Directive, baselineEstablished bool, baselineDescription string, current *vision.Observation, history []HistoryEntry) (*Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, CallDeadline)
	defer cancel()

	req := reasoningRequest{
		DirectiveKind:       string(d.Kind),
		DirectiveTarget:     d.Target,
		BaselineEstablished: baselineEstablished,
		BaselineDescription: baselineDescription,
		CurrentObservation:  current,
		Temperature:         Temperature,
	}
	for _, h := range history {
		req.History = append(req.History, historyEntryWire{
			SceneDescription: h.SceneDescription,
			Activity:         h.Activity,
			Significance:     h.Significance,
			AtUnix:           h.At.Unix(),
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, ErrUnavailable
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/progression", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reasoning: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("[REASONING] call failed: %v", err)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUnavailable
	}

	decision, ok := ParseDecision(raw)
	if !ok {
		log.Printf("[REASONING] malformed response, falling back to vision-only")
		return nil, ErrUnavailable
	}
	return decision, nil
}
