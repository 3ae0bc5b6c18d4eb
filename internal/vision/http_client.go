package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sentrywatch/vms/internal/ratelimit"
)

// CallDeadline is the per-call deadline imposed on VisionClient and
// ReasoningClient calls; deadline expiry is treated as transient failure.
const CallDeadline = 20 * time.Second

// HTTPClient calls an HTTP JSON endpoint for the vision model, gated by a
// Redis-backed per-minute quota. It satisfies Client.
type HTTPClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
	Quota      ratelimit.LimitConfig
}

func NewHTTPClient(baseURL, apiKey string, limiter *ratelimit.Limiter, quota ratelimit.LimitConfig) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: CallDeadline},
		Limiter:    limiter,
		Quota:      quota,
	}
}

type visionRequest struct {
	ImageBase64         string `json:"image_base64"`
	DirectiveTarget     string `json:"directive_target,omitempty"`
	BaselineDescription string `json:"baseline_description,omitempty"`
}

func (c *HTTPClient) Analyze(ctx context.Context, jpeg []byte, directiveTarget string, hasDirective bool, baselineDescription string, hasBaseline bool) (*Observation, error) {
	if c.Limiter != nil {
		decision, err := c.Limiter.CheckRateLimit(ctx, "vision:calls", c.Quota)
		if err == nil && !decision.Allowed {
			return nil, ErrRateLimited
		}
		// A limiter failure (Redis down) fails open: the model's own
		// rate limit response, if any, is the backstop.
	}

	ctx, cancel := context.WithTimeout(ctx, CallDeadline)
	defer cancel()

	req := visionRequest{ImageBase64: base64.StdEncoding.EncodeToString(jpeg)}
	if hasDirective {
		req.DirectiveTarget = directiveTarget
	}
	if hasBaseline {
		req.BaselineDescription = baselineDescription
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Failed(), nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vision: call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[VISION] read response failed: %v", err)
		return Failed(), nil
	}

	obs, ok := ParseObservation(raw, hasDirective, hasBaseline)
	if !ok {
		log.Printf("[VISION] malformed response, degrading to Failed(): %q", truncate(raw, 200))
		return Failed(), nil
	}
	return obs, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
