// Package dispatch sends synthesized payloads to caller-supplied callback URLs.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// APIKeyHeader carries the caller's API key on every callback.
	APIKeyHeader = "X-API-Key"
	// IDHeader carries the correlation id so receivers can match it without parsing the body.
	IDHeader  = "X-Webhook-Id"
	userAgent = "fake-webhook-api"
)

// Request describes one outbound callback.
type Request struct {
	URL     string
	APIKey  string
	ID      string
	Payload any
}

// Result is the terminal outcome of a callback. Err is nil only for 2xx responses.
type Result struct {
	StatusCode int
	Err        error
	Duration   time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

// HTTPDispatcher posts JSON payloads with a bounded timeout.
type HTTPDispatcher struct {
	client *http.Client
}

func NewHTTPDispatcher(timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Deliver makes exactly one attempt. It never panics and never retries.
func (d *HTTPDispatcher) Deliver(ctx context.Context, req Request) Result {
	start := time.Now()

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return Result{Err: fmt.Errorf("marshal: %w", err), Duration: time.Since(start)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return Result{Err: fmt.Errorf("create request: %w", err), Duration: time.Since(start)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set(APIKeyHeader, req.APIKey)
	if req.ID != "" {
		httpReq.Header.Set(IDHeader, req.ID)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Result{Err: fmt.Errorf("send: %w", err), Duration: time.Since(start)}
	}
	defer resp.Body.Close()

	res := Result{StatusCode: resp.StatusCode, Duration: time.Since(start)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = &StatusError{StatusCode: resp.StatusCode}
	}
	return res
}
