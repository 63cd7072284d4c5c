// Package webhook posts waitlist signups to an external automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/procoachmastery/website/internal/core"
)

// DefaultSource identifies this site in outgoing payloads.
const DefaultSource = "procoachmastery.com"

// Client delivers waitlist events as JSON POSTs.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration

	// Limiter paces deliveries. Nil disables pacing.
	Limiter *rate.Limiter
}

// NewClient returns a client for url. An empty url yields an unconfigured client.
func NewClient(url string) *Client {
	return &Client{
		URL:     strings.TrimSpace(url),
		Timeout: 10 * time.Second,
	}
}

// WithRateLimit paces deliveries to rps with the given burst.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if c == nil || rps <= 0 {
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// Configured reports whether a target URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.URL != ""
}

// StatusError is returned for non-2xx webhook responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// SendWaitlist posts event to the configured URL.
func (c *Client) SendWaitlist(ctx context.Context, event core.WaitlistEvent) error {
	if !c.Configured() {
		return fmt.Errorf("webhook url not configured")
	}
	if event.Source == "" {
		event.Source = DefaultSource
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return nil
}
