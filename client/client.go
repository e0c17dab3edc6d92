// Package client provides a Go client for a remote tick server's
// admin API.
//
// Usage:
//
//	c := client.New("http://tick.internal:8080")
//
//	j, err := c.CreateJob(ctx, client.CreateJobRequest{
//	    Name:         "nightly cleanup",
//	    Schedule:     "daily",
//	    FunctionName: "cleanup-sessions",
//	})
//
//	// Trigger a scheduling pass, e.g. from an external cron.
//	summary, err := c.RunDueJobs(ctx)
//
// Server sentinels survive the wire: a 404 from any job endpoint
// satisfies errors.Is(err, tick.ErrJobNotFound), a 409 satisfies
// errors.Is(err, tick.ErrJobClaimed).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xraph/tick"
)

// DefaultTimeout bounds requests made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

// Client talks to a tick server over its admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a client for the server at baseURL, e.g.
// "http://localhost:8080". A trailing slash is tolerated.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "tick-client/1",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks the server's /healthz endpoint, which reports whether
// the server can reach its store.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Error is an error response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tick/client: server returned %d: %s", e.StatusCode, e.Message)
}

// Is maps HTTP statuses back onto the sentinels the server encodes,
// so errors.Is works across the wire.
func (e *Error) Is(target error) bool {
	switch target {
	case tick.ErrJobNotFound:
		return e.StatusCode == http.StatusNotFound
	case tick.ErrJobClaimed:
		return e.StatusCode == http.StatusConflict
	case tick.ErrSinkRequired:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// do runs one request: marshal body, send, map error statuses, decode
// the response into out when provided.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tick/client: marshal request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("tick/client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tick/client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
			return fmt.Errorf("tick/client: decode response: %w", decErr)
		}
	}
	return nil
}

// decodeError extracts the server's {"error": ...} body, falling back
// to the HTTP status line.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}
