package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 64 << 10

// Client talks to the leaderboard HTTP service.
type Client struct {
	URL  string // Full endpoint, e.g. http://localhost:8080/api/leaderboard
	HTTP *http.Client

	// ForwardedFor is sent as X-Forwarded-For when set, so the service rate
	// limits each player even when many sessions share one process.
	ForwardedFor string
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = config.LeaderboardTimeout
	}
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

// ForPlayer returns a copy of c that identifies its requests as coming from
// addr. The copy shares the underlying http.Client.
func (c *Client) ForPlayer(addr string) *Client {
	if c == nil {
		return nil
	}
	cp := *c
	cp.ForwardedFor = addr
	return &cp
}

// List fetches the current top-N list.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var entries []Entry
	if err := c.do(req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Submit posts a score. A response with success false yields ErrRejected.
func (c *Client) Submit(ctx context.Context, initials string, score int) (Result, error) {
	body, err := json.Marshal(Entry{Initials: initials, Score: score})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var res Result
	if err := c.do(req, &res); err != nil {
		return Result{}, err
	}
	if !res.Success {
		return res, &RejectionError{Message: res.Message, Status: http.StatusOK}
	}
	return res, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.ForwardedFor != "" {
		req.Header.Set("X-Forwarded-For", c.ForwardedFor)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var res Result
		if json.Unmarshal(data, &res) == nil && res.Message != "" {
			return &RejectionError{Message: res.Message, Status: resp.StatusCode}
		}
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}
