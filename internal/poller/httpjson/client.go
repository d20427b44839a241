// internal/poller/httpjson/client.go
package httpjson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request, redirects and body included.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of a response is read; viewer documents are tiny.
const maxBody = 1 << 20

// ErrBodyTooLarge is returned when a response exceeds maxBody.
var ErrBodyTooLarge = errors.New("body exceeds limit")

// Client implements poller.Client over net/http.
// Redirects are followed (net/http default policy, up to 10 hops).
type Client struct {
	hc *http.Client
}

// Config is minimal transport config.
type Config struct {
	Timeout time.Duration
}

// New creates a client. A zero timeout means DefaultTimeout.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		hc: &http.Client{Timeout: cfg.Timeout},
	}
}

// Get issues a GET and returns status and body.
// A non-200 status is not an error here; the poller decides.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBody {
		return resp.StatusCode, nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, maxBody)
	}

	return resp.StatusCode, body, nil
}
