// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/weather"
)

// Client abstracts the HTTP operation the poller needs.
// status is 0 and err non-nil when no response was received.
type Client interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// Poller is a dumb, single-shot reader. The caller owns the clock.
type Poller struct {
	client Client
}

// New creates a poller around a transport client.
func New(client Client) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	return &Poller{client: client}, nil
}

// PollOnce performs exactly one poll cycle against url.
// All-or-nothing: a transport, status or decode failure yields an empty
// Reading and a non-nil Err.
func (p *Poller) PollOnce(ctx context.Context, url string) PollResult {
	res := PollResult{
		URL: url,
		At:  time.Now(),
	}

	status, body, err := p.client.Get(ctx, url)
	res.StatusCode = status
	if err != nil {
		res.Err = &TransportError{URL: url, Err: err}
		return res
	}

	res.Body = body

	if status != http.StatusOK {
		res.Err = &StatusError{URL: url, StatusCode: status}
		return res
	}

	reading, err := weather.Decode(body)
	if err != nil {
		res.Err = err
		return res
	}

	// Commit only if the whole document was read
	res.Reading = reading
	return res
}
