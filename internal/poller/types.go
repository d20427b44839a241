// internal/poller/types.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/weather"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	URL string
	At  time.Time

	// StatusCode is the HTTP status, 0 when the request never completed.
	StatusCode int
	Body       []byte

	Reading weather.Reading
	Err     error // non-nil means the poll cycle failed
}

// CodeTransport is the status-block code for network, DNS and timeout failures.
const CodeTransport uint16 = 1

// TransportError wraps a failure below HTTP (dial, DNS, timeout, body read).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("poller: request %s: %v", e.URL, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Code() uint16  { return CodeTransport }

// StatusError is a completed request with a status other than 200.
// The HTTP status doubles as the status-block error code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("poller: %s returned HTTP %d", e.URL, e.StatusCode)
}
func (e *StatusError) Code() uint16 { return uint16(e.StatusCode) }
