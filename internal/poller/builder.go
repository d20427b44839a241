// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/amsky-bridge/internal/config"
	"github.com/tamzrod/amsky-bridge/internal/poller/httpjson"
)

// Build constructs a Poller wired to an HTTP JSON client.
// No retries: one request per PollOnce.
func Build(d cfg.DriverConfig) (*Poller, error) {
	client := httpjson.New(httpjson.Config{
		Timeout: time.Duration(d.TimeoutMs) * time.Millisecond,
	})
	return New(client)
}
