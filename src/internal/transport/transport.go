// FILE: logbeacon/src/internal/transport/transport.go
package transport

import (
	"fmt"
	"os"
	"strings"
	"time"

	"logbeacon/src/internal/config"
	"logbeacon/src/internal/core"

	"github.com/lixenwraith/log"
)

// Transport delivers batches to the collection endpoint. Send dispatches
// and returns at once; delivery failures are observed internally and
// never reported to the caller.
type Transport interface {
	// Send hands a batch over for a single delivery attempt
	Send(batch core.Batch)

	// Start begins background delivery
	Start() error

	// Stop shuts delivery down; batches not yet attempted are dropped
	Stop()

	// GetStats returns transport statistics
	GetStats() Stats
}

// Waiter is implemented by transports that can block until every batch
// handed to Send has been attempted.
type Waiter interface {
	Wait(timeout time.Duration) bool
}

// Stats contains statistics about a transport
type Stats struct {
	Type           string
	TotalBatches   uint64
	TotalRecords   uint64
	FailedBatches  uint64
	DroppedBatches uint64
	StartTime      time.Time
	LastSent       time.Time
	Details        map[string]any
}

// New creates the transport matching the endpoint scheme.
func New(cfg *config.SDKConfig, identity Identity, logger *log.Logger) (Transport, error) {
	u, err := config.ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case config.SchemeHTTP, config.SchemeHTTPS:
		h, err := NewHTTPClient(u, &cfg.Transport, identity, logger)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.SchemeStdout, config.SchemeStderr:
		w := os.Stdout
		if strings.EqualFold(u.Scheme, config.SchemeStderr) {
			w = os.Stderr
		}
		c, err := NewConsole(w, cfg.Transport.Queue(), logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedEndpoint, u.Scheme)
	}
}

// Identity names the client towards the collector
type Identity struct {
	AppName   string
	SessionID string
}
