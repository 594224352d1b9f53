// FILE: logbeacon/src/pkg/beacon/options.go
package beacon

import (
	"io"
	"time"

	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/transport"

	"github.com/lixenwraith/log"
)

type options struct {
	logger          *log.Logger
	clock           clock.Clock
	transport       transport.Transport
	stdout          io.Writer
	stderr          io.Writer
	navigationStart time.Time
}

// Option configures an SDK instance.
type Option func(*options)

// WithLogger sets the diagnostics logger. The SDK never logs through
// its own console.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// WithTransport replaces the transport chosen from the endpoint.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithConsoleOutput sets the streams behind Console(). Defaults are the
// process stdout and stderr.
func WithConsoleOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithNavigationStart sets the instant load time is measured from.
// Default: process start.
func WithNavigationStart(t time.Time) Option {
	return func(o *options) {
		o.navigationStart = t
	}
}

func defaultOptions() options {
	return options{
		clock: clock.Real(),
	}
}
