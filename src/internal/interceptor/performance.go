// FILE: logbeacon/src/internal/interceptor/performance.go
package interceptor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/core"
)

// processStart stands in for navigation start.
var processStart = time.Now()

// Performance emits a single load-time record when the host marks
// itself loaded.
type Performance struct {
	hook  hook
	clock clock.Clock
	start time.Time

	mu    sync.Mutex
	fired bool
}

// NewPerformance creates a performance interceptor measuring from start.
// A zero start means process start.
func NewPerformance(clk clock.Clock, start time.Time) *Performance {
	if clk == nil {
		clk = clock.Real()
	}
	if start.IsZero() {
		start = processStart
	}
	return &Performance{clock: clk, start: start}
}

// Name returns "performance".
func (p *Performance) Name() string { return string(core.TypePerformance) }

// Install arms the one-shot load record.
func (p *Performance) Install(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("performance interceptor requires a sink")
	}
	p.hook.attach(sink)
	return nil
}

// Uninstall disarms the interceptor.
func (p *Performance) Uninstall() {
	p.hook.detach()
}

// MarkLoaded emits the load record once. Calls before Install are
// ignored and do not use up the shot.
func (p *Performance) MarkLoaded() {
	if !p.hook.installed() {
		return
	}

	p.mu.Lock()
	if p.fired {
		p.mu.Unlock()
		return
	}
	p.fired = true
	p.mu.Unlock()

	p.hook.emit(core.Record{
		Level: core.LevelInfo,
		Type:  core.TypePerformance,
		Context: map[string]any{
			core.ContextLoadTimeMs: LoadTimeMs(p.start, p.clock.Now()),
		},
	})
}

// LoadTimeMs returns the non-negative duration between start and loaded
// in whole milliseconds, rounded to nearest.
func LoadTimeMs(start, loaded time.Time) int64 {
	ms := float64(loaded.Sub(start)) / float64(time.Millisecond)
	return int64(math.Max(0, math.Round(ms)))
}
