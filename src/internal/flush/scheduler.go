// FILE: logbeacon/src/internal/flush/scheduler.go
package flush

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logbeacon/src/internal/buffer"
	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/filter"
	"logbeacon/src/internal/transport"

	"github.com/lixenwraith/log"
)

const (
	triggerPeriodic  = "periodic"
	triggerImmediate = "immediate"
	triggerManual    = "manual"
)

// Config wires a scheduler to its collaborators. Filters and Clock may be nil.
type Config struct {
	Buffer    *buffer.Buffer
	Enricher  *buffer.Enricher
	Filters   *filter.Chain
	Transport transport.Transport
	Clock     clock.Clock
	Interval  time.Duration
}

// Scheduler moves records from the buffer to the transport, every
// interval and at once when an ERROR record is captured.
type Scheduler struct {
	buffer    *buffer.Buffer
	enricher  *buffer.Enricher
	filters   *filter.Chain
	transport transport.Transport
	clock     clock.Clock
	interval  time.Duration
	logger    *log.Logger

	// Drain and Send happen under flushMu so batches keep drain order
	flushMu sync.Mutex

	timerMu sync.Mutex
	timer   *clock.Timer
	running bool

	// Statistics
	totalCaptured    atomic.Uint64
	totalFiltered    atomic.Uint64
	captureErrors    atomic.Uint64
	periodicFlushes  atomic.Uint64
	immediateFlushes atomic.Uint64
	manualFlushes    atomic.Uint64
	emptyFlushes     atomic.Uint64
	batchesSent      atomic.Uint64
}

// New creates a scheduler. The periodic trigger is armed by Start.
func New(cfg Config, logger *log.Logger) (*Scheduler, error) {
	if cfg.Buffer == nil {
		return nil, fmt.Errorf("scheduler requires a buffer")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("scheduler requires a transport")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Enricher == nil {
		cfg.Enricher = buffer.NewEnricher(cfg.Clock, buffer.EnricherOptions{})
	}
	if cfg.Interval <= 0 {
		cfg.Interval = core.DefaultFlushInterval
	}

	return &Scheduler{
		buffer:    cfg.Buffer,
		enricher:  cfg.Enricher,
		filters:   cfg.Filters,
		transport: cfg.Transport,
		clock:     cfg.Clock,
		interval:  cfg.Interval,
		logger:    logger,
	}, nil
}

// Capture is the sink shared by every producer. It stamps the partial
// record, appends it and flushes immediately for ERROR records. It
// never panics into the caller.
func (s *Scheduler) Capture(partial core.Record) {
	defer func() {
		if r := recover(); r != nil {
			s.captureErrors.Add(1)
			s.logger.Error("msg", "Capture failed",
				"component", "flush_scheduler",
				"panic", fmt.Sprint(r))
		}
	}()

	record := s.enricher.Stamp(partial)
	if !s.filters.Apply(record) {
		s.totalFiltered.Add(1)
		return
	}

	s.buffer.Append(record)
	s.totalCaptured.Add(1)

	if record.Level == core.LevelError {
		s.flush(triggerImmediate)
	}
}

// Flush sends everything currently buffered as one batch.
func (s *Scheduler) Flush() {
	s.flush(triggerManual)
}

// Start arms the periodic trigger. Calling Start again is a no-op.
func (s *Scheduler) Start() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.timer = s.clock.AfterFunc(s.interval, s.tick)

	s.logger.Debug("msg", "Flush scheduler started",
		"component", "flush_scheduler",
		"interval_ms", s.interval.Milliseconds())
}

// Stop disarms the periodic trigger. Buffered records are not flushed.
func (s *Scheduler) Stop() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.timer.Stop()
	s.timer = nil

	s.logger.Debug("msg", "Flush scheduler stopped",
		"component", "flush_scheduler",
		"pending_records", s.buffer.Len())
}

func (s *Scheduler) tick() {
	s.timerMu.Lock()
	running := s.running
	s.timerMu.Unlock()
	if !running {
		return
	}

	s.flush(triggerPeriodic)

	s.timerMu.Lock()
	if s.running {
		s.timer = s.clock.AfterFunc(s.interval, s.tick)
	}
	s.timerMu.Unlock()
}

func (s *Scheduler) flush(trigger string) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	switch trigger {
	case triggerPeriodic:
		s.periodicFlushes.Add(1)
	case triggerImmediate:
		s.immediateFlushes.Add(1)
	default:
		s.manualFlushes.Add(1)
	}

	records := s.buffer.DrainAll()
	if len(records) == 0 {
		s.emptyFlushes.Add(1)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("msg", "Transport panicked on send",
				"component", "flush_scheduler",
				"trigger", trigger,
				"panic", fmt.Sprint(r))
		}
	}()

	s.transport.Send(core.Batch{Records: records, SentAt: s.clock.Now()})
	s.batchesSent.Add(1)
}

// GetStats returns scheduler statistics.
func (s *Scheduler) GetStats() map[string]any {
	s.timerMu.Lock()
	running := s.running
	s.timerMu.Unlock()

	return map[string]any{
		"running":           running,
		"interval_ms":       s.interval.Milliseconds(),
		"total_captured":    s.totalCaptured.Load(),
		"total_filtered":    s.totalFiltered.Load(),
		"capture_errors":    s.captureErrors.Load(),
		"periodic_flushes":  s.periodicFlushes.Load(),
		"immediate_flushes": s.immediateFlushes.Load(),
		"manual_flushes":    s.manualFlushes.Load(),
		"empty_flushes":     s.emptyFlushes.Load(),
		"batches_sent":      s.batchesSent.Load(),
		"buffer":            s.buffer.GetStats(),
		"filters":           s.filters.GetStats(),
	}
}
