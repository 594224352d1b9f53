// FILE: logbeacon/src/internal/transport/dispatcher.go
package transport

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logbeacon/src/internal/core"

	"github.com/lixenwraith/log"
)

const waitPollInterval = 5 * time.Millisecond

// dispatcher queues batches and attempts each one exactly once on a
// single worker goroutine, so batches leave in the order they were sent.
type dispatcher struct {
	component string
	deliver   func(core.Batch) error
	logger    *log.Logger

	// Runtime
	queue     chan core.Batch
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	startTime time.Time

	// Batches accepted by Send and not yet attempted
	pending atomic.Int64

	// Statistics
	totalBatches   atomic.Uint64
	totalRecords   atomic.Uint64
	failedBatches  atomic.Uint64
	droppedBatches atomic.Uint64
	lastSent       atomic.Value // time.Time
}

func newDispatcher(component string, queueSize int, deliver func(core.Batch) error, logger *log.Logger) *dispatcher {
	if queueSize <= 0 {
		queueSize = core.DefaultQueueSize
	}
	d := &dispatcher{
		component: component,
		deliver:   deliver,
		logger:    logger,
		queue:     make(chan core.Batch, queueSize),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	d.lastSent.Store(time.Time{})
	return d
}

// Send enqueues the batch without blocking. A full queue or a stopped
// dispatcher drops the batch.
func (d *dispatcher) Send(batch core.Batch) {
	if batch.Len() == 0 {
		return
	}

	select {
	case <-d.done:
		d.droppedBatches.Add(1)
		return
	default:
	}

	d.pending.Add(1)
	select {
	case d.queue <- batch:
	default:
		d.pending.Add(-1)
		d.droppedBatches.Add(1)
		d.logger.Warn("msg", "Delivery queue full, dropping batch",
			"component", d.component,
			"batch_size", batch.Len())
	}
}

// Start launches the delivery worker.
func (d *dispatcher) Start() error {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go d.loop()
	})
	return nil
}

// Stop terminates the worker; queued batches are discarded.
func (d *dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()

	d.logger.Debug("msg", "Transport stopped",
		"component", d.component,
		"total_batches", d.totalBatches.Load(),
		"failed_batches", d.failedBatches.Load(),
		"dropped_batches", d.droppedBatches.Load())
}

func (d *dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case batch := <-d.queue:
			d.attempt(batch)
		case <-d.done:
			return
		}
	}
}

// Wait blocks until every batch accepted by Send has been attempted, the
// dispatcher stops, or timeout passes. It reports whether nothing is left
// pending.
func (d *dispatcher) Wait(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		if d.pending.Load() == 0 {
			return true
		}
		select {
		case <-d.done:
			return d.pending.Load() == 0
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// attempt performs one delivery; failures are counted and logged only.
func (d *dispatcher) attempt(batch core.Batch) {
	defer d.pending.Add(-1)

	d.totalBatches.Add(1)
	d.totalRecords.Add(uint64(batch.Len()))
	d.lastSent.Store(time.Now())

	defer func() {
		if r := recover(); r != nil {
			d.failedBatches.Add(1)
			d.logger.Error("msg", "Delivery panicked",
				"component", d.component,
				"panic", fmt.Sprint(r))
		}
	}()

	if err := d.deliver(batch); err != nil {
		d.failedBatches.Add(1)
		d.logger.Debug("msg", "Batch delivery failed",
			"component", d.component,
			"batch_size", batch.Len(),
			"error", err)
	}
}

func (d *dispatcher) stats(kind string, details map[string]any) Stats {
	lastSent, _ := d.lastSent.Load().(time.Time)
	if details == nil {
		details = make(map[string]any)
	}
	details["queued"] = len(d.queue)
	details["pending"] = d.pending.Load()

	return Stats{
		Type:           kind,
		TotalBatches:   d.totalBatches.Load(),
		TotalRecords:   d.totalRecords.Load(),
		FailedBatches:  d.failedBatches.Load(),
		DroppedBatches: d.droppedBatches.Load(),
		StartTime:      d.startTime,
		LastSent:       lastSent,
		Details:        details,
	}
}
