// FILE: logbeacon/src/internal/buffer/buffer.go
package buffer

import (
	"sync"
	"sync/atomic"

	"logbeacon/src/internal/core"
)

// Buffer is an ordered, append-only staging area for records awaiting
// delivery. DrainAll swaps the backing slice under the lock, so a record
// appended concurrently lands in exactly one drained batch.
type Buffer struct {
	mu      sync.Mutex
	records []core.Record

	// Statistics
	totalAppended atomic.Uint64
	totalDrained  atomic.Uint64
	totalDrains   atomic.Uint64
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds a record to the tail.
func (b *Buffer) Append(record core.Record) {
	b.mu.Lock()
	b.records = append(b.records, record)
	b.mu.Unlock()
	b.totalAppended.Add(1)
}

// DrainAll removes and returns the full ordered contents. It returns nil
// when the buffer is empty.
func (b *Buffer) DrainAll() []core.Record {
	b.mu.Lock()
	drained := b.records
	b.records = nil
	b.mu.Unlock()

	if len(drained) == 0 {
		return nil
	}
	b.totalDrains.Add(1)
	b.totalDrained.Add(uint64(len(drained)))
	return drained
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// GetStats returns buffer statistics
func (b *Buffer) GetStats() map[string]any {
	return map[string]any{
		"pending":        b.Len(),
		"total_appended": b.totalAppended.Load(),
		"total_drained":  b.totalDrained.Load(),
		"total_drains":   b.totalDrains.Load(),
	}
}
