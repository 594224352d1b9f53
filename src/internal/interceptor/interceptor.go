// FILE: logbeacon/src/internal/interceptor/interceptor.go
package interceptor

import (
	"sync"

	"logbeacon/src/internal/core"
)

// Sink receives partial records. Producers fill Level, Type, Message and
// Context; the capture boundary stamps everything else.
type Sink func(core.Record)

// Interceptor observes one kind of host signal and forwards it to a sink.
type Interceptor interface {
	// Name identifies the interceptor in logs and statistics
	Name() string

	// Install starts observation. Installing twice is a no-op.
	Install(sink Sink) error

	// Uninstall stops observation and restores any wrapped behavior
	Uninstall()
}

// hook holds the sink of an installed interceptor.
type hook struct {
	mu   sync.RWMutex
	sink Sink
}

func (h *hook) attach(sink Sink) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sink != nil || sink == nil {
		return false
	}
	h.sink = sink
	return true
}

func (h *hook) detach() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sink == nil {
		return false
	}
	h.sink = nil
	return true
}

func (h *hook) current() Sink {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sink
}

func (h *hook) installed() bool {
	return h.current() != nil
}

// emit forwards record when installed. A panicking sink is contained.
func (h *hook) emit(record core.Record) {
	sink := h.current()
	if sink == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	sink(record)
}
