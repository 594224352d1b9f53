// FILE: logbeacon/src/internal/interceptor/promise.go
package interceptor

import (
	"fmt"
	"sync"

	"logbeacon/src/internal/core"
)

// Promise reports errors from detached goroutines that nobody joins.
type Promise struct {
	hook hook
	wg   sync.WaitGroup
}

// NewPromise creates a promise interceptor.
func NewPromise() *Promise {
	return &Promise{}
}

// Name returns "promise".
func (p *Promise) Name() string { return string(core.TypePromise) }

// Install starts reporting rejections to sink.
func (p *Promise) Install(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("promise interceptor requires a sink")
	}
	p.hook.attach(sink)
	return nil
}

// Uninstall stops reporting.
func (p *Promise) Uninstall() {
	p.hook.detach()
}

// Go runs fn on a detached goroutine. A non-nil error is reported as an
// unhandled rejection. fn always runs, installed or not.
func (p *Promise) Go(fn func() error) {
	if fn == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := fn(); err != nil {
			p.Reject(err)
		}
	}()
}

// Reject reports reason as an unhandled rejection.
func (p *Promise) Reject(reason any) {
	p.hook.emit(core.Record{
		Level:   core.LevelError,
		Type:    core.TypePromise,
		Message: core.RejectionMessage,
		Context: map[string]any{
			core.ContextReason: stringify(reason),
		},
	})
}

// Wait blocks until every goroutine started by Go has returned.
func (p *Promise) Wait() {
	p.wg.Wait()
}

func stringify(reason any) string {
	if err, ok := reason.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(reason)
}
