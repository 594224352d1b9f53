// FILE: logbeacon/src/internal/interceptor/runtime.go
package interceptor

import (
	"fmt"
	"runtime"
	"strings"

	"logbeacon/src/internal/core"
)

// Runtime reports panics as runtime records. A reported panic is
// re-raised so the host sees the same failure it would without capture.
type Runtime struct {
	hook hook
}

// NewRuntime creates a runtime interceptor.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Name returns "runtime".
func (r *Runtime) Name() string { return string(core.TypeRuntime) }

// Install starts reporting panics to sink.
func (r *Runtime) Install(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("runtime interceptor requires a sink")
	}
	r.hook.attach(sink)
	return nil
}

// Uninstall stops reporting.
func (r *Runtime) Uninstall() {
	r.hook.detach()
}

// Recover must be deferred directly: defer rt.Recover().
func (r *Runtime) Recover() {
	if v := recover(); v != nil {
		r.Report(v)
		panic(v)
	}
}

// Report emits a runtime record for a recovered panic value. When
// called while panicking, the location is the panic site; otherwise it
// is the caller of Report.
func (r *Runtime) Report(value any) {
	if !r.hook.installed() {
		return
	}

	file, line := panicSite(3)
	r.hook.emit(core.Record{
		Level:   core.LevelError,
		Type:    core.TypeRuntime,
		Message: panicMessage(value),
		Context: map[string]any{
			core.ContextSource: file,
			core.ContextLine:   line,
			core.ContextColumn: 0,
		},
	})
}

func panicMessage(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}

// panicSite finds the first frame past runtime.gopanic that is not part
// of the runtime itself. skip is passed to runtime.Callers; without a
// panic in progress the first frame kept is returned.
func panicSite(skip int) (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var fallback runtime.Frame
	haveFallback := false
	panicking := false

	for {
		frame, more := frames.Next()
		if !haveFallback {
			fallback = frame
			haveFallback = true
		}

		switch {
		case frame.Function == "runtime.gopanic":
			panicking = true
		case panicking && !isRuntimeFrame(frame.Function):
			return frame.File, frame.Line
		}

		if !more {
			break
		}
	}

	return fallback.File, fallback.Line
}

func isRuntimeFrame(function string) bool {
	return strings.HasPrefix(function, "runtime.") || strings.HasPrefix(function, "internal/runtime/")
}
