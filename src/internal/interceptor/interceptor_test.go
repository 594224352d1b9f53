// FILE: logbeacon/src/internal/interceptor/interceptor_test.go
package interceptor

import (
	"sync"

	"logbeacon/src/internal/core"
)

// recorder is a Sink that keeps everything it receives.
type recorder struct {
	mu      sync.Mutex
	records []core.Record
}

func (r *recorder) sink(record core.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recorder) all() []core.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Record(nil), r.records...)
}

// Compile-time interface checks
var (
	_ Interceptor = (*ConsoleInterceptor)(nil)
	_ Interceptor = (*Runtime)(nil)
	_ Interceptor = (*Promise)(nil)
	_ Interceptor = (*Network)(nil)
	_ Interceptor = (*Performance)(nil)
)
