// FILE: logbeacon/src/pkg/beacon/beacon_test.go
package beacon

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/config"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type recordingTransport struct {
	mu      sync.Mutex
	batches []core.Batch
	starts  int
	stops   int
}

func (r *recordingTransport) Send(batch core.Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *recordingTransport) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return nil
}

func (r *recordingTransport) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
}

func (r *recordingTransport) GetStats() transport.Stats {
	return transport.Stats{Type: "recording"}
}

func (r *recordingTransport) sent() []core.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Batch(nil), r.batches...)
}

func (r *recordingTransport) records() []core.Record {
	var all []core.Record
	for _, b := range r.sent() {
		all = append(all, b.Records...)
	}
	return all
}

type harness struct {
	sdk       *SDK
	clock     *clock.FakeClock
	transport *recordingTransport
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:     clock.Fake(epoch),
		transport: &recordingTransport{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	h.sdk = New(
		WithClock(h.clock),
		WithTransport(h.transport),
		WithConsoleOutput(h.stdout, h.stderr),
		WithNavigationStart(epoch),
	)
	t.Cleanup(h.sdk.Close)
	return h
}

func (h *harness) init(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Endpoint: "http://e/logs", AppName: "shop"}
	}
	require.NoError(t, h.sdk.Init(cfg))
}

func (h *harness) pending() int {
	stats := h.sdk.Stats()
	scheduler, ok := stats["scheduler"].(map[string]any)
	if !ok {
		return 0
	}
	return scheduler["buffer"].(map[string]any)["pending"].(int)
}

func messagesOf(records []core.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Message)
	}
	return out
}

func TestSDK_PeriodicDelivery(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.sdk.Log("hello", nil)

	h.clock.Advance(999 * time.Millisecond)
	assert.Empty(t, h.transport.sent())
	assert.Equal(t, 2, h.pending())

	h.clock.Advance(time.Millisecond)
	sent := h.transport.sent()
	require.Len(t, sent, 1)
	require.GreaterOrEqual(t, sent[0].Len(), 2)
	assert.Equal(t, 0, h.pending())

	initRecord, hello := sent[0].Records[0], sent[0].Records[1]
	assert.Equal(t, core.TypeSDK, initRecord.Type)
	assert.Equal(t, core.InitMessage, initRecord.Message)

	assert.Equal(t, core.TypeCustom, hello.Type)
	assert.Equal(t, core.LevelInfo, hello.Level)
	assert.Equal(t, "hello", hello.Message)
	assert.Equal(t, map[string]any{}, hello.Context[core.ContextData])
	assert.Equal(t, "shop", hello.AppName)
	assert.Equal(t, h.sdk.SessionID(), hello.SessionID)
	assert.Equal(t, epoch, hello.Timestamp)
}

func TestSDK_ErrorSendsImmediately(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.sdk.Error("boom", map[string]any{"order": 7})

	sent := h.transport.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{core.InitMessage, "boom"}, messagesOf(sent[0].Records))

	boom := sent[0].Records[1]
	assert.Equal(t, core.LevelError, boom.Level)
	assert.Equal(t, core.TypeCustom, boom.Type)
	assert.Equal(t, map[string]any{"order": 7}, boom.Context[core.ContextData])
	assert.Equal(t, 0, h.pending())
}

func TestSDK_LogCopiesData(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	data := map[string]any{"step": 1}
	h.sdk.Log("progress", data)
	data["step"] = 2

	h.clock.Advance(time.Second)
	records := h.transport.records()
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{"step": 1}, records[1].Context[core.ContextData])
}

func TestSDK_InitIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)
	h.init(t, &Config{Endpoint: "http://other/logs", AppName: "other"})

	assert.Equal(t, 1, h.transport.starts)
	assert.Equal(t, 1, h.clock.PendingCount())

	h.sdk.Console().Log("once")
	assert.Equal(t, "once\n", h.stdout.String())

	h.clock.Advance(time.Second)
	records := h.transport.records()
	assert.Equal(t, []string{core.InitMessage, "once"}, messagesOf(records))
	assert.Equal(t, "shop", records[0].AppName)
	assert.Equal(t, "http://e/logs", h.sdk.Stats()["endpoint"])
}

func TestSDK_InvalidConfigHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *Config
		target error
	}{
		{"Nil", nil, config.ErrMissingEndpoint},
		{"Empty", &Config{}, config.ErrMissingEndpoint},
		{"Blank", &Config{Endpoint: "   "}, config.ErrMissingEndpoint},
		{"UnsupportedScheme", &Config{Endpoint: "ftp://e/logs"}, config.ErrUnsupportedEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			err := h.sdk.Init(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.True(t, errors.Is(err, tt.target))

			assert.Equal(t, 0, h.clock.PendingCount())
			assert.Equal(t, 0, h.transport.starts)
			assert.Equal(t, false, h.sdk.Stats()["initialized"])

			// Console is not wrapped and custom logs are dropped
			h.sdk.Console().Error("plain")
			h.sdk.Log("dropped", nil)
			h.clock.Advance(5 * time.Second)
			assert.Empty(t, h.transport.sent())
			assert.Equal(t, "plain\n", h.stderr.String())

			// A later valid Init still works
			h.init(t, nil)
			assert.Equal(t, 1, h.transport.starts)
		})
	}
}

func TestSDK_BeforeInitIsNoop(t *testing.T) {
	h := newHarness(t)

	assert.NotPanics(t, func() {
		h.sdk.Log("early", nil)
		h.sdk.Error("early", nil)
		h.sdk.MarkLoaded()
	})
	assert.Empty(t, h.sdk.SessionID())

	h.init(t, nil)
	h.clock.Advance(time.Second)
	assert.Equal(t, []string{core.InitMessage}, messagesOf(h.transport.records()))
}

func TestSDK_ConsoleCapture(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.sdk.Console().Log("user", 42, "logged in")
	h.sdk.Console().Warn("slow")
	assert.Equal(t, "user 42 logged in\n", h.stdout.String())
	assert.Equal(t, "slow\n", h.stderr.String())

	h.clock.Advance(time.Second)
	records := h.transport.records()
	require.Len(t, records, 3)
	assert.Equal(t, core.TypeConsole, records[1].Type)
	assert.Equal(t, "user 42 logged in", records[1].Message)
	assert.Equal(t, core.LevelWarn, records[2].Level)

	// Console errors flush at once
	h.sdk.Console().Error("fatal", "state")
	assert.Len(t, h.transport.sent(), 2)
}

func TestSDK_DisabledInterceptors(t *testing.T) {
	h := newHarness(t)
	h.init(t, &Config{
		Endpoint: "http://e/logs",
		Interceptors: InterceptorConfig{
			DisableConsole:     true,
			DisablePerformance: true,
		},
	})

	h.sdk.Console().Log("not captured")
	h.sdk.MarkLoaded()
	h.clock.Advance(time.Second)

	assert.Equal(t, []string{core.InitMessage}, messagesOf(h.transport.records()))
	assert.Equal(t, []string{"runtime", "promise", "network"}, h.sdk.Stats()["interceptors"])
	assert.Equal(t, core.DefaultAppName, h.transport.records()[0].AppName)
}

func TestSDK_Recover(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	assert.PanicsWithValue(t, "kaboom", func() {
		defer h.sdk.Recover()
		panic("kaboom")
	})

	sent := h.transport.sent()
	require.Len(t, sent, 1)
	runtimeRecord := sent[0].Records[1]
	assert.Equal(t, core.TypeRuntime, runtimeRecord.Type)
	assert.Equal(t, core.LevelError, runtimeRecord.Level)
	assert.Equal(t, "kaboom", runtimeRecord.Message)
	assert.Contains(t, runtimeRecord.Context[core.ContextSource], "beacon_test.go")
}

// asyncTransport delivers on its own goroutine after a delay, like the
// real dispatcher, and implements transport.Waiter.
type asyncTransport struct {
	recordingTransport
	delay   time.Duration
	pending sync.WaitGroup
}

func (a *asyncTransport) Send(batch core.Batch) {
	delay := a.delay
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		time.Sleep(delay)
		a.recordingTransport.Send(batch)
	}()
}

func (a *asyncTransport) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestSDK_RecoverWaitsForDelivery(t *testing.T) {
	tr := &asyncTransport{delay: 50 * time.Millisecond}
	sdk := New(
		WithClock(clock.Fake(epoch)),
		WithTransport(tr),
		WithConsoleOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	t.Cleanup(sdk.Close)
	require.NoError(t, sdk.Init(&Config{Endpoint: "http://e/logs"}))

	assert.PanicsWithValue(t, "fatal", func() {
		defer sdk.Recover()
		panic("fatal")
	})

	// Delivered before the re-panic escaped Recover
	records := tr.records()
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.Equal(t, core.TypeRuntime, last.Type)
	assert.Equal(t, "fatal", last.Message)
}

func TestSDK_Drain(t *testing.T) {
	tr := &asyncTransport{delay: 10 * time.Millisecond}
	sdk := New(
		WithClock(clock.Fake(epoch)),
		WithTransport(tr),
		WithConsoleOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	t.Cleanup(sdk.Close)

	assert.True(t, sdk.Drain(time.Second), "no-op before Init")
	require.NoError(t, sdk.Init(&Config{Endpoint: "http://e/logs"}))

	sdk.Log("queued", nil)
	assert.True(t, sdk.Drain(time.Second))
	assert.Equal(t, []string{core.InitMessage, "queued"}, messagesOf(tr.records()))

	tr.delay = 200 * time.Millisecond
	sdk.Log("slow", nil)
	assert.False(t, sdk.Drain(20*time.Millisecond))
	tr.pending.Wait()
}

func TestSDK_Go(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.sdk.Go(func() error { return errors.New("worker failed") })
	h.sdk.Go(func() error { return nil })
	h.sdk.promise.Wait()

	sent := h.transport.sent()
	require.Len(t, sent, 1)
	rejection := sent[0].Records[1]
	assert.Equal(t, core.TypePromise, rejection.Type)
	assert.Equal(t, core.RejectionMessage, rejection.Message)
	assert.Equal(t, "worker failed", rejection.Context[core.ContextReason])
}

func TestSDK_NetworkExcludesCollector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	h := newHarness(t)
	client := h.sdk.WrapClient(server.Client())
	h.init(t, &Config{Endpoint: server.URL + "/logs"})

	for _, path := range []string{"/logs", "/api/orders", "/logs/batch"} {
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	h.clock.Advance(time.Second)
	records := h.transport.records()
	require.Len(t, records, 2)
	assert.Equal(t, core.TypeNetwork, records[1].Type)
	assert.Equal(t, server.URL+"/api/orders", records[1].Context[core.ContextRequestURL])
	assert.Equal(t, http.StatusNoContent, records[1].Context[core.ContextStatus])
}

func TestSDK_MarkLoaded(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.clock.Advance(500 * time.Millisecond)
	h.sdk.MarkLoaded()
	h.sdk.MarkLoaded()
	h.clock.Advance(500 * time.Millisecond)

	records := h.transport.records()
	require.Len(t, records, 2)
	assert.Equal(t, core.TypePerformance, records[1].Type)
	assert.Equal(t, int64(500), records[1].Context[core.ContextLoadTimeMs])
}

func TestSDK_Flush(t *testing.T) {
	h := newHarness(t)
	h.sdk.Flush()

	h.init(t, nil)
	h.sdk.Log("now", nil)
	h.sdk.Flush()

	sent := h.transport.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{core.InitMessage, "now"}, messagesOf(sent[0].Records))
}

func TestSDK_Close(t *testing.T) {
	h := newHarness(t)
	h.init(t, nil)

	h.sdk.Log("unsent", nil)
	h.sdk.Close()
	h.sdk.Close()

	assert.Equal(t, 1, h.transport.stops)
	assert.Equal(t, 0, h.clock.PendingCount())

	h.clock.Advance(5 * time.Second)
	h.sdk.Log("after close", nil)
	h.sdk.Console().Log("plain")
	assert.Empty(t, h.transport.sent())
	assert.Equal(t, "plain\n", h.stdout.String())

	assert.ErrorIs(t, h.sdk.Init(&Config{Endpoint: "http://e/logs"}), ErrClosed)
}

func TestSDK_DeliveryFailureIsolation(t *testing.T) {
	sdk := New(WithConsoleOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	defer sdk.Close()

	// Nothing listens on port 1
	require.NoError(t, sdk.Init(&Config{
		Endpoint:  "http://127.0.0.1:1/logs",
		Transport: TransportConfig{TimeoutMS: 200},
	}))

	assert.NotPanics(t, func() {
		sdk.Error("first", nil)
		sdk.Error("second", nil)
	})

	assert.Eventually(t, func() bool {
		stats, ok := sdk.Stats()["transport"].(transport.Stats)
		return ok && stats.TotalBatches == 2 && stats.FailedBatches == 2
	}, 5*time.Second, 20*time.Millisecond)
}
