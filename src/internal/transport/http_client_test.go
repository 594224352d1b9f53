// FILE: logbeacon/src/internal/transport/http_client_test.go
package transport

import (
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	"logbeacon/src/internal/config"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/version"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type capturedRequest struct {
	method      string
	path        string
	contentType string
	userAgent   string
	auth        string
	body        []byte
}

// startCollector serves an in-memory collector answering with status.
func startCollector(t *testing.T, status int) (*fasthttputil.InmemoryListener, <-chan capturedRequest) {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	requests := make(chan capturedRequest, 16)

	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			requests <- capturedRequest{
				method:      string(ctx.Method()),
				path:        string(ctx.Path()),
				contentType: string(ctx.Request.Header.ContentType()),
				userAgent:   string(ctx.Request.Header.UserAgent()),
				auth:        string(ctx.Request.Header.Peek("Authorization")),
				body:        append([]byte(nil), ctx.PostBody()...),
			}
			ctx.SetStatusCode(status)
		},
	}
	go func() { _ = server.Serve(ln) }()

	t.Cleanup(func() { _ = ln.Close() })
	return ln, requests
}

func newTestClient(t *testing.T, ln *fasthttputil.InmemoryListener, opts *config.TransportConfig) *HTTPClient {
	t.Helper()

	u, err := url.Parse("http://collector.local/ingest")
	require.NoError(t, err)

	h, err := NewHTTPClient(u, opts, Identity{AppName: "shop", SessionID: "sess-1"}, log.NewLogger())
	require.NoError(t, err)
	if ln != nil {
		h.client.Dial = func(addr string) (net.Conn, error) {
			return ln.Dial()
		}
	}
	return h
}

func testBatch(messages ...string) core.Batch {
	records := make([]core.Record, 0, len(messages))
	for _, m := range messages {
		records = append(records, core.Record{
			Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Level:     core.LevelInfo,
			Type:      core.TypeSDK,
			Message:   m,
			AppName:   "shop",
			SessionID: "sess-1",
		})
	}
	return core.Batch{Records: records, SentAt: time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC)}
}

func receive(t *testing.T, requests <-chan capturedRequest) capturedRequest {
	t.Helper()
	select {
	case r := <-requests:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return capturedRequest{}
	}
}

func TestHTTPClient_Delivery(t *testing.T) {
	ln, requests := startCollector(t, fasthttp.StatusOK)
	h := newTestClient(t, ln, nil)
	require.NoError(t, h.Start())
	defer h.Stop()

	h.Send(testBatch("hello", "world"))
	req := receive(t, requests)

	assert.Equal(t, fasthttp.MethodPost, req.method)
	assert.Equal(t, "/ingest", req.path)
	assert.Equal(t, "application/json", req.contentType)
	assert.Equal(t, version.UserAgent(), req.userAgent)
	assert.Empty(t, req.auth)

	var body struct {
		Batch  []map[string]any `json:"batch"`
		SentAt string           `json:"sent_at"`
	}
	require.NoError(t, json.Unmarshal(req.body, &body))
	require.Len(t, body.Batch, 2)
	assert.Equal(t, "hello", body.Batch[0]["message"])
	assert.Equal(t, "world", body.Batch[1]["message"])
	assert.Equal(t, "2024-05-01T10:00:01Z", body.SentAt)

	assert.Eventually(t, func() bool {
		stats := h.GetStats()
		return stats.TotalBatches == 1 && stats.TotalRecords == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "http", h.GetStats().Type)
	assert.Equal(t, uint64(0), h.GetStats().FailedBatches)
}

func TestHTTPClient_PreservesBatchOrder(t *testing.T) {
	ln, requests := startCollector(t, fasthttp.StatusOK)
	h := newTestClient(t, ln, nil)
	require.NoError(t, h.Start())
	defer h.Stop()

	for _, m := range []string{"first", "second", "third"} {
		h.Send(testBatch(m))
	}

	for _, want := range []string{"first", "second", "third"} {
		req := receive(t, requests)
		var body struct {
			Batch []map[string]any `json:"batch"`
		}
		require.NoError(t, json.Unmarshal(req.body, &body))
		require.Len(t, body.Batch, 1)
		assert.Equal(t, want, body.Batch[0]["message"])
	}
}

func TestHTTPClient_BearerToken(t *testing.T) {
	ln, requests := startCollector(t, fasthttp.StatusAccepted)
	h := newTestClient(t, ln, &config.TransportConfig{AuthSecret: "s3cret"})
	require.NoError(t, h.Start())
	defer h.Stop()

	h.Send(testBatch("hello"))
	req := receive(t, requests)
	require.Contains(t, req.auth, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(req.auth[len("Bearer "):], claims, func(*jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "shop", claims.Issuer)
	assert.Equal(t, "sess-1", claims.Subject)
}

func TestHTTPClient_NonSuccessStatusIsAttempted(t *testing.T) {
	ln, requests := startCollector(t, fasthttp.StatusServiceUnavailable)
	h := newTestClient(t, ln, nil)
	require.NoError(t, h.Start())
	defer h.Stop()

	h.Send(testBatch("hello"))
	receive(t, requests)

	assert.Eventually(t, func() bool {
		return h.GetStats().Details["rejected_batches"] == uint64(1)
	}, time.Second, 10*time.Millisecond)

	stats := h.GetStats()
	assert.Equal(t, uint64(0), stats.FailedBatches)
	assert.Equal(t, int64(fasthttp.StatusServiceUnavailable), stats.Details["last_status"])

	// No retry
	select {
	case <-requests:
		t.Fatal("batch was retried")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHTTPClient_ConnectionFailureIsSwallowed(t *testing.T) {
	h := newTestClient(t, nil, &config.TransportConfig{TimeoutMS: 200})
	h.client.Dial = func(addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	require.NoError(t, h.Start())
	defer h.Stop()

	assert.NotPanics(t, func() {
		h.Send(testBatch("a"))
		h.Send(testBatch("b"))
	})

	assert.Eventually(t, func() bool {
		return h.GetStats().FailedBatches == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(2), h.GetStats().TotalBatches)
}

func TestHTTPClient_QueueBounds(t *testing.T) {
	t.Run("FullQueueDrops", func(t *testing.T) {
		h := newTestClient(t, nil, &config.TransportConfig{QueueSize: 1})

		// Worker not started, so the queue holds exactly one batch
		h.Send(testBatch("kept"))
		h.Send(testBatch("dropped"))

		stats := h.GetStats()
		assert.Equal(t, uint64(1), stats.DroppedBatches)
		assert.Equal(t, 1, stats.Details["queued"])
	})

	t.Run("EmptyBatchIgnored", func(t *testing.T) {
		h := newTestClient(t, nil, nil)
		h.Send(core.Batch{})
		assert.Equal(t, 0, h.GetStats().Details["queued"])
		assert.Equal(t, uint64(0), h.GetStats().DroppedBatches)
	})

	t.Run("SendAfterStopDrops", func(t *testing.T) {
		h := newTestClient(t, nil, nil)
		require.NoError(t, h.Start())
		h.Stop()

		h.Send(testBatch("late"))
		assert.Equal(t, uint64(1), h.GetStats().DroppedBatches)
	})
}

func TestNewHTTPClient_NilEndpoint(t *testing.T) {
	h, err := NewHTTPClient(nil, nil, Identity{}, log.NewLogger())
	assert.Error(t, err)
	assert.Nil(t, h)
}
