// FILE: logbeacon/src/internal/transport/transport_test.go
package transport

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"logbeacon/src/internal/config"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNew(t *testing.T) {
	logger := log.NewLogger()

	tests := []struct {
		name     string
		endpoint string
		kind     string
		wantErr  bool
	}{
		{name: "HTTP", endpoint: "http://collector.local/logs", kind: "http"},
		{name: "HTTPS", endpoint: "https://collector.local/logs", kind: "http"},
		{name: "Stdout", endpoint: "stdout:", kind: "console"},
		{name: "Stderr", endpoint: "stderr:", kind: "console"},
		{name: "Unsupported", endpoint: "ftp://collector.local", wantErr: true},
		{name: "Missing", endpoint: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(&config.SDKConfig{Endpoint: tt.endpoint}, Identity{}, logger)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tr)
			assert.Equal(t, tt.kind, tr.GetStats().Type)
		})
	}
}

func TestConsole(t *testing.T) {
	out := &lockedBuffer{}
	c, err := NewConsole(out, 4, log.NewLogger())
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer c.Stop()

	c.Send(testBatch("hello", "world"))

	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "\n") == 2
	}, 2*time.Second, 10*time.Millisecond)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[INFO]")
	assert.Contains(t, lines[0], "hello")
	assert.Contains(t, lines[1], "world")

	stats := c.GetStats()
	assert.Equal(t, "console", stats.Type)
	assert.Equal(t, uint64(1), stats.TotalBatches)
	assert.Equal(t, uint64(2), stats.TotalRecords)
}

// gatedWriter blocks every write until release is closed.
type gatedWriter struct {
	lockedBuffer
	release chan struct{}
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	<-g.release
	return g.lockedBuffer.Write(p)
}

func TestDispatcher_Wait(t *testing.T) {
	out := &gatedWriter{release: make(chan struct{})}
	c, err := NewConsole(out, 4, log.NewLogger())
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer c.Stop()

	var _ Waiter = c
	assert.True(t, c.Wait(time.Millisecond), "nothing sent yet")

	c.Send(testBatch("one"))
	c.Send(testBatch("two"))
	assert.False(t, c.Wait(20*time.Millisecond))
	assert.Equal(t, int64(2), c.GetStats().Details["pending"])

	close(out.release)
	assert.True(t, c.Wait(2*time.Second))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.Equal(t, int64(0), c.GetStats().Details["pending"])
}

func TestDispatcher_WaitAfterStop(t *testing.T) {
	c, err := NewConsole(&lockedBuffer{}, 4, log.NewLogger())
	require.NoError(t, err)

	// Never started, so the batch stays pending until Stop
	c.Send(testBatch("stranded"))
	c.Stop()
	assert.False(t, c.Wait(time.Second))
}

func TestNewConsole_NilWriter(t *testing.T) {
	c, err := NewConsole(nil, 1, log.NewLogger())
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestTokenSigner(t *testing.T) {
	assert.Nil(t, newTokenSigner("", Identity{}))

	var nilSigner *tokenSigner
	token, err := nilSigner.Sign()
	require.NoError(t, err)
	assert.Empty(t, token)

	signer := newTokenSigner("key", Identity{AppName: "shop", SessionID: "s"})
	token, err = signer.Sign()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))
}
