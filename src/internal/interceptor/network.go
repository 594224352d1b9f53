// FILE: logbeacon/src/internal/interceptor/network.go
package interceptor

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"logbeacon/src/internal/core"
)

// Network records completed outbound HTTP requests made through the
// round trippers it hands out. Requests to the collection endpoint are
// never recorded.
type Network struct {
	hook hook

	mu       sync.RWMutex
	endpoint *url.URL
}

// NewNetwork creates a network interceptor that ignores traffic to
// endpoint. A nil endpoint excludes nothing.
func NewNetwork(endpoint *url.URL) *Network {
	return &Network{endpoint: endpoint}
}

// SetEndpoint replaces the excluded collection endpoint.
func (n *Network) SetEndpoint(endpoint *url.URL) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.endpoint = endpoint
}

// Name returns "network".
func (n *Network) Name() string { return string(core.TypeNetwork) }

// Install starts recording to sink.
func (n *Network) Install(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("network interceptor requires a sink")
	}
	n.hook.attach(sink)
	return nil
}

// Uninstall stops recording. Wrapped round trippers keep working.
func (n *Network) Uninstall() {
	n.hook.detach()
}

// RoundTripper decorates next. A nil next means http.DefaultTransport.
// Passing a round tripper this interceptor already wrapped returns it
// unchanged.
func (n *Network) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if rt, ok := next.(*roundTripper); ok && rt.network == n {
		return rt
	}
	return &roundTripper{next: next, network: n}
}

// WrapClient installs the decorator on c's transport and returns c. A
// nil client gets a new one.
func (n *Network) WrapClient(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	c.Transport = n.RoundTripper(c.Transport)
	return c
}

// IsCollectorRequest reports whether u targets the collection endpoint:
// same origin (scheme, host and effective port), and a path at or below
// the endpoint path.
func (n *Network) IsCollectorRequest(u *url.URL) bool {
	n.mu.RLock()
	endpoint := n.endpoint
	n.mu.RUnlock()

	if endpoint == nil || u == nil || endpoint.Host == "" {
		return false
	}
	if !sameOrigin(u, endpoint) {
		return false
	}

	base := strings.TrimSuffix(endpoint.Path, "/")
	if base == "" {
		return true
	}
	return u.Path == base || strings.HasPrefix(u.Path, base+"/")
}

func sameOrigin(a, b *url.URL) bool {
	if !strings.EqualFold(a.Scheme, b.Scheme) || !strings.EqualFold(a.Hostname(), b.Hostname()) {
		return false
	}
	return effectivePort(a) == effectivePort(b)
}

// effectivePort fills in the scheme default when the URL omits the port.
func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

func (n *Network) observe(req *http.Request, resp *http.Response) {
	if !n.hook.installed() || n.IsCollectorRequest(req.URL) {
		return
	}

	target := req.URL.String()
	n.hook.emit(core.Record{
		Level:   core.LevelInfo,
		Type:    core.TypeNetwork,
		Message: fmt.Sprintf("%s %s %d", req.Method, target, resp.StatusCode),
		Context: map[string]any{
			core.ContextMethod:     req.Method,
			core.ContextStatus:     resp.StatusCode,
			core.ContextRequestURL: target,
		},
	})
}

type roundTripper struct {
	next    http.RoundTripper
	network *Network
}

// RoundTrip records the request once a response has been received.
// Transport errors are returned untouched and not recorded.
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := rt.next.RoundTrip(req)
	if err == nil && resp != nil {
		rt.network.observe(req, resp)
	}
	return resp, err
}
