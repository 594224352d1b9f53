// FILE: logbeacon/src/internal/transport/http_client.go
package transport

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"logbeacon/src/internal/config"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/format"
	ltls "logbeacon/src/internal/tls"
	"logbeacon/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// HTTPClient POSTs batches to the collection endpoint, one attempt each.
type HTTPClient struct {
	*dispatcher

	// Configuration
	endpoint string
	config   *config.TransportConfig

	// Network
	client     *fasthttp.Client
	tlsManager *ltls.ClientManager
	signer     *tokenSigner

	// Application
	formatter *format.JSONFormatter
	logger    *log.Logger

	// Statistics
	rejectedBatches atomic.Uint64
	lastStatus      atomic.Int64
}

// NewHTTPClient creates an HTTP transport for the given endpoint.
func NewHTTPClient(endpoint *url.URL, opts *config.TransportConfig, identity Identity, logger *log.Logger) (*HTTPClient, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("HTTP transport endpoint cannot be nil")
	}
	if opts == nil {
		opts = &config.TransportConfig{}
	}

	formatter, err := format.NewJSONFormatter(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	h := &HTTPClient{
		endpoint:  endpoint.String(),
		config:    opts,
		formatter: formatter,
		logger:    logger,
		signer:    newTokenSigner(opts.AuthSecret, identity),
	}
	h.dispatcher = newDispatcher("http_transport", opts.Queue(), h.post, logger)

	h.client = &fasthttp.Client{
		MaxConnsPerHost:               4,
		MaxIdleConnDuration:           10 * time.Second,
		ReadTimeout:                   opts.Timeout(),
		WriteTimeout:                  opts.Timeout(),
		DisableHeaderNamesNormalizing: true,
	}

	if strings.EqualFold(endpoint.Scheme, config.SchemeHTTPS) {
		if opts.TLS != nil && opts.TLS.Enabled {
			tlsManager, err := ltls.NewClientManager(opts.TLS, endpoint.Hostname(), logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create TLS client manager: %w", err)
			}
			h.tlsManager = tlsManager
			h.client.TLSConfig = tlsManager.GetConfig()
		} else if opts.InsecureSkipVerify {
			h.client.TLSConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
	}

	return h, nil
}

// Start begins the delivery worker.
func (h *HTTPClient) Start() error {
	if err := h.dispatcher.Start(); err != nil {
		return err
	}
	h.logger.Info("msg", "HTTP transport started",
		"component", "http_transport",
		"endpoint", h.endpoint,
		"timeout_ms", h.config.Timeout().Milliseconds(),
		"auth", h.signer != nil)
	return nil
}

// GetStats returns the transport's statistics.
func (h *HTTPClient) GetStats() Stats {
	return h.dispatcher.stats("http", map[string]any{
		"endpoint":         h.endpoint,
		"rejected_batches": h.rejectedBatches.Load(),
		"last_status":      h.lastStatus.Load(),
		"tls":              h.tlsManager.GetStats(),
	})
}

// post performs exactly one delivery attempt. Any response, including a
// non-2xx one, counts as attempted; only transport errors are failures.
func (h *HTTPClient) post(batch core.Batch) error {
	body, err := h.formatter.FormatBatch(batch)
	if err != nil {
		return fmt.Errorf("failed to format batch: %w", err)
	}

	token, err := h.signer.Sign()
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.SetBody(body)

	if err := h.client.DoTimeout(req, resp, h.config.Timeout()); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	h.lastStatus.Store(int64(statusCode))

	if statusCode < 200 || statusCode >= 300 {
		h.rejectedBatches.Add(1)
		h.logger.Debug("msg", "Collector returned non-success status",
			"component", "http_transport",
			"status_code", statusCode,
			"batch_size", batch.Len())
		return nil
	}

	h.logger.Debug("msg", "Batch delivered",
		"component", "http_transport",
		"batch_size", batch.Len(),
		"status_code", statusCode)
	return nil
}
