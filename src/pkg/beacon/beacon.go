// FILE: logbeacon/src/pkg/beacon/beacon.go
package beacon

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"logbeacon/src/internal/buffer"
	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/config"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/filter"
	"logbeacon/src/internal/flush"
	"logbeacon/src/internal/interceptor"
	"logbeacon/src/internal/transport"

	"github.com/lixenwraith/log"
)

// Configuration types accepted by Init
type (
	Config            = config.SDKConfig
	TransportConfig   = config.TransportConfig
	InterceptorConfig = config.InterceptorConfig
	FilterConfig      = config.FilterConfig
	TLSClientConfig   = config.TLSClientConfig
)

var (
	// ErrInvalidConfig wraps every configuration error returned by Init
	ErrInvalidConfig = errors.New("invalid logger configuration")

	// ErrClosed is returned by Init after Close
	ErrClosed = errors.New("logger is closed")
)

// SDK is one isolated capture pipeline: its own buffer, configuration,
// interceptors and initialization state. Safe for concurrent use.
type SDK struct {
	logger   *log.Logger
	clock    clock.Clock
	override transport.Transport

	// Interceptors exist before Init so hosts can wire them early
	console     *interceptor.Console
	consoleHook *interceptor.ConsoleInterceptor
	runtime     *interceptor.Runtime
	promise     *interceptor.Promise
	network     *interceptor.Network
	performance *interceptor.Performance

	mu          sync.RWMutex
	initialized bool
	closed      bool
	config      *config.SDKConfig
	enricher    *buffer.Enricher
	transport   transport.Transport
	scheduler   *flush.Scheduler
	installed   []interceptor.Interceptor
}

// New creates an uninitialized SDK. Nothing is captured until Init.
func New(opts ...Option) *SDK {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewLogger()
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}

	console := interceptor.NewConsole(o.stdout, o.stderr)
	return &SDK{
		logger:      o.logger,
		clock:       o.clock,
		override:    o.transport,
		console:     console,
		consoleHook: interceptor.NewConsoleInterceptor(console),
		runtime:     interceptor.NewRuntime(),
		promise:     interceptor.NewPromise(),
		network:     interceptor.NewNetwork(nil),
		performance: interceptor.NewPerformance(o.clock, o.navigationStart),
	}
}

// Init validates cfg and starts capture. An invalid config returns an
// error wrapping ErrInvalidConfig and changes nothing. Calling Init on
// an initialized SDK is a logged no-op.
func (s *SDK) Init(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, config.ErrMissingEndpoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.initialized {
		s.logger.Warn("msg", "Logger already initialized, ignoring Init",
			"component", "beacon")
		return nil
	}

	sdkCfg := *cfg
	sdkCfg.Filters = slices.Clone(cfg.Filters)
	if err := sdkCfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	endpoint, err := config.ParseEndpoint(sdkCfg.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Build everything before the first side effect
	enricher := buffer.NewEnricher(s.clock, buffer.EnricherOptions{
		AppName:   sdkCfg.AppName,
		URL:       sdkCfg.HostURL,
		UserAgent: sdkCfg.UserAgent,
	})

	filters, err := filter.NewChain(sdkCfg.Filters, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	tr := s.override
	if tr == nil {
		tr, err = transport.New(&sdkCfg, transport.Identity{
			AppName:   enricher.AppName(),
			SessionID: enricher.SessionID(),
		}, s.logger)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	scheduler, err := flush.New(flush.Config{
		Buffer:    buffer.New(),
		Enricher:  enricher,
		Filters:   filters,
		Transport: tr,
		Clock:     s.clock,
		Interval:  sdkCfg.FlushInterval(),
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create flush scheduler: %w", err)
	}

	if err := tr.Start(); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.network.SetEndpoint(endpoint)
	s.installed = s.installInterceptors(sdkCfg.Interceptors, scheduler.Capture)
	scheduler.Start()

	s.config = &sdkCfg
	s.enricher = enricher
	s.transport = tr
	s.scheduler = scheduler
	s.initialized = true

	scheduler.Capture(core.Record{
		Level:   core.LevelInfo,
		Type:    core.TypeSDK,
		Message: core.InitMessage,
	})

	s.logger.Info("msg", "Logger initialized",
		"component", "beacon",
		"endpoint", sdkCfg.Endpoint,
		"app_name", enricher.AppName(),
		"session_id", enricher.SessionID(),
		"interceptors", len(s.installed),
		"flush_interval_ms", sdkCfg.FlushInterval().Milliseconds())

	return nil
}

// installInterceptors installs every enabled interceptor. One that
// fails to install is logged and skipped.
func (s *SDK) installInterceptors(cfg config.InterceptorConfig, sink interceptor.Sink) []interceptor.Interceptor {
	candidates := []struct {
		disabled    bool
		interceptor interceptor.Interceptor
	}{
		{cfg.DisableConsole, s.consoleHook},
		{cfg.DisableRuntime, s.runtime},
		{cfg.DisablePromise, s.promise},
		{cfg.DisableNetwork, s.network},
		{cfg.DisablePerformance, s.performance},
	}

	installed := make([]interceptor.Interceptor, 0, len(candidates))
	for _, c := range candidates {
		if c.disabled {
			s.logger.Debug("msg", "Interceptor disabled",
				"component", "beacon",
				"interceptor", c.interceptor.Name())
			continue
		}
		if err := c.interceptor.Install(sink); err != nil {
			s.logger.Warn("msg", "Interceptor unavailable, continuing without it",
				"component", "beacon",
				"interceptor", c.interceptor.Name(),
				"error", err)
			continue
		}
		installed = append(installed, c.interceptor)
	}
	return installed
}

// Log captures a custom INFO record. No-op before Init.
func (s *SDK) Log(message string, data map[string]any) {
	s.captureCustom(core.LevelInfo, message, data)
}

// Error captures a custom ERROR record and sends the buffer at once.
// No-op before Init.
func (s *SDK) Error(message string, data map[string]any) {
	s.captureCustom(core.LevelError, message, data)
}

func (s *SDK) captureCustom(level core.Level, message string, data map[string]any) {
	scheduler := s.activeScheduler()
	if scheduler == nil {
		return
	}

	payload := maps.Clone(data)
	if payload == nil {
		payload = map[string]any{}
	}
	scheduler.Capture(core.Record{
		Level:   level,
		Type:    core.TypeCustom,
		Message: message,
		Context: map[string]any{core.ContextData: payload},
	})
}

func (s *SDK) activeScheduler() *flush.Scheduler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized || s.closed {
		return nil
	}
	return s.scheduler
}

// Flush sends buffered records now instead of waiting for the next
// periodic trigger. Delivery stays asynchronous. No-op before Init.
func (s *SDK) Flush() {
	if scheduler := s.activeScheduler(); scheduler != nil {
		scheduler.Flush()
	}
}

// Console returns the SDK's console. Its Log, Warn and Error calls are
// captured once Init has run.
func (s *SDK) Console() *interceptor.Console {
	return s.console
}

// RecoverDrainTimeout bounds how long Recover waits for the panic record
// to be attempted before re-panicking.
const RecoverDrainTimeout = 2 * time.Second

// Recover reports a panic and re-panics with the same value. It must be
// deferred directly: defer sdk.Recover(). The re-panic usually ends the
// process, so Recover first waits up to RecoverDrainTimeout for the
// report to be attempted.
func (s *SDK) Recover() {
	if v := recover(); v != nil {
		s.runtime.Report(v)
		s.Drain(RecoverDrainTimeout)
		panic(v)
	}
}

// Drain flushes buffered records and waits up to timeout until the
// transport has attempted every batch handed to it. It reports whether
// nothing was left pending. No-op returning true before Init.
func (s *SDK) Drain(timeout time.Duration) bool {
	s.mu.RLock()
	if !s.initialized || s.closed {
		s.mu.RUnlock()
		return true
	}
	scheduler, tr := s.scheduler, s.transport
	s.mu.RUnlock()

	scheduler.Flush()
	if w, ok := tr.(transport.Waiter); ok {
		return w.Wait(timeout)
	}
	return true
}

// Go runs fn on a detached goroutine. A returned error is captured as
// an unhandled rejection; a panic is captured and re-raised.
func (s *SDK) Go(fn func() error) {
	if fn == nil {
		return
	}
	s.promise.Go(func() error {
		defer s.Recover()
		return fn()
	})
}

// RoundTripper decorates next so completed requests are captured.
func (s *SDK) RoundTripper(next http.RoundTripper) http.RoundTripper {
	return s.network.RoundTripper(next)
}

// WrapClient decorates c's transport and returns c.
func (s *SDK) WrapClient(c *http.Client) *http.Client {
	return s.network.WrapClient(c)
}

// MarkLoaded captures the one-shot load time record.
func (s *SDK) MarkLoaded() {
	s.performance.MarkLoaded()
}

// SessionID returns the session identity, empty before Init.
func (s *SDK) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.enricher == nil {
		return ""
	}
	return s.enricher.SessionID()
}

// Stats returns pipeline statistics.
func (s *SDK) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"initialized": s.initialized,
		"closed":      s.closed,
	}
	if !s.initialized {
		return stats
	}

	names := make([]string, 0, len(s.installed))
	for _, i := range s.installed {
		names = append(names, i.Name())
	}

	stats["endpoint"] = s.config.Endpoint
	stats["session_id"] = s.enricher.SessionID()
	stats["interceptors"] = names
	stats["scheduler"] = s.scheduler.GetStats()
	stats["transport"] = s.transport.GetStats()
	return stats
}

// Close uninstalls interceptors and stops the timer and transport.
// Buffered and queued records are not sent.
func (s *SDK) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if !s.initialized {
		return
	}

	for i := len(s.installed) - 1; i >= 0; i-- {
		s.installed[i].Uninstall()
	}
	s.installed = nil
	s.scheduler.Stop()
	s.transport.Stop()

	s.logger.Info("msg", "Logger closed",
		"component", "beacon",
		"session_id", s.enricher.SessionID())
}
