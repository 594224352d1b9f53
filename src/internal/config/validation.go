// FILE: logbeacon/src/internal/config/validation.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

var (
	// ErrMissingEndpoint is returned when no collection endpoint is configured
	ErrMissingEndpoint = errors.New("endpoint is required")

	// ErrUnsupportedEndpoint is returned for endpoints no transport can serve
	ErrUnsupportedEndpoint = errors.New("unsupported endpoint scheme")
)

// Endpoint schemes understood by the transport layer
const (
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
	SchemeStdout = "stdout"
	SchemeStderr = "stderr"
)

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if err := c.SDK.Validate(); err != nil {
		return fmt.Errorf("sdk config: %w", err)
	}
	if err := validateLogConfig(c.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks the SDK configuration without side effects
func (c *SDKConfig) Validate() error {
	if c == nil {
		return ErrMissingEndpoint
	}
	if err := lconfig.NonEmpty(strings.TrimSpace(c.Endpoint)); err != nil {
		return ErrMissingEndpoint
	}

	if _, err := ParseEndpoint(c.Endpoint); err != nil {
		return err
	}

	if c.FlushIntervalMS < 0 || c.FlushIntervalMS > MaxFlushIntervalMS {
		return fmt.Errorf("flush_interval_ms must be between 0 and %d: %d", MaxFlushIntervalMS, c.FlushIntervalMS)
	}
	if c.Transport.TimeoutMS < 0 || c.Transport.TimeoutMS > MaxTimeoutMS {
		return fmt.Errorf("transport.timeout_ms must be between 0 and %d: %d", MaxTimeoutMS, c.Transport.TimeoutMS)
	}
	if c.Transport.QueueSize < 0 {
		return fmt.Errorf("transport.queue_size cannot be negative: %d", c.Transport.QueueSize)
	}

	if err := validateTLSClient(c.Transport.TLS); err != nil {
		return err
	}

	for i := range c.Filters {
		if err := validateFilter(i, &c.Filters[i]); err != nil {
			return err
		}
	}

	return nil
}

// ParseEndpoint parses and checks a collection endpoint
func ParseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	switch strings.ToLower(u.Scheme) {
	case SchemeHTTP, SchemeHTTPS:
		if u.Host == "" {
			return nil, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
		}
	case SchemeStdout, SchemeStderr:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEndpoint, endpoint)
	}

	return u, nil
}
