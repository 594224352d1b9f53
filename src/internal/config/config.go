// FILE: logbeacon/src/internal/config/config.go
package config

import (
	"time"

	"logbeacon/src/internal/core"
)

// Config is the full configuration of the logbeacon relay
type Config struct {
	SDK     SDKConfig  `toml:"sdk"`
	Logging *LogConfig `toml:"logging"`

	// CLI-only options
	Quiet bool `toml:"-"`
}

// SDKConfig is supplied once to SDK initialization
type SDKConfig struct {
	// Collection endpoint, required. http(s)://, stdout: or stderr:
	Endpoint string `toml:"endpoint"`

	// Enrichment
	AppName   string `toml:"app_name"`
	HostURL   string `toml:"host_url"`
	UserAgent string `toml:"user_agent"`

	FlushIntervalMS int64 `toml:"flush_interval_ms"`

	Transport    TransportConfig   `toml:"transport"`
	Interceptors InterceptorConfig `toml:"interceptors"`
	Filters      []FilterConfig    `toml:"filters"`
}

// TransportConfig tunes the delivery client
type TransportConfig struct {
	TimeoutMS int64 `toml:"timeout_ms"`

	// Batches waiting for the delivery worker; extra batches are dropped
	QueueSize int64 `toml:"queue_size"`

	// HS256 secret for bearer tokens, empty disables auth
	AuthSecret string `toml:"auth_secret"`

	InsecureSkipVerify bool             `toml:"insecure_skip_verify"`
	TLS                *TLSClientConfig `toml:"tls"`
}

// InterceptorConfig switches individual interceptors off
type InterceptorConfig struct {
	DisableConsole     bool `toml:"disable_console"`
	DisableRuntime     bool `toml:"disable_runtime"`
	DisablePromise     bool `toml:"disable_promise"`
	DisableNetwork     bool `toml:"disable_network"`
	DisablePerformance bool `toml:"disable_performance"`
}

// Upper bounds for millisecond settings; anything larger would overflow
// time.Duration long before it made sense as an interval.
const (
	MaxFlushIntervalMS = int64(time.Hour / time.Millisecond)
	MaxTimeoutMS       = int64(time.Hour / time.Millisecond)
)

// FlushInterval returns the periodic flush interval, defaulting when unset
// and capped at MaxFlushIntervalMS.
func (c *SDKConfig) FlushInterval() time.Duration {
	if c.FlushIntervalMS <= 0 {
		return core.DefaultFlushInterval
	}
	return millis(min(c.FlushIntervalMS, MaxFlushIntervalMS))
}

// Timeout returns the delivery timeout, defaulting when unset and capped
// at MaxTimeoutMS.
func (c *TransportConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return core.DefaultTimeout
	}
	return millis(min(c.TimeoutMS, MaxTimeoutMS))
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Queue returns the delivery queue capacity, defaulting when unset.
func (c *TransportConfig) Queue() int {
	if c.QueueSize <= 0 {
		return core.DefaultQueueSize
	}
	return int(c.QueueSize)
}

func defaults() *Config {
	return &Config{
		SDK: SDKConfig{
			AppName:         core.DefaultAppName,
			FlushIntervalMS: core.DefaultFlushInterval.Milliseconds(),
			Transport: TransportConfig{
				TimeoutMS: core.DefaultTimeout.Milliseconds(),
				QueueSize: core.DefaultQueueSize,
			},
		},
		Logging: DefaultLogConfig(),
	}
}
