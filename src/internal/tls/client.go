// FILE: logbeacon/src/internal/tls/client.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"logbeacon/src/internal/config"

	"github.com/lixenwraith/log"
)

// ClientManager builds the TLS configuration used to reach an https collector.
type ClientManager struct {
	config    *config.TLSClientConfig
	tlsConfig *tls.Config
	logger    *log.Logger
}

// NewClientManager creates a TLS manager for the delivery client. It
// returns nil when TLS is not configured; a nil manager yields a nil config.
func NewClientManager(cfg *config.TLSClientConfig, serverName string, logger *log.Logger) (*ClientManager, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	minVersion, err := parseTLSVersion(cfg.MinVersion, tls.VersionTLS12)
	if err != nil {
		return nil, fmt.Errorf("invalid min_version: %w", err)
	}
	maxVersion, err := parseTLSVersion(cfg.MaxVersion, tls.VersionTLS13)
	if err != nil {
		return nil, fmt.Errorf("invalid max_version: %w", err)
	}
	if minVersion > maxVersion {
		return nil, fmt.Errorf("min_version %s exceeds max_version %s",
			tls.VersionName(minVersion), tls.VersionName(maxVersion))
	}

	m := &ClientManager{
		config: cfg,
		logger: logger,
		tlsConfig: &tls.Config{
			MinVersion: minVersion,
			MaxVersion: maxVersion,
		},
	}

	if cfg.CipherSuites != "" {
		suites, unknown := parseCipherSuites(cfg.CipherSuites)
		if len(unknown) > 0 {
			logger.Warn("msg", "Ignoring unknown or insecure cipher suites",
				"component", "tls",
				"suites", strings.Join(unknown, ","))
		}
		if len(suites) == 0 {
			return nil, fmt.Errorf("no usable cipher suites in %q", cfg.CipherSuites)
		}
		m.tlsConfig.CipherSuites = suites
	}

	// Client certificate for mTLS
	if cfg.ClientCertFile != "" && cfg.ClientKeyFile != "" {
		clientCert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		m.tlsConfig.Certificates = []tls.Certificate{clientCert}
	} else if cfg.ClientCertFile != "" || cfg.ClientKeyFile != "" {
		return nil, fmt.Errorf("both client_cert_file and client_key_file must be provided for mTLS")
	}

	// Collector CA
	if cfg.ServerCAFile != "" {
		caCert, err := os.ReadFile(cfg.ServerCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read server CA file: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse server CA certificate")
		}
		m.tlsConfig.RootCAs = caCertPool
	}

	m.tlsConfig.InsecureSkipVerify = cfg.InsecureSkipVerify
	m.tlsConfig.ServerName = cfg.ServerName
	if m.tlsConfig.ServerName == "" {
		m.tlsConfig.ServerName = serverName
	}

	logger.Info("msg", "TLS client configured",
		"component", "tls",
		"server_name", m.tlsConfig.ServerName,
		"has_client_cert", cfg.ClientCertFile != "",
		"has_server_ca", cfg.ServerCAFile != "",
		"min_version", tls.VersionName(m.tlsConfig.MinVersion))
	return m, nil
}

// GetConfig returns a copy of the client's TLS configuration.
func (m *ClientManager) GetConfig() *tls.Config {
	if m == nil {
		return nil
	}
	return m.tlsConfig.Clone()
}

// GetStats returns statistics about the current client TLS configuration.
func (m *ClientManager) GetStats() map[string]any {
	if m == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":              true,
		"min_version":          tls.VersionName(m.tlsConfig.MinVersion),
		"max_version":          tls.VersionName(m.tlsConfig.MaxVersion),
		"has_client_cert":      m.config.ClientCertFile != "",
		"has_server_ca":        m.config.ServerCAFile != "",
		"insecure_skip_verify": m.config.InsecureSkipVerify,
	}
}
