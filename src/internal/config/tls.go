// FILE: logbeacon/src/internal/config/tls.go
package config

import (
	"fmt"
	"os"
)

// TLSClientConfig configures TLS towards an https collection endpoint
type TLSClientConfig struct {
	Enabled bool `toml:"enabled"`

	// CA file used to verify the collector certificate
	ServerCAFile string `toml:"server_ca_file"`

	// Client certificate for mTLS
	ClientCertFile string `toml:"client_cert_file"`
	ClientKeyFile  string `toml:"client_key_file"`

	ServerName         string `toml:"server_name"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`

	// TLS version constraints
	MinVersion string `toml:"min_version"` // "TLS1.2", "TLS1.3"
	MaxVersion string `toml:"max_version"`

	// Cipher suites (comma-separated list)
	CipherSuites string `toml:"cipher_suites"`
}

func validateTLSClient(cfg *TLSClientConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	if (cfg.ClientCertFile == "") != (cfg.ClientKeyFile == "") {
		return fmt.Errorf("tls: both client_cert_file and client_key_file must be provided for mTLS")
	}

	for name, path := range map[string]string{
		"server_ca_file":   cfg.ServerCAFile,
		"client_cert_file": cfg.ClientCertFile,
		"client_key_file":  cfg.ClientKeyFile,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("tls: %s is not accessible: %w", name, err)
		}
	}

	validVersions := map[string]bool{"": true, "TLS1.2": true, "TLS1.3": true}
	if !validVersions[cfg.MinVersion] {
		return fmt.Errorf("tls: invalid min TLS version: %s", cfg.MinVersion)
	}
	if !validVersions[cfg.MaxVersion] {
		return fmt.Errorf("tls: invalid max TLS version: %s", cfg.MaxVersion)
	}

	return nil
}
