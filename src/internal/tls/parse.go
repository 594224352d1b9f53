// FILE: logbeacon/src/internal/tls/parse.go
package tls

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// parseTLSVersion maps a configured name such as "TLS1.2" onto its
// crypto/tls constant. An empty name selects fallback. Collector
// connections never negotiate below TLS 1.2.
func parseTLSVersion(name string, fallback uint16) (uint16, error) {
	if name == "" {
		return fallback, nil
	}
	switch strings.ToUpper(strings.ReplaceAll(name, ".", "")) {
	case "TLS12":
		return tls.VersionTLS12, nil
	case "TLS13":
		return tls.VersionTLS13, nil
	case "TLS10", "TLS11":
		return 0, fmt.Errorf("tls version %s is below the TLS1.2 minimum for collector connections", name)
	default:
		return 0, fmt.Errorf("unknown tls version: %s", name)
	}
}

// parseCipherSuites resolves a comma-separated list against the suites
// crypto/tls reports as secure. Names it cannot resolve, including
// insecure suites, are returned in unknown.
func parseCipherSuites(names string) (ids []uint16, unknown []string) {
	secure := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		secure[suite.Name] = suite.ID
	}

	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if id, ok := secure[name]; ok {
			ids = append(ids, id)
		} else {
			unknown = append(unknown, name)
		}
	}
	return ids, unknown
}
