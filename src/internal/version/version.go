// FILE: logbeacon/src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, injected with -ldflags "-X logbeacon/src/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String describes the build for --version output.
func String() string {
	return fmt.Sprintf("logbeacon %s (commit: %s, built: %s, %s)",
		Short(), GitCommit, BuildTime, runtime.Version())
}

// Short returns the release tag alone.
func Short() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// UserAgent identifies the SDK and its runtime, both on delivery
// requests and as the default record userAgent.
func UserAgent() string {
	return fmt.Sprintf("logbeacon/%s (%s/%s; %s)",
		Short(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}
