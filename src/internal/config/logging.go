// FILE: logbeacon/src/internal/config/logging.go
package config

import (
	"fmt"
	"slices"
)

// LogConfig controls the relay's own diagnostic log. It never affects
// what the SDK captures or delivers.
type LogConfig struct {
	Output  string            `toml:"output"` // file, stdout, stderr, both, none
	Level   string            `toml:"level"`  // debug, info, warn, error
	File    *LogFileConfig    `toml:"file"`
	Console *LogConsoleConfig `toml:"console"`
}

// LogFileConfig is used when Output is "file" or "both".
type LogFileConfig struct {
	Directory string `toml:"directory"`
	Name      string `toml:"name"`
	MaxSizeMB int64  `toml:"max_size_mb"`
}

// LogConsoleConfig selects the console stream and format. "split" sends
// warn and error to stderr and the rest to stdout.
type LogConsoleConfig struct {
	Target string `toml:"target"`
	Format string `toml:"format"`
}

var (
	logOutputs = []string{"file", "stdout", "stderr", "both", "none"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logTargets = []string{"stdout", "stderr", "split"}
	logFormats = []string{"", "txt", "json"}
)

// DefaultLogConfig keeps diagnostics on stderr so stdout stays free for
// relayed lines.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stderr",
		Level:  "info",
		File: &LogFileConfig{
			Directory: "./log",
			Name:      "logbeacon",
			MaxSizeMB: 10,
		},
		Console: &LogConsoleConfig{
			Target: "stderr",
			Format: "txt",
		},
	}
}

func validateLogConfig(cfg *LogConfig) error {
	if cfg == nil {
		return nil
	}
	if !slices.Contains(logOutputs, cfg.Output) {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}
	if !slices.Contains(logLevels, cfg.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	if cfg.File != nil && (cfg.Output == "file" || cfg.Output == "both") {
		if cfg.File.Directory == "" || cfg.File.Name == "" {
			return fmt.Errorf("log file output needs both directory and name")
		}
		if cfg.File.MaxSizeMB < 0 {
			return fmt.Errorf("invalid log file max_size_mb: %d", cfg.File.MaxSizeMB)
		}
	}
	if cfg.Console != nil {
		if !slices.Contains(logTargets, cfg.Console.Target) {
			return fmt.Errorf("invalid console target: %s", cfg.Console.Target)
		}
		if !slices.Contains(logFormats, cfg.Console.Format) {
			return fmt.Errorf("invalid console format: %s", cfg.Console.Format)
		}
	}
	return nil
}
