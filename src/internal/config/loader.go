// FILE: logbeacon/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// Load builds the configuration from defaults, the config file and
// LOGBEACON_* environment variables, in increasing priority.
func Load() (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGBEACON_").
		WithFile(configPath).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		// A missing config file is fine, defaults and env still apply
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := defaults()
	if cfg != nil {
		if err := cfg.Scan(finalConfig, ""); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
	}

	return finalConfig, nil
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGBEACON_" + env
	return env
}

// GetConfigPath resolves the config file location
func GetConfigPath() string {
	if configFile := os.Getenv("LOGBEACON_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGBEACON_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGBEACON_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logbeacon.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logbeacon.toml")
	}

	return "logbeacon.toml"
}
