// FILE: logbeacon/src/cmd/logbeacon/bootstrap.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"logbeacon/src/internal/config"
	"logbeacon/src/pkg/beacon"

	"github.com/lixenwraith/log"
)

// bootstrapSDK creates and initializes the capture pipeline
func bootstrapSDK(cfg *config.Config, logger *log.Logger) (*beacon.SDK, error) {
	opts := []beacon.Option{beacon.WithLogger(logger)}
	if cfg.Quiet {
		opts = append(opts, beacon.WithConsoleOutput(io.Discard, io.Discard))
	}

	sdk := beacon.New(opts...)
	if err := sdk.Init(&cfg.SDK); err != nil {
		return nil, err
	}
	return sdk, nil
}

// drain delivers what is still buffered, bounded by timeout and ctx.
func drain(ctx context.Context, sdk *beacon.SDK, timeout time.Duration) bool {
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if ctx.Err() != nil || timeout <= 0 {
		sdk.Flush()
		return false
	}
	return sdk.Drain(timeout)
}

// initializeLogger sets up the diagnostics logger based on configuration
func initializeLogger(cfg *config.Config) (*log.Logger, error) {
	logger := log.NewLogger()

	var configArgs []string

	if cfg.Quiet {
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger, logger.InitWithDefaults(configArgs...)
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = config.DefaultLogConfig()
	}

	levelValue, err := parseLogLevel(logCfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch logCfg.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout", "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target="+logCfg.Output)

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configArgs = append(configArgs, fileLoggingArgs(logCfg)...)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configArgs = append(configArgs, fileLoggingArgs(logCfg)...)
		configArgs = append(configArgs, consoleTargetArgs(logCfg)...)

	default:
		return nil, fmt.Errorf("invalid log output mode: %s", logCfg.Output)
	}

	if logCfg.Console != nil && logCfg.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", logCfg.Console.Format))
	}

	return logger, logger.InitWithDefaults(configArgs...)
}

func fileLoggingArgs(logCfg *config.LogConfig) []string {
	if logCfg.File == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("directory=%s", logCfg.File.Directory),
		fmt.Sprintf("name=%s", logCfg.File.Name),
		fmt.Sprintf("max_size_mb=%d", logCfg.File.MaxSizeMB),
	}
}

func consoleTargetArgs(logCfg *config.LogConfig) []string {
	target := "stderr"
	if logCfg.Console != nil && logCfg.Console.Target != "" {
		target = logCfg.Console.Target
	}
	if target == "split" {
		return []string{"stdout_split_mode=true", "stdout_target=split"}
	}
	return []string{"stdout_target=" + target}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
