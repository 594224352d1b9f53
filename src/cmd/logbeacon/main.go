// FILE: logbeacon/src/cmd/logbeacon/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logbeacon/src/internal/config"
	"logbeacon/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// errInputClosed ends the run once standard input is exhausted
var errInputClosed = errors.New("input closed")

func main() {
	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stdout, helpText)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, helpText)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowHelp {
		fmt.Fprint(os.Stdout, helpText)
		os.Exit(0)
	}
	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGBEACON_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.Load()
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}
	flagCfg.Apply(cfg)

	if flagCfg.WriteConfig != "" {
		if err := cfg.SaveToFile(flagCfg.WriteConfig); err != nil {
			FatalError(1, "Failed to write config: %v\n", err)
		}
		Print("Config written to %s\n", flagCfg.WriteConfig)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		FatalError(1, "Invalid configuration: %v\n", err)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}

	logger.Info("msg", "logbeacon starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"endpoint", cfg.SDK.Endpoint)

	code := run(cfg, flagCfg, logger)
	shutdownLogger(logger)
	os.Exit(code)
}

// run relays standard input until it closes or a signal arrives and
// returns the process exit code
func run(cfg *config.Config, flagCfg *FlagConfig, logger *log.Logger) int {
	sdk, err := bootstrapSDK(cfg, logger)
	if err != nil {
		logger.Error("msg", "Failed to initialize SDK", "error", err)
		Error("Failed to initialize SDK: %v\n", err)
		return 1
	}
	defer sdk.Close()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		Error("Reading from terminal, press Ctrl-D to finish\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := NewRelay(sdk.Console(), logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := relay.Run(gctx, os.Stdin); err != nil {
			return err
		}
		if gctx.Err() != nil {
			return nil
		}
		return errInputClosed
	})

	// Unblocks the relay's pending read on shutdown
	g.Go(func() error {
		<-gctx.Done()
		_ = os.Stdin.Close()
		return nil
	})

	err = g.Wait()
	switch {
	case errors.Is(err, errInputClosed):
		logger.Info("msg", "Input closed, draining", "relay", relay.GetStats())
	case err != nil:
		logger.Error("msg", "Relay failed", "error", err)
	default:
		logger.Info("msg", "Shutdown signal received", "relay", relay.GetStats())
	}

	if !drain(context.Background(), sdk, flagCfg.DrainTimeout) {
		logger.Warn("msg", "Drain timeout exceeded, undelivered batches dropped",
			"timeout", flagCfg.DrainTimeout.String())
	}

	if err != nil && !errors.Is(err, errInputClosed) {
		return 1
	}
	return 0
}

func shutdownLogger(logger *log.Logger) {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
