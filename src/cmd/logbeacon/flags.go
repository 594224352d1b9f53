// FILE: logbeacon/src/cmd/logbeacon/flags.go
package main

import (
	"fmt"
	"strings"
	"time"

	"logbeacon/src/internal/config"

	"github.com/spf13/pflag"
)

// FlagConfig holds parsed command-line flags
type FlagConfig struct {
	ConfigFile      string
	Endpoint        string
	AppName         string
	AuthSecret      string
	FlushIntervalMS int64
	DrainTimeout    time.Duration
	WriteConfig     string

	LogOutput string
	LogLevel  string

	Quiet       bool
	ShowVersion bool
	ShowHelp    bool

	changed func(name string) bool
}

// ParseFlags parses args (without the program name)
func ParseFlags(args []string) (*FlagConfig, error) {
	fc := &FlagConfig{}

	fs := pflag.NewFlagSet("logbeacon", pflag.ContinueOnError)
	fs.Usage = func() {}

	fs.StringVarP(&fc.ConfigFile, "config", "c", "", "Config file path")
	fs.StringVarP(&fc.Endpoint, "endpoint", "e", "", "Collection endpoint: http(s)://host/path, stdout: or stderr:")
	fs.StringVarP(&fc.AppName, "app-name", "a", "", "Application name stamped on records")
	fs.StringVar(&fc.AuthSecret, "auth-secret", "", "HS256 secret for bearer tokens")
	fs.Int64Var(&fc.FlushIntervalMS, "flush-interval-ms", 0, "Periodic flush interval in milliseconds")
	fs.DurationVar(&fc.DrainTimeout, "drain-timeout", 5*time.Second, "Time allowed to deliver remaining records at end of input")
	fs.StringVar(&fc.WriteConfig, "write-config", "", "Write the effective config to this path and exit")
	fs.StringVar(&fc.LogOutput, "log-output", "", "Log output: file, stdout, stderr, both, none")
	fs.StringVar(&fc.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVarP(&fc.Quiet, "quiet", "q", false, "Suppress all console output")
	fs.BoolVarP(&fc.ShowVersion, "version", "v", false, "Display version information and exit")
	fs.BoolVarP(&fc.ShowHelp, "help", "h", false, "Display this help message and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fc.changed = fs.Changed

	if fc.LogOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[fc.LogOutput] {
			return nil, fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", fc.LogOutput)
		}
	}

	if fc.LogLevel != "" {
		if _, err := parseLogLevel(fc.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", fc.LogLevel)
		}
	}

	if fc.FlushIntervalMS < 0 || fc.FlushIntervalMS > config.MaxFlushIntervalMS {
		return nil, fmt.Errorf("invalid flush-interval-ms: %d", fc.FlushIntervalMS)
	}
	if fc.DrainTimeout < 0 {
		return nil, fmt.Errorf("invalid drain-timeout: %s", fc.DrainTimeout)
	}

	return fc, nil
}

// Apply overrides cfg with every flag set on the command line
func (fc *FlagConfig) Apply(cfg *config.Config) {
	if fc.isSet("endpoint") {
		cfg.SDK.Endpoint = strings.TrimSpace(fc.Endpoint)
	}
	if fc.isSet("app-name") {
		cfg.SDK.AppName = fc.AppName
	}
	if fc.isSet("auth-secret") {
		cfg.SDK.Transport.AuthSecret = fc.AuthSecret
	}
	if fc.isSet("flush-interval-ms") {
		cfg.SDK.FlushIntervalMS = fc.FlushIntervalMS
	}

	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}
	if fc.LogOutput != "" {
		cfg.Logging.Output = fc.LogOutput
	}
	if fc.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(fc.LogLevel)
	}

	cfg.Quiet = fc.Quiet
}

func (fc *FlagConfig) isSet(name string) bool {
	return fc.changed != nil && fc.changed(name)
}

const helpText = `logbeacon: relay log lines from standard input to a collection endpoint.

Usage:
  some-program 2>&1 | logbeacon [options]

Delivery:
  -e, --endpoint <url>          Collection endpoint (http(s)://host/path, stdout:, stderr:)
  -a, --app-name <name>         Application name stamped on records
      --auth-secret <secret>    HS256 secret for bearer tokens
      --flush-interval-ms <n>   Periodic flush interval (default 1000)
      --drain-timeout <d>       Time allowed to deliver remaining records at end of input (default 5s)

Application Control:
  -c, --config <path>           Path to configuration file
      --write-config <path>     Write the effective configuration and exit
      --log-output <mode>       Diagnostics output: file, stdout, stderr, both, none
      --log-level <level>       Diagnostics level: debug, info, warn, error
  -q, --quiet                   Suppress all console output, including relayed lines
  -h, --help                    Display this help message and exit
  -v, --version                 Display version information and exit

Each input line is echoed and captured at the level found in its text
([ERROR], WARN:, ...); ERROR lines are delivered immediately.

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  LOGBEACON_CONFIG_FILE        Config file path
  LOGBEACON_CONFIG_DIR         Config directory
  LOGBEACON_SDK_ENDPOINT       Collection endpoint (any key: LOGBEACON_<SECTION>_<KEY>)

Examples:
  # Ship a service's output
  ./server 2>&1 | logbeacon -e https://collector.example/logs -a server

  # Try it locally
  echo "[ERROR] disk full" | logbeacon -e stdout:
`
