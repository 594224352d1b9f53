// FILE: logbeacon/src/cmd/logbeacon/relay.go
package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"logbeacon/src/internal/core"
	"logbeacon/src/internal/interceptor"

	"github.com/lixenwraith/log"
)

const maxLineSize = 1024 * 1024

// Relay reads lines from an input stream and writes each one through the
// SDK console, at the severity sniffed from the line text.
type Relay struct {
	console *interceptor.Console
	logger  *log.Logger

	// Statistics
	totalLines atomic.Uint64
	errorLines atomic.Uint64
	warnLines  atomic.Uint64
	startTime  time.Time
}

// NewRelay creates a relay writing to console.
func NewRelay(console *interceptor.Console, logger *log.Logger) *Relay {
	return &Relay{
		console:   console,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Run forwards lines until in is exhausted or ctx is cancelled. A
// blocked read only returns once in is closed.
func (r *Relay) Run(ctx context.Context, in io.Reader) error {
	r.logger.Info("msg", "Relay started", "component", "relay")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.forward(line)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		r.logger.Error("msg", "Scanner error reading input",
			"component", "relay",
			"error", err)
		return err
	}

	r.logger.Info("msg", "Relay input closed",
		"component", "relay",
		"total_lines", r.totalLines.Load())
	return nil
}

func (r *Relay) forward(line string) {
	r.totalLines.Add(1)

	switch extractLogLevel(line) {
	case core.LevelError:
		r.errorLines.Add(1)
		r.console.Error(line)
	case core.LevelWarn:
		r.warnLines.Add(1)
		r.console.Warn(line)
	default:
		r.console.Log(line)
	}
}

// GetStats returns relay statistics.
func (r *Relay) GetStats() map[string]any {
	return map[string]any{
		"total_lines": r.totalLines.Load(),
		"error_lines": r.errorLines.Load(),
		"warn_lines":  r.warnLines.Load(),
		"uptime":      time.Since(r.startTime).Round(time.Second).String(),
	}
}

// extractLogLevel sniffs a severity marker from free-form text. Lines
// without a marker, and DEBUG or TRACE lines, are INFO.
func extractLogLevel(line string) core.Level {
	patterns := []struct {
		patterns []string
		level    core.Level
	}{
		{[]string{"[ERROR]", "ERROR:", " ERROR ", "ERR:", "[ERR]", "FATAL:", "[FATAL]", "PANIC:"}, core.LevelError},
		{[]string{"[WARN]", "WARN:", " WARN ", "WARNING:", "[WARNING]"}, core.LevelWarn},
	}

	upperLine := strings.ToUpper(line)
	for _, group := range patterns {
		for _, pattern := range group.patterns {
			if strings.Contains(upperLine, pattern) {
				return group.level
			}
		}
	}

	return core.LevelInfo
}
