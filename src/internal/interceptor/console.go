// FILE: logbeacon/src/internal/interceptor/console.go
package interceptor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"logbeacon/src/internal/core"
)

// Severity selects one of the three console methods.
type Severity int

const (
	SeverityLog Severity = iota
	SeverityWarn
	SeverityError
)

var severityLevels = [...]core.Level{
	SeverityLog:   core.LevelInfo,
	SeverityWarn:  core.LevelWarn,
	SeverityError: core.LevelError,
}

// Level maps the severity to a record level.
func (s Severity) Level() core.Level {
	return severityLevels[s.clamp()]
}

// clamp folds unknown severities into SeverityLog.
func (s Severity) clamp() Severity {
	if s < SeverityLog || s > SeverityError {
		return SeverityLog
	}
	return s
}

// Method is the signature of a console method.
type Method func(args ...any)

// Console is an instance-owned console. Log writes to stdout, Warn and
// Error to stderr. Its methods can be wrapped and restored.
type Console struct {
	mu      sync.RWMutex
	methods [3]Method
}

// NewConsole creates a console writing to the given streams. Nil
// streams default to the process stdout and stderr.
func NewConsole(stdout, stderr io.Writer) *Console {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	c := &Console{}
	c.methods[SeverityLog] = printer(stdout)
	c.methods[SeverityWarn] = printer(stderr)
	c.methods[SeverityError] = printer(stderr)
	return c
}

func printer(w io.Writer) Method {
	var mu sync.Mutex
	return func(args ...any) {
		line := JoinArgs(args) + "\n"
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, line)
	}
}

// Log writes at INFO severity.
func (c *Console) Log(args ...any) { c.method(SeverityLog)(args...) }

// Warn writes at WARN severity.
func (c *Console) Warn(args ...any) { c.method(SeverityWarn)(args...) }

// Error writes at ERROR severity.
func (c *Console) Error(args ...any) { c.method(SeverityError)(args...) }

// Writer adapts one severity to io.Writer, one call per line, so the
// console can back a standard library logger. Unknown severities write
// through Log.
func (c *Console) Writer(severity Severity) io.Writer {
	return &consoleWriter{console: c, severity: severity.clamp()}
}

func (c *Console) method(severity Severity) Method {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methods[severity]
}

// swap replaces a method and returns the previous one.
func (c *Console) swap(severity Severity, m Method) Method {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.methods[severity]
	c.methods[severity] = m
	return prev
}

type consoleWriter struct {
	console  *Console
	severity Severity
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\r\n")
	for _, line := range strings.Split(text, "\n") {
		w.console.method(w.severity)(strings.TrimRight(line, "\r"))
	}
	return len(p), nil
}

// JoinArgs renders each argument with fmt.Sprint and joins them with a
// single space.
func JoinArgs(args []any) string {
	var buf bytes.Buffer
	for i, arg := range args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(fmt.Sprint(arg))
	}
	return buf.String()
}

// ConsoleInterceptor captures every console call before passing it on
// to the original method unchanged.
type ConsoleInterceptor struct {
	console *Console

	mu        sync.Mutex
	installed bool
	originals [3]Method
}

// NewConsoleInterceptor creates an interceptor for console.
func NewConsoleInterceptor(console *Console) *ConsoleInterceptor {
	return &ConsoleInterceptor{console: console}
}

// Name returns "console".
func (i *ConsoleInterceptor) Name() string { return string(core.TypeConsole) }

// Install wraps the three console methods.
func (i *ConsoleInterceptor) Install(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("console interceptor requires a sink")
	}
	if i.console == nil {
		return fmt.Errorf("console interceptor has no console")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.installed {
		return nil
	}

	for _, severity := range []Severity{SeverityLog, SeverityWarn, SeverityError} {
		original := i.console.method(severity)
		i.originals[severity] = original
		i.console.swap(severity, wrapMethod(severity, original, sink))
	}
	i.installed = true
	return nil
}

// Uninstall restores the original console methods.
func (i *ConsoleInterceptor) Uninstall() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.installed {
		return
	}

	for severity, original := range i.originals {
		i.console.swap(Severity(severity), original)
		i.originals[severity] = nil
	}
	i.installed = false
}

func wrapMethod(severity Severity, original Method, sink Sink) Method {
	return func(args ...any) {
		capture(severity, args, sink)
		original(args...)
	}
}

// capture never lets a failure escape into the console call.
func capture(severity Severity, args []any, sink Sink) {
	defer func() {
		_ = recover()
	}()
	sink(core.Record{
		Level:   severity.Level(),
		Type:    core.TypeConsole,
		Message: JoinArgs(args),
	})
}
