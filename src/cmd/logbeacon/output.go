// FILE: logbeacon/src/cmd/logbeacon/output.go
package main

import (
	"fmt"
	"io"
	"os"
)

// OutputHandler writes the CLI's own messages, respecting quiet mode
type OutputHandler struct {
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

var output = &OutputHandler{stdout: os.Stdout, stderr: os.Stderr}

// InitOutputHandler sets quiet mode for all CLI messages
func InitOutputHandler(quiet bool) {
	output = &OutputHandler{
		quiet:  quiet,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Print writes to stdout unless quiet
func Print(format string, args ...any) {
	if !output.quiet {
		fmt.Fprintf(output.stdout, format, args...)
	}
}

// Error writes to stderr unless quiet
func Error(format string, args ...any) {
	if !output.quiet {
		fmt.Fprintf(output.stderr, format, args...)
	}
}

// FatalError writes to stderr unless quiet and exits with code
func FatalError(code int, format string, args ...any) {
	Error(format, args...)
	os.Exit(code)
}
