// Package logger provides verbose logging for docmind.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace pipeline stages, ingestion and retrieval.
// Error messages are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var tags = [...]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug traces internal steps such as stage transitions.
func Debug(format string, args ...any) {
	logf(levelDebug, format, args...)
}

// Info reports a completed operation.
func Info(format string, args ...any) {
	logf(levelInfo, format, args...)
}

// Warn reports a degraded but recoverable condition.
func Warn(format string, args ...any) {
	logf(levelWarn, format, args...)
}

// Error prints regardless of verbose mode.
func Error(format string, args ...any) {
	logf(levelError, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func logf(l level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < levelError && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", tags[l], fmt.Sprintf(format, args...))
}
