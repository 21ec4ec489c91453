// Package logger provides leveled logging for paybridge.
// Debug and info messages are printed to stderr only when verbose mode is
// enabled via the --verbose flag. Warnings and errors are always printed.
//
// Slog returns a log/slog logger over the same output and verbosity, for
// middleware that logs through slog.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

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

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	logf(false, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message. Warnings are always printed.
func Warn(format string, args ...any) {
	logf(true, "[WARN] "+format+"\n", args...)
}

// Error prints an error message. Errors are always printed.
func Error(format string, args ...any) {
	logf(true, "[ERROR] "+format+"\n", args...)
}

// logf writes under the exclusive lock so writers need not be goroutine safe.
func logf(always bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, format, args...)
	}
}

// Slog returns a text slog.Logger writing to the current output.
// Records below warn level are dropped unless verbose mode is on.
func Slog() *slog.Logger {
	return slog.New(slog.NewTextHandler(lockedWriter{}, &slog.HandlerOptions{Level: verbosity{}}))
}

// verbosity is a slog.Leveler that follows SetVerbose.
type verbosity struct{}

func (verbosity) Level() slog.Level {
	if IsVerbose() {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// lockedWriter serialises slog output with the printf-style functions.
type lockedWriter struct{}

func (lockedWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return output.Write(p)
}
