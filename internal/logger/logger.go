// Package logger provides process-wide logging for enlogic.
// Messages go through a shared logrus logger; Debug and Section are only
// emitted in verbose mode, and best-effort store failures use Warn.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured log fields.
type Fields = logrus.Fields

var (
	mu      sync.RWMutex
	verbose bool
	base    = newBase(os.Stderr)
)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// Configure sets the minimum level (debug, info, warn, error) and the
// output format (text or json). Unknown values keep the current setting.
func Configure(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		base.SetLevel(lvl)
		verbose = lvl >= logrus.DebugLevel
	}
	switch strings.ToLower(format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(logrus.DebugLevel)
	} else if base.GetLevel() > logrus.InfoLevel {
		base.SetLevel(logrus.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// With returns an entry carrying fields, for structured messages.
func With(fields Fields) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithFields(fields)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(base.Out, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(format, args...)
}
