// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	root   hclog.Logger = newLogger("info", "text", os.Stderr)
	rootMu sync.RWMutex
)

func newLogger(level, format string, out io.Writer) hclog.Logger {
	if strings.EqualFold(level, "off") {
		return hclog.NewNullLogger()
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "moviecatalog",
		Level:      hclog.LevelFromString(level),
		Output:     out,
		JSONFormat: strings.EqualFold(format, "json"),
	})
}

// Configure replaces the root logger. Level is one of trace, debug, info,
// warn, error or off; format is "json" or "text".
func Configure(level, format string) {
	ConfigureOutput(level, format, os.Stderr)
}

// ConfigureOutput is Configure with an explicit writer.
func ConfigureOutput(level, format string, out io.Writer) {
	l := newLogger(level, format, out)
	rootMu.Lock()
	root = l
	rootMu.Unlock()
}

// Get returns the root logger.
func Get() hclog.Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

// Named returns a sub-logger of the root logger.
func Named(name string) hclog.Logger {
	return Get().Named(name)
}

// Info logs informational messages with key/value pairs
func Info(msg string, args ...interface{}) {
	Get().Info(msg, args...)
}

// Warn logs warning messages
func Warn(msg string, args ...interface{}) {
	Get().Warn(msg, args...)
}

// Error logs error messages
func Error(msg string, args ...interface{}) {
	Get().Error(msg, args...)
}

// Debug logs debug messages
func Debug(msg string, args ...interface{}) {
	Get().Debug(msg, args...)
}
