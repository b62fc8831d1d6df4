// Package logging holds the process logger: a charmbracelet/log instance
// writing logfmt-style lines to stderr, plus level parsing and context helpers.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide logger shared by the CLI and library defaults.
var current atomic.Pointer[log.Logger]

func init() {
	current.Store(New("info"))
}

// New returns a stderr logger at level. See ParseLevel for accepted names.
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter returns a logger writing to w at level.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewInteractive returns a prefixed info logger for prompts and progress
// messages of interactive commands such as init.
func NewInteractive() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gomobiledoc"})
	logger.SetLevel(log.InfoLevel)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return NewWithWriter(io.Discard, "error")
}

// ParseLevel maps a level name to a log.Level, ignoring case and surrounding
// space. "warning" is accepted for warn; anything unknown means info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default returns the process logger.
func Default() *log.Logger {
	return current.Load()
}

// SetDefault replaces the process logger. A nil logger is ignored.
func SetDefault(logger *log.Logger) {
	if logger != nil {
		current.Store(logger)
	}
}

// SetLevel changes the level of the process logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
