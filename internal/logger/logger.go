// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// ErrInvalidLevel is returned by ParseLevel for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(New(os.Stderr, charm.WarnLevel))
}

// Default returns the process-wide logger.
func Default() *charm.Logger {
	return defaultLogger.Load().(*charm.Logger)
}

// SetDefault replaces the process-wide logger. A nil logger is ignored.
func SetDefault(l *charm.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level charm.Level) *charm.Logger {
	l := charm.NewWithOptions(w, charm.Options{
		Prefix:          "envonly",
		ReportTimestamp: false,
	})
	l.SetLevel(level)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *charm.Logger {
	return New(io.Discard, charm.FatalLevel)
}

// ParseLevel converts a level name such as "debug" or "warn" into a level.
// An empty name is the info level.
func ParseLevel(name string) (charm.Level, error) {
	if strings.TrimSpace(name) == "" {
		return charm.InfoLevel, nil
	}
	level, err := charm.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return charm.InfoLevel, errors.Wrapf(ErrInvalidLevel, "'%s'. Supported log levels are debug, info, warn, error", name)
	}
	return level, nil
}
