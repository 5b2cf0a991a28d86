// Package clog is the bundler's leveled logger. It adapts the shape of the
// teacher's internal/interproc logger (package-level Debugf/Infof/Warnf/Errorf
// helpers, a global Verbose switch) onto log/slog, following
// golangsnmp-gomib's use of log/slog rather than a bare log.Logger.
package clog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var (
	logger  *slog.Logger
	verbose bool
)

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	verbose = os.Getenv("CRIBO_VERBOSE") == "1"
}

// SetVerbose toggles debug-level output at runtime (e.g. from --verbose).
func SetVerbose(enabled bool) {
	verbose = enabled
	level := slog.LevelInfo
	if enabled {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetOutput redirects log output, for tests.
func SetOutput(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Debugf(format string, args ...any) {
	logger.Debug(sprintf(format, args...))
}

func Infof(format string, args ...any) {
	logger.Info(sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	logger.Warn(sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	logger.Error(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
