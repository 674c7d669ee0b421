package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Options selects the sink and verbosity of the application logger.
type Options struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel maps a textual level to slog.Level. Unknown values are an error.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// newWriter is a seam so tests can capture output without touching stdout.
var newWriter = func(o Options) io.Writer {
	if o.FilePath == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   o.FilePath,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
	}
}

// New builds a JSON slog logger according to o.
func New(o Options) (*SlogLogger, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	h := slog.NewJSONHandler(newWriter(o), &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), nil
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
