package zimgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with zimgo-specific helpers so creator and
// archive logs carry consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil,
// a text handler to stderr at LevelInfo is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger with human-readable output at level.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithArchive tags the logger with an archive filename.
func (l *Logger) WithArchive(filename string) *Logger {
	return &Logger{Logger: l.Logger.With("archive", filename)}
}

// LogAddItem logs the outcome of an AddItem call.
func (l *Logger) LogAddItem(path string, size int64, dedup bool, err error) {
	if err != nil {
		l.Error("add item failed", "path", path, "error", err)
		return
	}
	l.Debug("item added", "path", path, "size", size, "dedup", dedup)
}

// LogFinish logs archive finalization.
func (l *Logger) LogFinish(entries, clusters int, err error) {
	if err != nil {
		l.Error("finalize failed", "error", err)
		return
	}
	l.Info("archive finalized", "entries", entries, "clusters", clusters)
}
