package roomsearch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with roomsearch-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCategory adds a room category field to the logger.
func (l *Logger) WithCategory(category string) *Logger {
	return &Logger{
		Logger: l.Logger.With("category", category),
	}
}

// WithKey adds a vector key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogEmbed logs a single embedding computation.
func (l *Logger) LogEmbed(ctx context.Context, index int, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "embedding failed",
			"index", index,
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "embedding computed",
			"index", index,
			"path", path,
		)
	}
}

// LogIngestProgress logs periodic ingestion progress.
func (l *Logger) LogIngestProgress(ctx context.Context, ingested, total int, elapsed time.Duration) {
	percent := 0.0
	if total > 0 {
		percent = float64(ingested) / float64(total) * 100
	}
	l.InfoContext(ctx, "ingestion progress",
		"ingested", ingested,
		"total", total,
		"percent", percent,
		"elapsed", elapsed.Round(time.Second),
	)
}

// LogQuery logs a similarity query against the vector store.
func (l *Logger) LogQuery(ctx context.Context, k, results int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "query completed",
			"k", k,
			"results", results,
			"duration", duration,
		)
	}
}
