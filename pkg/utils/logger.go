package utils

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// InitLogger installs the process logger. Local development gets a colored
// console handler at debug level; deployed instances log JSON at info.
// Only the first call has an effect.
func InitLogger(local bool) {
	loggerOnce.Do(func() {
		logger = NewLogger(os.Stderr, local)
		slog.SetDefault(logger)
	})
}

// NewLogger builds a logger writing to w without touching the process default.
func NewLogger(w io.Writer, local bool) *slog.Logger {
	if local {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// GetLogger returns the process logger, falling back to slog's default
// before InitLogger has run.
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
