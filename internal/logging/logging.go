// Package logging configures the process-wide slog logger and the gorm logger
// that writes through it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/emilythestrangee/reddit-clone/api/internal/config"
)

// New builds a slog.Logger from config. Unknown levels fall back to info.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup builds the logger and installs it as the slog default.
func Setup(cfg config.LogConfig) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Gorm returns a gorm logger that emits SQL traces through logger at warn
// level and above, or at info level when debug logging is on.
func Gorm(logger *slog.Logger, slowThreshold time.Duration, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
