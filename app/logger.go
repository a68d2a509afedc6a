package app

import (
	"io"
	"log/slog"

	"github.com/RAMarenco/nlp-analyzer/config"
)

// NewLogger creates a slog.Logger writing to outW as configured by cfg. It
// does not set the global logger. Unknown levels fall back to warn.
func NewLogger(cfg config.LogConfig, outW io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}
