package internal

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger from the application config.
// CLI output goes to stdout, so logs are meant for stderr.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
