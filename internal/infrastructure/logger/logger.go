package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joesantos1/querodesconto-parceiros/internal/config"
)

// New builds the process logger from the log_config section and installs it
// as the slog default.
func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(cfg, output(cfg.LogOutput))
}

func NewWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(cfg.LogLevel)}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

func level(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func output(s string) io.Writer {
	if strings.EqualFold(s, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}
