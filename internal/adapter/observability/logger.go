package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
)

// SetupLogger configures a JSON slog logger with environment fields.
func SetupLogger(cfg config.Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(cfg)}
	h := slog.NewJSONHandler(w, opts)
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}

// levelFor shows debug in dev and keeps tests quiet.
func levelFor(cfg config.Config) slog.Level {
	switch strings.ToLower(cfg.AppEnv) {
	case "dev":
		return slog.LevelDebug
	case "test":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
