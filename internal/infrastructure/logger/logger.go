package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/config"
)

// New creates a zerolog.Logger configured for the gateway.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(cfg *config.Config, out io.Writer) zerolog.Logger {
	level := parseLevel(cfg.LogLevel)

	var base zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		base = zerolog.New(out)
	default:
		base = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	}

	return base.
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger().
		Level(level)
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
