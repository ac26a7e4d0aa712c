package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

// New constructs the service logger from the configured level and format.
// Unknown levels fall back to info; unknown formats fall back to json.
func New(cfg *config.Config) zerolog.Logger {
	return build(os.Stdout, cfg.LogLevel, cfg.LogFormat).
		With().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()
}

func build(out io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var base zerolog.Logger
	switch strings.ToLower(format) {
	case "console":
		base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	default:
		base = zerolog.New(out)
	}
	return base.With().Timestamp().Logger().Level(lvl)
}
