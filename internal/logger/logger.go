// Package logger configures the application-wide zerolog logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"payflow/internal/config"
)

// New builds the root logger. Production logs JSON to stdout; development
// uses the human-readable console writer.
func New() zerolog.Logger {
	level, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	if config.IsProduction() {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}
