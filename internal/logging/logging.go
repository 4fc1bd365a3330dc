// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   zerolog.Level
	Console bool // human-readable output instead of JSON
	Output  io.Writer
}

// FromEnv reads LOG_LEVEL and APP_ENV. Anything but production logs to the console writer.
func FromEnv() Config {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return Config{
		Level:   lvl,
		Console: !strings.EqualFold(os.Getenv("APP_ENV"), "production"),
		Output:  os.Stdout,
	}
}

func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
}

// Nop discards everything; handy for tests and optional collaborators.
func Nop() zerolog.Logger { return zerolog.Nop() }
