package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.InfoLevel, Output: &buf})
	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("want one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "hello" || line["component"] != "test" {
		t.Fatalf("unexpected line: %v", line)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("APP_ENV", "production")
	cfg := FromEnv()
	if cfg.Level != zerolog.WarnLevel || cfg.Console {
		t.Fatalf("got %+v", cfg)
	}

	t.Setenv("LOG_LEVEL", "nonsense")
	t.Setenv("APP_ENV", "development")
	cfg = FromEnv()
	if cfg.Level != zerolog.InfoLevel || !cfg.Console {
		t.Fatalf("got %+v", cfg)
	}
}
