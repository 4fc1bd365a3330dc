package jwtutil

import (
	"os"
	"strings"
	"time"

	"github.com/5w1tchy/passmeter/internal/validate"
)

const defaultIssuer = "passmeter"

type Config struct {
	Secret    []byte
	Issuer    string
	ClockSkew time.Duration
}

// LoadConfig reads SESSION_JWT_SECRET, SESSION_JWT_ISSUER and
// SESSION_CLOCK_SKEW_SEC (0..600, default 60).
func LoadConfig() Config {
	cfg := Config{
		Secret:    []byte(os.Getenv("SESSION_JWT_SECRET")),
		Issuer:    strings.TrimSpace(os.Getenv("SESSION_JWT_ISSUER")),
		ClockSkew: time.Minute,
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if raw := os.Getenv("SESSION_CLOCK_SKEW_SEC"); raw != "" {
		if n, err := validate.ParseIntRange(raw, 0, 600); err == nil {
			cfg.ClockSkew = time.Duration(n) * time.Second
		}
	}
	return cfg
}
