package password

import (
	"os"
	"strconv"
)

// MaxInputLen caps, in runes, the passwords the HTTP layer scores or compares.
// Ratio is quadratic in input length.
const MaxInputLen = MaxGenLen

// Params are the tunables the HTTP layer reads once at startup.
type Params struct {
	SimilarityThreshold float64
	DefaultLength       int
	MaxLength           int
	HistoryMax          int
}

func loadEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func loadEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return def
}

// LoadParamsFromEnv applies env overrides to the defaults; out-of-range values
// are clamped.
func LoadParamsFromEnv() Params {
	p := Params{
		SimilarityThreshold: loadEnvFloat("SIMILARITY_THRESHOLD", DefaultThreshold),
		DefaultLength:       loadEnvInt("GENERATOR_DEFAULT_LENGTH", 12),
		MaxLength:           loadEnvInt("GENERATOR_MAX_LENGTH", MaxGenLen),
		HistoryMax:          loadEnvInt("HISTORY_MAX_ENTRIES", 100),
	}
	if p.MaxLength < MinGenLen || p.MaxLength > MaxGenLen {
		p.MaxLength = MaxGenLen
	}
	if p.DefaultLength < MinGenLen || p.DefaultLength > p.MaxLength {
		p.DefaultLength = min(12, p.MaxLength)
	}
	if p.HistoryMax < 1 {
		p.HistoryMax = 100
	}
	return p
}
