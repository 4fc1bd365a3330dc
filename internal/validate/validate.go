package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Env validates required env configuration for sessions & the engine.
// Fail-fast on bad config.
func Env() error {
	// Session token secret must be present & reasonably long
	secret := os.Getenv("SESSION_JWT_SECRET")
	if len(secret) < 32 {
		return errors.New("SESSION_JWT_SECRET must be at least 32 characters")
	}

	// TTLs must parse and be > 0 (defaults are fine if unset)
	if _, err := envDuration("SESSION_TTL", "30m"); err != nil {
		return fmt.Errorf("SESSION_TTL: %w", err)
	}
	if _, err := envDuration("CHECK_WINDOW", "1m"); err != nil {
		return fmt.Errorf("CHECK_WINDOW: %w", err)
	}

	// Engine tunables (only enforce if explicitly set)
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if _, err := ParseUnit(v); err != nil {
			return fmt.Errorf("SIMILARITY_THRESHOLD: must be a number between 0 and 1")
		}
	}
	if err := envIntRange("GENERATOR_MAX_LENGTH", 1, 1024); err != nil {
		return fmt.Errorf("GENERATOR_MAX_LENGTH: %w", err)
	}
	if err := envIntRange("GENERATOR_DEFAULT_LENGTH", 1, 1024); err != nil {
		return fmt.Errorf("GENERATOR_DEFAULT_LENGTH: %w", err)
	}
	if err := envIntRange("HISTORY_MAX_ENTRIES", 1, 100000); err != nil {
		return fmt.Errorf("HISTORY_MAX_ENTRIES: %w", err)
	}
	if err := envIntRange("EVAL_RETENTION_DAYS", 1, 3650); err != nil {
		return fmt.Errorf("EVAL_RETENTION_DAYS: %w", err)
	}
	return nil
}

// HardeningWarnings returns non-fatal warnings you may want to log on startup.
func HardeningWarnings(appEnv string) []string {
	var warns []string

	// Session TTL unusually long?
	if d, _ := envDuration("SESSION_TTL", "30m"); d > 24*time.Hour {
		warns = append(warns, fmt.Sprintf("SESSION_TTL=%s is > 24h; history lives in memory that long", d))
	}

	// Threshold so low every candidate collides, or so high nothing does
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if f, err := ParseUnit(v); err == nil && (f < 0.3 || f > 0.95) {
			warns = append(warns, fmt.Sprintf("SIMILARITY_THRESHOLD=%s is far from the 0.7 default", v))
		}
	}

	// Production-specific nudges
	if strings.EqualFold(appEnv, "production") {
		if os.Getenv("ADMIN_API_KEY") != "" && len(os.Getenv("ADMIN_API_KEY")) < 24 {
			warns = append(warns, "ADMIN_API_KEY is shorter than 24 characters")
		}
		// Redis transport/auth checks from envs
		url := redisURL()
		if strings.HasPrefix(url, "redis://") {
			warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if url == "" && os.Getenv("REDIS_ADDR") != "" {
			if os.Getenv("REDIS_PASSWORD") == "" || os.Getenv("REDIS_USER") == "" {
				warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
			}
		}
		if url == "" && os.Getenv("REDIS_ADDR") == "" {
			warns = append(warns, "no Redis configured; rate limits are disabled")
		}
	}

	return warns
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := rdb.Ping(ctx).Result()
	return err
}

// --- helpers ---

// redisURL mirrors the server's lookup: REDIS_URL, then UPSTASH_REDIS_URL.
func redisURL() string {
	if u := os.Getenv("REDIS_URL"); u != "" {
		return u
	}
	return os.Getenv("UPSTASH_REDIS_URL")
}

func envDuration(key, def string) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func envIntRange(key string, min, max int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil // unset -> code defaults apply elsewhere
	}
	if _, err := ParseIntRange(v, min, max); err != nil {
		return fmt.Errorf("must be an integer between %d and %d", min, max)
	}
	return nil
}
