// Package maintenance runs background housekeeping for the evaluation log.
package maintenance

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/5w1tchy/passmeter/internal/validate"
	"github.com/rs/zerolog"
)

// Pruner deletes evaluation events older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionConfig drives StartEvaluationRetention.
type RetentionConfig struct {
	KeepDays int
	Hour     int
	Minute   int
	Location *time.Location
}

// RetentionConfigFromEnv reads EVAL_RETENTION_DAYS (default 30),
// EVAL_RETENTION_AT ("HH:MM", default 03:15) and EVAL_RETENTION_TZ (default UTC).
func RetentionConfigFromEnv() RetentionConfig {
	cfg := RetentionConfig{KeepDays: 30, Location: time.UTC}
	if raw := os.Getenv("EVAL_RETENTION_DAYS"); raw != "" {
		if n, err := validate.ParseIntRange(raw, 1, 3650); err == nil {
			cfg.KeepDays = n
		}
	}
	cfg.Hour, cfg.Minute = parseClock(os.Getenv("EVAL_RETENTION_AT"))
	if tz := strings.TrimSpace(os.Getenv("EVAL_RETENTION_TZ")); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Location = loc
		}
	}
	return cfg
}

// StartEvaluationRetention prunes once a day at the configured wall-clock time
// until ctx is done.
func StartEvaluationRetention(ctx context.Context, p Pruner, cfg RetentionConfig, log zerolog.Logger) {
	if cfg.KeepDays <= 0 {
		cfg.KeepDays = 30
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	log = log.With().Str("component", "retention").Logger()
	log.Info().Int("keep_days", cfg.KeepDays).
		Str("at", time.Date(0, 1, 1, cfg.Hour, cfg.Minute, 0, 0, cfg.Location).Format("15:04 MST")).
		Msg("evaluation retention scheduled")

	go func() {
		for {
			wait := time.Until(nextRun(time.Now().In(cfg.Location), cfg.Hour, cfg.Minute))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				RunOnce(ctx, p, cfg.KeepDays, log)
			}
		}
	}()
}

// RunOnce prunes once and returns the number of deleted rows. Failures are
// logged and reported as zero.
func RunOnce(ctx context.Context, p Pruner, keepDays int, log zerolog.Logger) int64 {
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	n, err := p.Prune(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("evaluation prune failed")
		return 0
	}
	log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("evaluations pruned")
	return n
}

// parseClock reads "HH:MM"; anything else means 03:15.
func parseClock(s string) (int, int) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 3, 15
	}
	return t.Hour(), t.Minute()
}

func nextRun(now time.Time, h, m int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
