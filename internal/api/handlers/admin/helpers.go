package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
	"github.com/redis/go-redis/v9"
)

const (
	defaultWindow = 24 * time.Hour
	maxWindow     = 90 * 24 * time.Hour
)

// parseWindow reads ?window= as a Go duration; empty means 24h.
func parseWindow(q string) (time.Duration, bool) {
	if q == "" {
		return defaultWindow, true
	}
	d, err := time.ParseDuration(q)
	if err != nil || d <= 0 || d > maxWindow {
		return 0, false
	}
	return d, true
}

// actionQuota caps how often an admin action may run across all replicas.
type actionQuota struct {
	name   string
	limit  int64
	window time.Duration
}

var pruneQuota = actionQuota{name: "prune", limit: 5, window: time.Hour}

func (q actionQuota) key() string { return "admin:rl:" + q.name }

// take counts one use and returns the wait before the next allowed one, or 0.
func (q actionQuota) take(ctx context.Context, rdb *redis.Client) (time.Duration, error) {
	var used *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		used = p.Incr(ctx, q.key())
		p.ExpireNX(ctx, q.key(), q.window)
		ttl = p.PTTL(ctx, q.key())
		return nil
	})
	if err != nil {
		return 0, err
	}
	if used.Val() <= q.limit {
		return 0, nil
	}
	if d := ttl.Val(); d > 0 {
		return d, nil
	}
	return q.window, nil
}

// allow enforces q when Redis is configured. A Redis failure refuses the
// action; admin actions are rare and destructive.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, q actionQuota) bool {
	if h.RDB == nil {
		return true
	}
	wait, err := q.take(r.Context(), h.RDB)
	if err != nil {
		middlewares.Logger(r).Warn().Err(err).Str("action", q.name).Msg("admin quota unavailable")
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Service Unavailable", "rate limiter unavailable")
		return false
	}
	if wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
		apperr.WriteStatus(w, r, http.StatusTooManyRequests, "Too Many Requests", q.name+" quota exhausted")
		return false
	}
	return true
}
