package middlewares

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/5w1tchy/passmeter/internal/validate"
	"github.com/redis/go-redis/v9"
)

// CheckLimit is the fixed-window cap on history checks.
type CheckLimit struct {
	Max    int
	Window time.Duration
}

// CheckLimitFromEnv reads CHECK_MAX_ATTEMPTS (default 30) and CHECK_WINDOW
// (default 1m).
func CheckLimitFromEnv() CheckLimit {
	cl := CheckLimit{Max: 30, Window: time.Minute}
	if raw := os.Getenv("CHECK_MAX_ATTEMPTS"); raw != "" {
		if n, err := validate.ParseIntRange(raw, 1, 100000); err == nil {
			cl.Max = n
		}
	}
	if raw := os.Getenv("CHECK_WINDOW"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cl.Window = d
		}
	}
	return cl
}

// CheckRateLimit caps password checks per session (client IP when the session
// is unknown) so a session cannot be used as a fast oracle against its own
// history. Without Redis it is a no-op.
func CheckRateLimit(rdb *redis.Client, next http.Handler) http.Handler {
	if rdb == nil {
		return next
	}
	cl := CheckLimitFromEnv()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "rl:check:"
		if sid, ok := SessionIDFrom(r.Context()); ok {
			key += sid
		} else {
			key += "ip:" + clientIP(r)
		}

		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			incr = p.Incr(ctx, key)
			p.ExpireNX(ctx, key, cl.Window)
			ttl = p.PTTL(ctx, key)
			return nil
		})
		if err != nil {
			Logger(r).Warn().Err(err).Msg("check limit unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		v := verdict{allowed: incr.Val() <= int64(cl.Max), remaining: int64(cl.Max) - incr.Val()}
		if !v.allowed {
			v.retryAfter = cl.Window
			if d := ttl.Val(); d > 0 {
				v.retryAfter = d
			}
		}
		if applyVerdict(w, r, "fixed-window", cl.Max, key, v) {
			next.ServeHTTP(w, r)
		}
	})
}

