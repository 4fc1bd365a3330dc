package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
)

// KeyFunc picks the limiter bucket for a request.
type KeyFunc func(r *http.Request) string

// PerIPKey buckets by client address under prefix.
func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		return prefix + ":" + clientIP(r)
	}
}

// clientIP prefers the first parseable X-Forwarded-For hop, then X-Real-IP,
// then the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}

// verdict is one limiter decision.
type verdict struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

// applyVerdict sets the X-RateLimit-* headers and, on refusal, writes the 429.
// It reports whether the request may proceed.
func applyVerdict(w http.ResponseWriter, r *http.Request, policy string, limit int, key string, v verdict) bool {
	h := w.Header()
	h.Set("X-RateLimit-Policy", policy)
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(v.remaining, 0), 10))
	if v.allowed {
		return true
	}
	secs := int64((v.retryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	h.Set("Retry-After", strconv.FormatInt(secs, 10))
	Logger(r).Info().Str("policy", policy).Str("key", key).Int64("retry_after_s", secs).Msg("rate limited")
	apperr.WriteStatus(w, r, http.StatusTooManyRequests, "Too Many Requests", "")
	return false
}
