package middlewares

import (
	"net/http"
	"os"
	"strings"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/validate"
)

var devOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// corsPolicy answers for origins listed in CORS_ALLOWED_ORIGINS (dev defaults
// when unset). Sessions travel as bearer tokens, so credentials stay off.
type corsPolicy struct {
	origins map[string]struct{}
}

func loadCorsPolicy() corsPolicy {
	list := validate.ParseCSV(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(list) == 0 {
		list = devOrigins
	}
	p := corsPolicy{origins: make(map[string]struct{}, len(list))}
	for _, o := range list {
		p.origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	_, ok := p.origins[origin]
	return ok
}

const (
	corsAllowHeaders  = "Content-Type, Authorization, X-Request-ID, X-Admin-Key"
	corsAllowMethods  = "GET, POST, DELETE, OPTIONS"
	corsExposeHeaders = "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Policy, Retry-After, X-Response-Time, X-Cache"
)

// Cors refuses cross-origin calls from unlisted origins with a 403 and
// short-circuits preflights.
func Cors(next http.Handler) http.Handler {
	policy := loadCorsPolicy()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Add("Vary", "Origin")

		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !policy.allows(origin) {
			Logger(r).Warn().Str("origin", origin).Str("path", r.URL.Path).Msg("cors: origin refused")
			apperr.WriteStatus(w, r, http.StatusForbidden, "Forbidden", "origin not allowed")
			return
		}

		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", "3600")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
