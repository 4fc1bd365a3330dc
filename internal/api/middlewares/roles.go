package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
)

// RequireAdminKey gates a handler behind the X-Admin-Key header.
// An empty key disables the route entirely.
func RequireAdminKey(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			apperr.WriteStatus(w, r, http.StatusNotFound, "Not Found", "")
			return
		}
		have := r.Header.Get("X-Admin-Key")
		if have == "" {
			apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "missing X-Admin-Key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(have), []byte(key)) != 1 {
			apperr.WriteStatus(w, r, http.StatusForbidden, "Forbidden", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
