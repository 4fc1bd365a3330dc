package middlewares

import (
	"net/http"
	"os"
	"strconv"
)

// apiHeaders suit a JSON API that never renders in a browser and whose
// responses may echo password material.
var apiHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
	{"X-DNS-Prefetch-Control", "off"},
}

var isolationHeaders = [][2]string{
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Embedder-Policy", "require-corp"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
}

// SecurityHeaders sets the fixed response headers. HSTS goes out only over TLS
// with HSTS_MAX_AGE seconds (default two years); STRICT_SECURITY=1 adds the
// cross-origin isolation set.
func SecurityHeaders(next http.Handler) http.Handler {
	set := apiHeaders
	if os.Getenv("STRICT_SECURITY") == "1" {
		set = append(append([][2]string{}, apiHeaders...), isolationHeaders...)
	}
	maxAge := 63072000
	if raw := os.Getenv("HSTS_MAX_AGE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			maxAge = n
		}
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range set {
			h.Set(kv[0], kv[1])
		}
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		h.Del("Server")
		next.ServeHTTP(w, r)
	})
}
