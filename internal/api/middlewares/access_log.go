package middlewares

import (
	"net/http"
	"time"
)

// ResponseTimeMiddleware stamps X-Response-Time and writes one access log line
// per request. Bodies are never logged; they carry passwords.
func ResponseTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		sw.beforeHeader = func(h http.Header) {
			h.Set("X-Response-Time", time.Since(start).String())
		}
		next.ServeHTTP(sw, r)

		if !sw.wroteHeader {
			w.Header().Set("X-Response-Time", time.Since(start).String())
		}
		took := time.Since(start)

		ev := Logger(r).Info()
		switch {
		case sw.code() >= 500:
			ev = Logger(r).Error()
		case sw.code() >= 400:
			ev = Logger(r).Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.code()).
			Int("bytes", sw.bytes).
			Dur("took", took).
			Msg("request")
	})
}

