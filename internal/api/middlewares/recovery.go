package middlewares

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a bare 500. If the response had already
// started, the connection is aborted instead. http.ErrAbortHandler passes
// through untouched.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			// request bodies hold passwords; log the route only
			ev := Logger(r).Error()
			if l := zerolog.Ctx(r.Context()); l.GetLevel() == zerolog.Disabled {
				ev = ev.Str("request_id", GetRequestID(r))
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Bool("headers_sent", sw.wroteHeader).
				Msg("panic recovered")

			if sw.wroteHeader {
				panic(http.ErrAbortHandler)
			}
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(sw, r)
	})
}
