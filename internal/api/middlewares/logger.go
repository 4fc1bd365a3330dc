package middlewares

import (
	"net/http"

	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// SetLogger sets the logger used by every middleware. Call before serving.
func SetLogger(l zerolog.Logger) { logger = l }

// Logger returns the request-scoped logger (request id attached) or the base one.
func Logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &logger
}

// Chain wraps h so the first middleware listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
