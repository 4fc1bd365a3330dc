package router

import (
	"net/http"

	"github.com/5w1tchy/passmeter/internal/api/handlers"
	"github.com/5w1tchy/passmeter/internal/api/handlers/meter"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/passmeter/internal/security/jwt"
	"github.com/redis/go-redis/v9"
)

// Router mounts the public and session-scoped routes.
func Router(h *meter.Handler, signer *jwtutil.Signer, rdb *redis.Client, checks map[string]handlers.Check) *http.ServeMux {
	mux := http.NewServeMux()

	// Root + health
	mux.HandleFunc("GET /{$}", handlers.RootHandler)
	mux.HandleFunc("GET /healthz", handlers.Healthz(checks))

	// Stateless scoring/generation
	mux.HandleFunc("POST /v1/sessions", h.CreateSession)
	mux.HandleFunc("POST /v1/passwords/evaluate", h.Evaluate)
	mux.HandleFunc("POST /v1/passwords/similarity", h.Similarity)
	mux.HandleFunc("POST /v1/passwords/generate", h.Generate)

	// Session history (Bearer token)
	session := func(next http.Handler) http.Handler {
		return middlewares.RequireSession(signer, next)
	}
	mux.Handle("POST /v1/passwords/check", session(middlewares.CheckRateLimit(rdb, http.HandlerFunc(h.Check))))
	mux.Handle("GET /v1/history", session(http.HandlerFunc(h.History)))
	mux.Handle("DELETE /v1/history", session(http.HandlerFunc(h.ClearHistory)))

	return mux
}
