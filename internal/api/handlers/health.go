package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/httpx"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

func RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	httpx.OK(w, map[string]string{"service": "passmeter"})
}

// Healthz runs every check with a shared 2s budget. Any failure turns the
// response into a 503 while still listing each dependency.
func Healthz(checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				out[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httpx.WriteJSON(w, status, map[string]any{"status": state, "checks": out})
	}
}
