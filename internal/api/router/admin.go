package router

import (
	"net/http"

	"github.com/5w1tchy/passmeter/internal/api/handlers/admin"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
)

// MountAdmin wires all /admin/* endpoints behind the X-Admin-Key gate.
func MountAdmin(mux *http.ServeMux, adminH *admin.Handler, key string) {
	gate := func(next http.HandlerFunc) http.Handler {
		return middlewares.RequireAdminKey(key, next)
	}

	mux.Handle("GET /admin/stats", gate(adminH.Stats))
	mux.Handle("GET /admin/runtime", gate(adminH.Runtime))
	mux.Handle("POST /admin/evaluations/prune", gate(adminH.Prune))
}
