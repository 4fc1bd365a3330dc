package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/handlers/admin"
	"github.com/5w1tchy/passmeter/internal/api/handlers/meter"
	"github.com/5w1tchy/passmeter/internal/blacklist"
	jwtutil "github.com/5w1tchy/passmeter/internal/security/jwt"
	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/5w1tchy/passmeter/internal/session"
)

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	signer, err := jwtutil.NewSigner(jwtutil.Config{Secret: []byte(strings.Repeat("r", 32))})
	if err != nil {
		t.Fatal(err)
	}
	store := session.NewStore(session.Config{TTL: time.Hour, MaxEntries: 10})
	h := meter.NewHandler(store, signer, time.Hour, password.Common(), password.LoadParamsFromEnv(), nil)
	mux := Router(h, signer, nil, nil)
	MountAdmin(mux, admin.NewHandler(nil, nil, store, nil, blacklist.Report{}), "admin-key")
	return mux
}

func TestRoutes(t *testing.T) {
	mux := newMux(t)
	tests := []struct {
		method, path, body string
		header             map[string]string
		want               int
	}{
		{"GET", "/", "", nil, http.StatusOK},
		{"GET", "/healthz", "", nil, http.StatusOK},
		{"POST", "/v1/passwords/evaluate", `{"password":"x"}`, nil, http.StatusOK},
		{"GET", "/v1/passwords/evaluate", "", nil, http.StatusMethodNotAllowed},
		{"POST", "/v1/passwords/check", `{"password":"x"}`, nil, http.StatusUnauthorized},
		{"GET", "/v1/history", "", nil, http.StatusUnauthorized},
		{"GET", "/admin/runtime", "", nil, http.StatusUnauthorized},
		{"GET", "/admin/runtime", "", map[string]string{"X-Admin-Key": "admin-key"}, http.StatusOK},
		{"GET", "/admin/stats", "", map[string]string{"X-Admin-Key": "admin-key"}, http.StatusServiceUnavailable},
		{"GET", "/nope", "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
