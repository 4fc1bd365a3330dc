package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/passmeter/internal/api/middlewares"
)

func serveWithHeaders(target string) *httptest.ResponseRecorder {
	wrapped := mw.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := serveWithHeaders("/v1/history")

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Cache-Control", "no-store"},
		{"Pragma", "no-cache"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: expected %q, got %q", tt.header, tt.expected, got)
		}
	}
	if rec.Header().Get("Permissions-Policy") == "" {
		t.Error("Expected Permissions-Policy")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
	if rec.Header().Get("Cross-Origin-Opener-Policy") != "" {
		t.Error("isolation headers are opt-in")
	}
}

func TestSecurityHeaders_HSTS_OverHTTPS(t *testing.T) {
	// httptest fills req.TLS for https targets
	rec := serveWithHeaders("https://example.com/v1/history")
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=63072000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}

	t.Setenv("HSTS_MAX_AGE", "300")
	rec = serveWithHeaders("https://example.com/v1/history")
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=300; includeSubDomains" {
		t.Errorf("HSTS with override = %q", got)
	}
}

func TestSecurityHeaders_Strict(t *testing.T) {
	t.Setenv("STRICT_SECURITY", "1")
	rec := serveWithHeaders("/v1/history")

	if rec.Header().Get("Cross-Origin-Opener-Policy") != "same-origin" {
		t.Error("Expected COOP in strict mode")
	}
	if rec.Header().Get("Cross-Origin-Resource-Policy") != "same-origin" {
		t.Error("Expected CORP in strict mode")
	}
}
