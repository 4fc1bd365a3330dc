package middlewares_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mw "github.com/5w1tchy/passmeter/internal/api/middlewares"
	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"missing", "", false},
		{"kept", "custom-request-id", true},
		{"dots and underscores", "web_1.req-9", true},
		{"bad characters", "invalid@#$%id", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = mw.GetRequestID(r)
			}))
			req := httptest.NewRequest("GET", "/healthz", nil)
			if tt.inbound != "" {
				req.Header.Set("X-Request-ID", tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got == "" || got != seen {
				t.Fatalf("response id %q, handler saw %q", got, seen)
			}
			if tt.keep && got != tt.inbound {
				t.Errorf("want inbound id kept, got %q", got)
			}
			if !tt.keep && (got == tt.inbound || !strings.HasPrefix(got, "pm-")) {
				t.Errorf("want minted id, got %q", got)
			}
		})
	}
}

func TestRequestID_AttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	mw.SetLogger(zerolog.New(&buf))
	defer mw.SetLogger(zerolog.Nop())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw.Logger(r).Info().Msg("inside")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "rid-123")
	mw.RequestID(handler).ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), `"request_id":"rid-123"`) {
		t.Errorf("log line missing request id: %s", buf.String())
	}
}
