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

func TestRecovery(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantBody string
	}{
		{
			name:     "panic becomes 500",
			handler:  func(w http.ResponseWriter, r *http.Request) { panic("evaluator exploded") },
			wantCode: http.StatusInternalServerError,
			wantBody: "Internal Server Error\n",
		},
		{
			name:     "error value panic",
			handler:  func(w http.ResponseWriter, r *http.Request) { panic(http.ErrBodyNotAllowed) },
			wantCode: http.StatusInternalServerError,
			wantBody: "Internal Server Error\n",
		},
		{
			name: "normal request untouched",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte("session"))
			},
			wantCode: http.StatusCreated,
			wantBody: "session",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mw.Recovery(tt.handler).ServeHTTP(rec, httptest.NewRequest("POST", "/v1/passwords/check", nil))
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestRecovery_LogsWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	mw.SetLogger(zerolog.New(&buf))
	defer mw.SetLogger(zerolog.Nop())

	handler := mw.RequestID(mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest("POST", "/v1/passwords/check", strings.NewReader(`{"password":"s3cret"}`))
	req.Header.Set("X-Request-ID", "rid-panic")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError || rec.Header().Get("X-Request-ID") != "rid-panic" {
		t.Fatalf("got %d rid=%q", rec.Code, rec.Header().Get("X-Request-ID"))
	}
	logged := buf.String()
	if !strings.Contains(logged, `"request_id":"rid-panic"`) || !strings.Contains(logged, "panic recovered") {
		t.Errorf("log line missing context: %s", logged)
	}
	if strings.Contains(logged, "s3cret") {
		t.Error("request body leaked into the log")
	}
}

func TestRecovery_AbortsAfterHeadersSent(t *testing.T) {
	handler := mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		panic("late panic")
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
}
