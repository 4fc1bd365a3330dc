package meter_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/handlers/meter"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/passmeter/internal/security/jwt"
	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/5w1tchy/passmeter/internal/session"
	"github.com/5w1tchy/passmeter/internal/store/evaluations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []evaluations.Event
}

func (r *recorder) Enqueue(ev evaluations.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

type fixture struct {
	h      *meter.Handler
	signer *jwtutil.Signer
	rec    *recorder
	mux    *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := jwtutil.NewSigner(jwtutil.Config{Secret: []byte(strings.Repeat("s", 32))})
	require.NoError(t, err)

	rec := &recorder{}
	params := password.Params{SimilarityThreshold: 0.7, DefaultLength: 12, MaxLength: 64, HistoryMax: 100}
	h := meter.NewHandler(session.NewStore(session.Config{TTL: time.Hour, MaxEntries: 100}), signer, time.Hour, password.Common(), params, rec)
	h.Rand = zeroSource{}

	auth := func(fn http.HandlerFunc) http.Handler { return middlewares.RequireSession(signer, fn) }
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", h.CreateSession)
	mux.HandleFunc("POST /v1/passwords/evaluate", h.Evaluate)
	mux.HandleFunc("POST /v1/passwords/similarity", h.Similarity)
	mux.HandleFunc("POST /v1/passwords/generate", h.Generate)
	mux.Handle("POST /v1/passwords/check", auth(h.Check))
	mux.Handle("GET /v1/history", auth(h.History))
	mux.Handle("DELETE /v1/history", auth(h.ClearHistory))

	return &fixture{h: h, signer: signer, rec: rec, mux: mux}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, "success", env.Status)
	return env.Data
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/v1/passwords/evaluate", "", `{"password":"Password1!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ev := decodeData[meter.Evaluation](t, rec)
	assert.Equal(t, 4, ev.Score)
	assert.Equal(t, password.BandModerate, ev.Band)
	assert.Equal(t, password.MaxScore, ev.MaxScore)
	assert.Empty(t, ev.Feedback)
	assert.Greater(t, ev.Estimate.EntropyBits, 0.0)

	rec = f.do(t, "POST", "/v1/passwords/evaluate", "", `{"password":"ADMIN"}`)
	ev = decodeData[meter.Evaluation](t, rec)
	assert.Equal(t, 0, ev.Score)
	assert.Equal(t, []string{password.MsgTooCommon}, ev.Feedback)
	assert.Equal(t, password.BandWeak, ev.Band)

	rec = f.do(t, "POST", "/v1/passwords/evaluate", "", `{"password":""}`)
	ev = decodeData[meter.Evaluation](t, rec)
	assert.Equal(t, 0, ev.Score)
	assert.Len(t, ev.Feedback, 4)
}

func TestEvaluate_BadBody(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{`, `{"pwd":"x"}`, ``} {
		rec := f.do(t, "POST", "/v1/passwords/evaluate", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestSimilarity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/v1/passwords/similarity", "", `{"candidate":"Password1!","reference":"Password1!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[meter.SimilarityResponse](t, rec)
	assert.Equal(t, 1.0, got.Ratio)
	assert.Equal(t, 0.7, got.Threshold)
	assert.True(t, got.Similar)

	rec = f.do(t, "POST", "/v1/passwords/similarity", "", `{"candidate":"aaaaaaaaaa","reference":"bbbbbbbbbb"}`)
	got = decodeData[meter.SimilarityResponse](t, rec)
	assert.Equal(t, 0.0, got.Ratio)
	assert.False(t, got.Similar)

	rec = f.do(t, "POST", "/v1/passwords/similarity", "", `{"candidate":"abcd","reference":"abce","threshold":0.8}`)
	got = decodeData[meter.SimilarityResponse](t, rec)
	assert.Equal(t, 0.75, got.Ratio)
	assert.False(t, got.Similar)

	rec = f.do(t, "POST", "/v1/passwords/similarity", "", `{"candidate":"a","reference":"b","threshold":1.5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/v1/passwords/generate", "", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[meter.GenerateResponse](t, rec)
	assert.Equal(t, "aaaaaaaaaaaa", got.Password)
	assert.Equal(t, password.DefaultPolicy(12), got.Policy)
	assert.Equal(t, 2, got.Evaluation.Score)

	rec = f.do(t, "POST", "/v1/passwords/generate", "", `{"length":8,"lowercase":false,"digits":false,"special":false}`)
	got = decodeData[meter.GenerateResponse](t, rec)
	assert.Equal(t, "AAAAAAAA", got.Password)

	rec = f.do(t, "POST", "/v1/passwords/generate", "", `{"length":4,"require_each_class":true}`)
	got = decodeData[meter.GenerateResponse](t, rec)
	assert.Len(t, got.Password, 4)
	assert.ElementsMatch(t, []rune("aA0!"), []rune(got.Password))
}

func TestGenerate_InvalidPolicy(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name, body, field string
	}{
		{"no classes", `{"lowercase":false,"uppercase":false,"digits":false,"special":false}`, "policy"},
		{"zero length", `{"length":0}`, "policy"},
		{"over configured max", `{"length":65}`, "length"},
		{"each class too short", `{"length":3,"require_each_class":true}`, "policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/v1/passwords/generate", "", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			var p struct {
				FieldErrors []struct {
					Field string `json:"field"`
				} `json:"field_errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			require.Len(t, p.FieldErrors, 1)
			assert.Equal(t, tt.field, p.FieldErrors[0].Field)
		})
	}
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/v1/sessions", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeData[meter.SessionResponse](t, rec)
	require.NotEmpty(t, sess.Token)
	require.Len(t, sess.SessionID, 32)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	rec = f.do(t, "POST", "/v1/passwords/check", sess.Token, `{"password":"Summer2024!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	chk := decodeData[meter.CheckResponse](t, rec)
	assert.Equal(t, 4, chk.Evaluation.Score)
	assert.Equal(t, "Summer2024!", chk.Entry.Password)
	assert.False(t, chk.Entry.Timestamp.IsZero())

	// one character off: rejected, not stored
	rec = f.do(t, "POST", "/v1/passwords/check", sess.Token, `{"password":"Summer2025!"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	var rej meter.RejectedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rej))
	assert.Equal(t, "too_similar", rej.Error)
	require.Len(t, rej.Matches, 1)
	assert.True(t, rej.Matches[0].Timestamp.Equal(chk.Entry.Timestamp))
	assert.NotContains(t, rec.Body.String(), "Summer2024!")

	rec = f.do(t, "POST", "/v1/passwords/check", sess.Token, `{"password":"correct horse battery"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "GET", "/v1/history", sess.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decodeData[meter.HistoryResponse](t, rec)
	require.Equal(t, 2, hist.Count)
	assert.Equal(t, "Summer2024!", hist.Entries[0].Password)
	assert.Equal(t, "correct horse battery", hist.Entries[1].Password)

	rec = f.do(t, "DELETE", "/v1/history", sess.Token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, "GET", "/v1/history", sess.Token, "")
	hist = decodeData[meter.HistoryResponse](t, rec)
	assert.Equal(t, 0, hist.Count)
	assert.NotNil(t, hist.Entries)

	require.Len(t, f.rec.events, 3)
	assert.Equal(t, evaluations.OutcomeAccepted, f.rec.events[0].Outcome)
	assert.Equal(t, "moderate", f.rec.events[0].Band)
	assert.Equal(t, evaluations.OutcomeSimilar, f.rec.events[1].Outcome)
	assert.Equal(t, sess.SessionID, f.rec.events[1].SessionID)
}

func TestCheck_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/v1/passwords/check", "", `{"password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid token, unknown session
	tok, _, err := f.signer.SignSession("deadbeef", time.Minute)
	require.NoError(t, err)
	rec = f.do(t, "POST", "/v1/passwords/check", tok, `{"password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, "GET", "/v1/history", tok, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheck_EmptyPassword(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/v1/sessions", "", "")
	sess := decodeData[meter.SessionResponse](t, rec)

	rec = f.do(t, "POST", "/v1/passwords/check", sess.Token, `{"password":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, f.rec.events)
}

func TestOverlongPasswordRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/v1/sessions", "", "")
	sess := decodeData[meter.SessionResponse](t, rec)

	long := strings.Repeat("密", password.MaxInputLen+1)
	atCap := strings.Repeat("密", password.MaxInputLen)
	tests := []struct {
		name, method, path, token, body, field string
	}{
		{"evaluate", "POST", "/v1/passwords/evaluate", "", `{"password":"` + long + `"}`, "password"},
		{"similarity candidate", "POST", "/v1/passwords/similarity", "", `{"candidate":"` + long + `","reference":"x"}`, "candidate"},
		{"similarity reference", "POST", "/v1/passwords/similarity", "", `{"candidate":"x","reference":"` + long + `"}`, "reference"},
		{"check", "POST", "/v1/passwords/check", sess.Token, `{"password":"` + long + `"}`, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var p struct {
				FieldErrors []struct {
					Field string `json:"field"`
					Code  string `json:"code"`
				} `json:"field_errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			require.Len(t, p.FieldErrors, 1)
			assert.Equal(t, tt.field, p.FieldErrors[0].Field)
			assert.Equal(t, "too_long", p.FieldErrors[0].Code)
		})
	}
	assert.Empty(t, f.rec.events)

	rec = f.do(t, "POST", "/v1/passwords/check", sess.Token, `{"password":"`+atCap+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
