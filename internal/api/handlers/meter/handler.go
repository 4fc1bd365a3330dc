package meter

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/5w1tchy/passmeter/internal/store/evaluations"
)

// Sessions is the slice of session.Store the handlers use.
type Sessions interface {
	Create() (string, time.Time, error)
	Snapshot(id string) ([]password.HistoryEntry, error)
	Update(id string, fn func(history []password.HistoryEntry) (password.HistoryEntry, bool)) (bool, error)
	Clear(id string) error
}

// TokenSigner issues session tokens.
type TokenSigner interface {
	SignSession(sessionID string, ttl time.Duration) (token, jti string, err error)
}

// Recorder receives one event per check; implementations must not block.
type Recorder interface {
	Enqueue(ev evaluations.Event)
}

type Handler struct {
	Sessions   Sessions
	Signer     TokenSigner
	SessionTTL time.Duration
	Common     *password.CommonSet
	Params     password.Params
	Rand       password.RandomSource
	Events     Recorder
}

func NewHandler(sessions Sessions, signer TokenSigner, ttl time.Duration, common *password.CommonSet, params password.Params, events Recorder) *Handler {
	return &Handler{
		Sessions:   sessions,
		Signer:     signer,
		SessionTTL: ttl,
		Common:     common,
		Params:     params,
		Rand:       password.CryptoSource{},
		Events:     events,
	}
}

var msgTooLong = fmt.Sprintf("must be at most %d characters", password.MaxInputLen)

// tooLong writes a 422 for field when v is over password.MaxInputLen runes.
func tooLong(w http.ResponseWriter, r *http.Request, field, v string) bool {
	if utf8.RuneCountInString(v) <= password.MaxInputLen {
		return false
	}
	apperr.Invalid(w, r, field, "too_long", msgTooLong)
	return true
}

func nowUTC() time.Time { return time.Now().UTC() }

func (h *Handler) record(ev evaluations.Event) {
	if h.Events != nil {
		h.Events.Enqueue(ev)
	}
}

// evaluate is the full evaluation payload returned by every scoring endpoint.
func (h *Handler) evaluate(pwd string) Evaluation {
	res := password.EvaluateWith(pwd, h.Common)
	band := password.Classify(res.Score)
	return Evaluation{
		Score:    res.Score,
		MaxScore: password.MaxScore,
		Band:     band,
		Message:  band.Message(),
		Feedback: res.Feedback,
		Estimate: password.EstimateStrength(pwd),
	}
}
