package meter

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/api/httpx"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/5w1tchy/passmeter/internal/session"
	"github.com/5w1tchy/passmeter/internal/store/evaluations"
)

// POST /v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, exp, err := h.Sessions.Create()
	if err != nil {
		middlewares.Logger(r).Error().Err(err).Msg("create session")
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	tok, _, err := h.Signer.SignSession(id, h.SessionTTL)
	if err != nil {
		middlewares.Logger(r).Error().Err(err).Msg("sign session")
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	httpx.Created(w, SessionResponse{Token: tok, SessionID: id, ExpiresAt: exp})
}

// POST /v1/passwords/check
//
// Similar candidates are rejected and never stored; anything else is scored
// and appended to the session history.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	sid, ok := middlewares.SessionIDFrom(r.Context())
	if !ok {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var body PasswordRequest
	if err := httpx.DecodeJSON(r, &body, false); err != nil {
		apperr.BadJSON(w, r, err)
		return
	}
	if body.Password == "" {
		apperr.Invalid(w, r, "password", "required", "password is required")
		return
	}
	if tooLong(w, r, "password", body.Password) {
		return
	}

	// scored outside the store lock; discarded if the candidate is rejected
	eval := h.evaluate(body.Password)
	threshold := h.Params.SimilarityThreshold
	var (
		matches []SimilarMatch
		entry   password.HistoryEntry
	)
	accepted, err := h.Sessions.Update(sid, func(history []password.HistoryEntry) (password.HistoryEntry, bool) {
		for _, m := range password.MatchHistory(body.Password, history, threshold) {
			matches = append(matches, SimilarMatch{
				Timestamp: m.Entry.Timestamp,
				Score:     m.Entry.Score,
				Ratio:     m.Ratio,
			})
		}
		if len(matches) > 0 {
			return password.HistoryEntry{}, false
		}
		entry = password.NewHistoryEntry(body.Password, eval.Score)
		return entry, true
	})
	if errors.Is(err, session.ErrNotFound) {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	if err != nil {
		middlewares.Logger(r).Error().Err(err).Msg("check: update history")
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	if !accepted {
		h.record(evaluations.Event{SessionID: sid, Outcome: evaluations.OutcomeSimilar, At: nowUTC()})
		httpx.WriteJSON(w, http.StatusConflict, RejectedResponse{
			Status:  "error",
			Error:   "too_similar",
			Message: password.MsgTooSimilar,
			Matches: matches,
		})
		return
	}

	h.record(evaluations.Event{
		SessionID: sid,
		Score:     eval.Score,
		Band:      string(eval.Band),
		Outcome:   evaluations.OutcomeAccepted,
		At:        entry.Timestamp,
	})
	httpx.OK(w, CheckResponse{Evaluation: eval, Entry: entry})
}

// GET /v1/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sid, ok := middlewares.SessionIDFrom(r.Context())
	if !ok {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	entries, err := h.Sessions.Snapshot(sid)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	if entries == nil {
		entries = []password.HistoryEntry{}
	}
	httpx.OK(w, HistoryResponse{Entries: entries, Count: len(entries)})
}

// DELETE /v1/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sid, ok := middlewares.SessionIDFrom(r.Context())
	if !ok {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if err := h.Sessions.Clear(sid); err != nil {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
