package meter

import (
	"errors"
	"math"
	"net/http"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/api/httpx"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
	"github.com/5w1tchy/passmeter/internal/security/password"
)

// POST /v1/passwords/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body PasswordRequest
	if err := httpx.DecodeJSON(r, &body, false); err != nil {
		apperr.BadJSON(w, r, err)
		return
	}
	if tooLong(w, r, "password", body.Password) {
		return
	}
	httpx.OK(w, h.evaluate(body.Password))
}

// POST /v1/passwords/similarity
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	var body SimilarityRequest
	if err := httpx.DecodeJSON(r, &body, false); err != nil {
		apperr.BadJSON(w, r, err)
		return
	}
	if tooLong(w, r, "candidate", body.Candidate) || tooLong(w, r, "reference", body.Reference) {
		return
	}
	threshold := h.Params.SimilarityThreshold
	if body.Threshold != nil {
		threshold = *body.Threshold
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			apperr.Invalid(w, r, "threshold", "range", "threshold must be between 0 and 1")
			return
		}
	}
	ratio := password.Ratio(body.Candidate, body.Reference)
	httpx.OK(w, SimilarityResponse{
		Ratio:     ratio,
		Threshold: threshold,
		Similar:   ratio >= threshold,
	})
}

// POST /v1/passwords/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := httpx.DecodeJSON(r, &body, true); err != nil {
		apperr.BadJSON(w, r, err)
		return
	}

	policy := password.GenerationPolicy{
		Length:           h.Params.DefaultLength,
		Lowercase:        on(body.Lowercase),
		Uppercase:        on(body.Uppercase),
		Digits:           on(body.Digits),
		Special:          on(body.Special),
		RequireEachClass: body.RequireEachClass,
	}
	if body.Length != nil {
		policy.Length = *body.Length
	}
	if policy.Length > h.Params.MaxLength {
		apperr.Invalid(w, r, "length", "range", "length exceeds the configured maximum")
		return
	}

	pwd, err := password.Generate(policy, h.Rand)
	if err != nil {
		var pe *password.PolicyError
		if errors.As(err, &pe) {
			apperr.Invalid(w, r, "policy", "invalid_policy", pe.Reason)
			return
		}
		middlewares.Logger(r).Error().Err(err).Msg("generate failed")
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	httpx.OK(w, GenerateResponse{
		Password:   pwd,
		Policy:     policy,
		Evaluation: h.evaluate(pwd),
	})
}

func on(b *bool) bool { return b == nil || *b }
