package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	"github.com/5w1tchy/passmeter/internal/api/httpx"
	"github.com/5w1tchy/passmeter/internal/api/middlewares"
)

const (
	StatsCacheKey      = "admin:stats:"
	StatsCacheDuration = 30 * time.Second
)

// GET /admin/stats?window=24h
// Responses are cached in Redis per window; X-Cache says whether this one was.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.Sto == nil {
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Service Unavailable", "no database configured")
		return
	}
	window, ok := parseWindow(r.URL.Query().Get("window"))
	if !ok {
		apperr.Invalid(w, r, "window", "invalid", "window must be a duration up to 2160h")
		return
	}
	ctx := r.Context()
	key := StatsCacheKey + window.String()

	if body, ok := h.cachedStats(ctx, key); ok {
		writeRawJSON(w, "hit", body)
		return
	}

	stats, err := h.Sto.Stats(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		middlewares.Logger(r).Error().Err(err).Msg("admin stats")
		apperr.HandleDBError(w, r, err, "Stats unavailable")
		return
	}
	body, err := json.Marshal(httpx.Envelope{Status: "success", Data: StatsResponse{Window: window.String(), Stats: stats}})
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if h.RDB != nil {
		if err := h.RDB.SetEx(ctx, key, body, StatsCacheDuration).Err(); err != nil {
			middlewares.Logger(r).Warn().Err(err).Msg("stats cache write")
		}
	}
	writeRawJSON(w, "miss", body)
}

func (h *Handler) cachedStats(ctx context.Context, key string) ([]byte, bool) {
	if h.RDB == nil {
		return nil, false
	}
	body, err := h.RDB.Get(ctx, key).Bytes()
	if err != nil || len(body) == 0 {
		return nil, false
	}
	return body, true
}

func writeRawJSON(w http.ResponseWriter, cache string, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// GET /admin/runtime
func (h *Handler) Runtime(w http.ResponseWriter, r *http.Request) {
	resp := RuntimeResponse{
		Blacklist: h.Blacklist,
		Database:  h.Sto != nil,
		Redis:     h.RDB != nil,
	}
	if h.Sessions != nil {
		resp.Sessions = h.Sessions.Len()
	}
	if h.Queue != nil {
		resp.EventsDropped = h.Queue.Dropped()
	}
	httpx.OK(w, resp)
}

// POST /admin/evaluations/prune
func (h *Handler) Prune(w http.ResponseWriter, r *http.Request) {
	if h.Sto == nil {
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Service Unavailable", "no database configured")
		return
	}
	if !h.allow(w, r, pruneQuota) {
		return
	}
	var body PruneRequest
	if err := httpx.DecodeJSON(r, &body, false); err != nil {
		apperr.BadJSON(w, r, err)
		return
	}
	if body.KeepDays < 1 || body.KeepDays > 3650 {
		apperr.Invalid(w, r, "keep_days", "range", "keep_days must be between 1 and 3650")
		return
	}

	before := time.Now().UTC().AddDate(0, 0, -body.KeepDays)
	n, err := h.Sto.Prune(r.Context(), before)
	if err != nil {
		middlewares.Logger(r).Error().Err(err).Msg("admin prune")
		apperr.HandleDBError(w, r, err, "Prune failed")
		return
	}
	middlewares.Logger(r).Info().Int64("deleted", n).Int("keep_days", body.KeepDays).Msg("admin prune")
	httpx.OK(w, PruneResponse{KeepDays: body.KeepDays, Before: before, Deleted: n})
}
