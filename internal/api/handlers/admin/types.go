package admin

import (
	"context"
	"time"

	"github.com/5w1tchy/passmeter/internal/blacklist"
	"github.com/5w1tchy/passmeter/internal/store/evaluations"
)

// ===== DTOs =====

type StatsResponse struct {
	Window string `json:"window"`
	evaluations.Stats
}

type RuntimeResponse struct {
	Sessions      int              `json:"sessions"`
	EventsDropped int64            `json:"events_dropped"`
	Blacklist     blacklist.Report `json:"blacklist"`
	Database      bool             `json:"database"`
	Redis         bool             `json:"redis"`
}

type PruneResponse struct {
	KeepDays int       `json:"keep_days"`
	Before   time.Time `json:"before"`
	Deleted  int64     `json:"deleted"`
}

// ===== Request Bodies =====

type PruneRequest struct {
	KeepDays int `json:"keep_days"`
}

// ===== Store Interface =====

type Store interface {
	Stats(ctx context.Context, since time.Time) (evaluations.Stats, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type SessionCounter interface {
	Len() int
}

type DropCounter interface {
	Dropped() int64
}
