package admin

import (
	"github.com/5w1tchy/passmeter/internal/blacklist"
	"github.com/redis/go-redis/v9"
)

// Handler serves /admin/*. Sto is nil when no database is configured.
type Handler struct {
	RDB       *redis.Client
	Sto       Store
	Sessions  SessionCounter
	Queue     DropCounter
	Blacklist blacklist.Report
}

func NewHandler(rdb *redis.Client, store Store, sessions SessionCounter, queue DropCounter, report blacklist.Report) *Handler {
	return &Handler{
		RDB:       rdb,
		Sto:       store,
		Sessions:  sessions,
		Queue:     queue,
		Blacklist: report,
	}
}
