package password

import "time"

// HistoryEntry is one accepted candidate. The caller owns the history slice and
// appends entries; nothing in this package mutates it.
type HistoryEntry struct {
	Password  string    `json:"password"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHistoryEntry stamps an accepted candidate with the current time.
func NewHistoryEntry(pwd string, score int) HistoryEntry {
	return HistoryEntry{Password: pwd, Score: score, Timestamp: time.Now().UTC()}
}
