package evaluations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/passmeter/internal/store/dbx"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeSimilar  = "similar"
)

// Event is one password check. The password itself is never recorded.
type Event struct {
	SessionID string
	Score     int
	Band      string
	Outcome   string
	At        time.Time
}

type Stats struct {
	Since           time.Time `json:"since"`
	Total           int       `json:"total"`
	Weak            int       `json:"weak"`
	Moderate        int       `json:"moderate"`
	Strong          int       `json:"strong"`
	RejectedSimilar int       `json:"rejected_similar"`
	Sessions        int       `json:"sessions"`
}

type Store struct{ db dbx.DB }

func New(db dbx.DB) *Store { return &Store{db: db} }

const insertTmpl = `INSERT INTO public.password_evaluations (session_id, score, band, outcome, created_at) VALUES %s`

// InsertBatch writes events in one statement.
func (s *Store) InsertBatch(ctx context.Context, batch []Event) error {
	if len(batch) == 0 {
		return nil
	}
	args := make([]any, 0, len(batch)*5)
	vals := make([]string, 0, len(batch))
	for i, ev := range batch {
		p := 5 * i
		vals = append(vals, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", p+1, p+2, p+3, p+4, p+5))
		args = append(args, ev.SessionID, ev.Score, ev.Band, ev.Outcome, ev.At)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(insertTmpl, strings.Join(vals, ",")), args...)
	return err
}

const statsQuery = `SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE outcome = 'accepted' AND band = 'weak'),
  COUNT(*) FILTER (WHERE outcome = 'accepted' AND band = 'moderate'),
  COUNT(*) FILTER (WHERE outcome = 'accepted' AND band = 'strong'),
  COUNT(*) FILTER (WHERE outcome = 'similar'),
  COUNT(DISTINCT session_id)
FROM public.password_evaluations
WHERE created_at >= $1`

func (s *Store) Stats(ctx context.Context, since time.Time) (Stats, error) {
	st := Stats{Since: since}
	err := s.db.QueryRowContext(ctx, statsQuery, since).Scan(
		&st.Total, &st.Weak, &st.Moderate, &st.Strong, &st.RejectedSimilar, &st.Sessions,
	)
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Prune deletes events older than before and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM public.password_evaluations WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
