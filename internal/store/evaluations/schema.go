package evaluations

import (
	"context"
	"database/sql"

	"github.com/5w1tchy/passmeter/internal/store/dbx"
)

// schema is idempotent; it runs on every start when a database is configured.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS public.password_evaluations (
  id          BIGSERIAL PRIMARY KEY,
  session_id  TEXT        NOT NULL,
  score       SMALLINT    NOT NULL CONSTRAINT password_evaluations_score_check CHECK (score BETWEEN 0 AND 5),
  band        TEXT        NOT NULL CONSTRAINT password_evaluations_band_check CHECK (band IN ('', 'weak', 'moderate', 'strong')),
  outcome     TEXT        NOT NULL CONSTRAINT password_evaluations_outcome_check CHECK (outcome IN ('accepted', 'similar')),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS password_evaluations_created_at_idx ON public.password_evaluations (created_at)`,
	`CREATE TABLE IF NOT EXISTS public.common_passwords (
  value TEXT NOT NULL CONSTRAINT common_passwords_value_key UNIQUE
)`,
}

// EnsureSchema creates the tables this service reads and writes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return dbx.WithinTx(ctx, db, func(tx *sql.Tx) error {
		return dbx.ExecAll(ctx, tx, schema...)
	})
}
