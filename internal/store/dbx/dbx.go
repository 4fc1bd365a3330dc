// Package dbx holds the small database/sql helpers shared by the stores.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// Queryer, Execer and Getter let stores take *sql.DB and *sql.Tx alike.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is what the stores need from a pool.
type DB interface {
	Queryer
	Execer
	Getter
}

// QueryColumn runs a single-column query and scans every row into T.
func QueryColumn[T any](ctx context.Context, q Queryer, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ExecAll runs stmts in order and stops at the first failure, naming its index.
func ExecAll(ctx context.Context, ex Execer, stmts ...string) error {
	for i, stmt := range stmts {
		if _, err := ex.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
