package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/5w1tchy/passmeter/internal/validate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotConfigured means DATABASE_URL is unset; the service runs without Postgres.
var ErrNotConfigured = errors.New("DATABASE_URL not set")

// PoolConfig sizes the database/sql pool. Only evaluation events and the
// blacklist table go through it.
type PoolConfig struct {
	MaxConns         int
	StatementTimeout time.Duration
}

// PoolConfigFromEnv reads DB_MAX_CONNS (1..100, default 5) and
// DB_STATEMENT_TIMEOUT (default 5s).
func PoolConfigFromEnv() PoolConfig {
	pc := PoolConfig{MaxConns: 5, StatementTimeout: 5 * time.Second}
	if raw := os.Getenv("DB_MAX_CONNS"); raw != "" {
		if n, err := validate.ParseIntRange(raw, 1, 100); err == nil {
			pc.MaxConns = n
		}
	}
	if raw := os.Getenv("DB_STATEMENT_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			pc.StatementTimeout = d
		}
	}
	return pc
}

// ParseDSN turns DATABASE_URL into a pgx config tagged with the service name
// and a server-side statement timeout.
func ParseDSN(dsn string, pc PoolConfig) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cc.RuntimeParams == nil {
		cc.RuntimeParams = map[string]string{}
	}
	if _, ok := cc.RuntimeParams["application_name"]; !ok {
		cc.RuntimeParams["application_name"] = "passmeter"
	}
	if pc.StatementTimeout > 0 {
		cc.RuntimeParams["statement_timeout"] = fmt.Sprint(pc.StatementTimeout.Milliseconds())
	}
	return cc, nil
}

func ConnectDB(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrNotConfigured
	}
	pc := PoolConfigFromEnv()
	cc, err := ParseDSN(dsn, pc)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(pc.MaxConns)
	db.SetMaxIdleConns(pc.MaxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
