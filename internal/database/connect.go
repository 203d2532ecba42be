package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvload/internal/config"
)

// DBTX is the interface for database operations.
// Satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}

// Open connects to the database described by cfg using dialect d and
// verifies the connection.
//
// The pool is capped at one connection: a run has exactly one writer and
// the whole load happens inside a single transaction.
func Open(ctx context.Context, d Dialect, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), d.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}

	return db, nil
}
