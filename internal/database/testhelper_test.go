package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvload/internal/config"
)

// openTestSQLite opens a SQLite database in t.TempDir() through Open and
// runs the given DDL.
func openTestSQLite(t *testing.T, ddl string) (*sql.DB, Dialect) {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Server:         filepath.Join(t.TempDir(), "test.sqlite"),
		ConnectTimeout: 5 * time.Second,
	}
	dialect := SQLite{}
	db, err := Open(context.Background(), dialect, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if ddl != "" {
		_, err = db.ExecContext(context.Background(), ddl)
		require.NoError(t, err)
	}
	return db, dialect
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
