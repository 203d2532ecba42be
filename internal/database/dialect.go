// Package database holds everything that talks to the destination database:
// connecting, reading the destination table's columns and writing rows.
//
// SQL differences between the supported drivers are isolated behind Dialect.
// SQL Server is the primary target; PostgreSQL and SQLite use the same code
// paths with their own placeholder, quoting and introspection rules.
package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // registers "sqlserver"
	_ "github.com/jackc/pgx/v5/stdlib"   // registers "pgx"
	_ "github.com/mattn/go-sqlite3"      // registers "sqlite3"

	"github.com/JonMunkholm/csvload/internal/config"
)

// Dialect describes the SQL differences between supported drivers.
type Dialect interface {
	// Name is the config value selecting this dialect.
	Name() string
	// DriverName is the database/sql driver name.
	DriverName() string
	// DSN builds the connection string.
	DSN(cfg config.DatabaseConfig) string
	// Redacted is DSN with the password masked, safe for logs.
	Redacted(cfg config.DatabaseConfig) string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder(n int) string
	// Quote quotes an identifier.
	Quote(ident string) string
	// ColumnsQuery returns the query listing a table's columns as
	// (name, data type, nullable) in ordinal order, with its arguments.
	ColumnsQuery(schema, table string) (string, []any)
}

// ForDriver returns the dialect for a DB_DRIVER value.
func ForDriver(name string) (Dialect, error) {
	switch name {
	case config.DriverSQLServer, "":
		return SQLServer{}, nil
	case config.DriverPostgres:
		return Postgres{}, nil
	case config.DriverSQLite:
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", name)
	}
}

// QualifiedTable returns the quoted schema.table name. An empty schema
// yields just the quoted table.
func QualifiedTable(d Dialect, schema, table string) string {
	if schema == "" {
		return d.Quote(table)
	}
	return d.Quote(schema) + "." + d.Quote(table)
}

// ----------------------------------------------------------------------------
// SQL Server
// ----------------------------------------------------------------------------

// SQLServer targets Microsoft SQL Server through go-mssqldb.
type SQLServer struct{}

func (SQLServer) Name() string       { return config.DriverSQLServer }
func (SQLServer) DriverName() string { return "sqlserver" }

// DSN builds a sqlserver:// URL. A server of the form host\instance
// addresses a named instance and ignores the port.
func (s SQLServer) DSN(cfg config.DatabaseConfig) string {
	return s.url(cfg, url.UserPassword(cfg.User, cfg.Password)).String()
}

func (s SQLServer) Redacted(cfg config.DatabaseConfig) string {
	return s.url(cfg, url.UserPassword(cfg.User, cfg.Password)).Redacted()
}

func (SQLServer) url(cfg config.DatabaseConfig, user *url.Userinfo) *url.URL {
	timeout := strconv.Itoa(int(cfg.ConnectTimeout.Seconds()))

	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("encrypt", strings.ToLower(cfg.Encrypt))
	query.Set("connection timeout", timeout)
	query.Set("dial timeout", timeout)
	query.Set("app name", "csvload")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     user,
		RawQuery: query.Encode(),
	}
	if host, instance, ok := strings.Cut(cfg.Server, `\`); ok {
		u.Host = host
		u.Path = instance
	} else {
		u.Host = net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
	}
	return u
}

func (SQLServer) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (SQLServer) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (SQLServer) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME, DATA_TYPE, CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`, []any{schema, table}
}

// ----------------------------------------------------------------------------
// PostgreSQL
// ----------------------------------------------------------------------------

// Postgres targets PostgreSQL through pgx's database/sql adapter.
type Postgres struct{}

func (Postgres) Name() string       { return config.DriverPostgres }
func (Postgres) DriverName() string { return "pgx" }

func (p Postgres) DSN(cfg config.DatabaseConfig) string {
	return p.url(cfg, url.UserPassword(cfg.User, cfg.Password)).String()
}

func (p Postgres) Redacted(cfg config.DatabaseConfig) string {
	return p.url(cfg, url.UserPassword(cfg.User, cfg.Password)).Redacted()
}

func (Postgres) url(cfg config.DatabaseConfig, user *url.Userinfo) *url.URL {
	sslmode := "prefer"
	switch strings.ToLower(cfg.Encrypt) {
	case "disable":
		sslmode = "disable"
	case "true":
		sslmode = "require"
	}

	query := url.Values{}
	query.Set("sslmode", sslmode)
	query.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	query.Set("application_name", "csvload")

	return &url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: query.Encode(),
	}
}

func (Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Postgres) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (Postgres) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT column_name, data_type, is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, []any{schema, table}
}

// ----------------------------------------------------------------------------
// SQLite
// ----------------------------------------------------------------------------

// SQLite targets a local SQLite file. DB_SERVER is the file path and
// DB_SCHEMA the attached database name, normally "main".
type SQLite struct{}

func (SQLite) Name() string       { return config.DriverSQLite }
func (SQLite) DriverName() string { return "sqlite3" }

func (SQLite) DSN(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_busy_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Milliseconds())))
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return cfg.Server + "?" + params.Encode()
}

func (s SQLite) Redacted(cfg config.DatabaseConfig) string { return s.DSN(cfg) }

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLite) ColumnsQuery(schema, table string) (string, []any) {
	if schema == "" {
		schema = "main"
	}
	return `SELECT name, type, "notnull" = 0 FROM pragma_table_info(?, ?) ORDER BY cid`, []any{table, schema}
}
