package database

import (
	"errors"
	"strconv"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// DriverError is the server-side error number and message extracted from a
// driver error, for logging next to the wrapped error text.
type DriverError struct {
	Driver  string
	Code    string // SQL Server error number, SQLSTATE, or SQLite extended code
	Message string
}

// InspectError extracts driver-specific details from err.
// Returns false when err does not come from a supported driver.
func InspectError(err error) (DriverError, bool) {
	if err == nil {
		return DriverError{}, false
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return DriverError{
			Driver:  "sqlserver",
			Code:    strconv.Itoa(int(msErr.Number)),
			Message: msErr.Message,
		}, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return DriverError{
			Driver:  "postgres",
			Code:    pgErr.Code,
			Message: pgErr.Message,
		}, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return DriverError{
			Driver:  "sqlite3",
			Code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
		}, true
	}

	return DriverError{}, false
}
