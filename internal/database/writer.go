package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Row is one row of insert values aligned with the writer's column list.
// Line is the CSV line the row came from, used in error reports.
type Row struct {
	Line   int
	Values []any
}

// WriteResult reports how many rows were sent and how many were committed.
// Committed is 0 whenever the transaction did not commit.
type WriteResult struct {
	Attempted int
	Committed int
}

// RowError identifies the row whose insert aborted the transaction.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("insert line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ErrNoColumns is returned when there is nothing to insert into.
var ErrNoColumns = errors.New("no columns to insert")

// Writer inserts rows into one table inside a single transaction.
type Writer struct {
	dialect Dialect
	dryRun  bool
}

// NewWriter creates a writer. With dryRun set every insert is executed and
// then rolled back, so constraint violations surface without changing data.
func NewWriter(d Dialect, dryRun bool) *Writer {
	return &Writer{dialect: d, dryRun: dryRun}
}

// InsertSQL builds the parameterized INSERT statement for the columns.
func (w *Writer) InsertSQL(schema, table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = w.dialect.Quote(col)
		params[i] = w.dialect.Placeholder(i + 1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QualifiedTable(w.dialect, schema, table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

// Insert writes all rows in one transaction. The first failing row rolls
// back everything and is reported as a *RowError.
func (w *Writer) Insert(ctx context.Context, db *sql.DB, schema, table string, columns []string, rows []Row) (WriteResult, error) {
	result := WriteResult{Attempted: len(rows)}

	if len(columns) == 0 {
		return result, ErrNoColumns
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, w.InsertSQL(schema, table, columns))
	if err != nil {
		return result, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if len(row.Values) != len(columns) {
			return result, &RowError{
				Line: row.Line,
				Err:  fmt.Errorf("expected %d values, got %d", len(columns), len(row.Values)),
			}
		}
		if _, err := stmt.ExecContext(ctx, row.Values...); err != nil {
			return result, &RowError{Line: row.Line, Err: err}
		}
	}

	if w.dryRun {
		if err := tx.Rollback(); err != nil {
			return result, fmt.Errorf("rollback dry run: %w", err)
		}
		return result, nil
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}

	result.Committed = len(rows)
	return result, nil
}
