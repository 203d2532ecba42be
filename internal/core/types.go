package core

import (
	"database/sql/driver"
	"time"

	"github.com/JonMunkholm/csvload/internal/database"
)

// SourceSet is a CSV file loaded into memory. Every row has exactly
// len(Header) cells. It is not modified after ReadCSV returns.
type SourceSet struct {
	Header []string
	Rows   [][]string
	Lines  []int // 1-based file line of each row
}

// Len returns the number of data rows.
func (s *SourceSet) Len() int {
	return len(s.Rows)
}

// ColumnKind selects how a column's cells are normalized.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnTimestamp
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// MappedColumn ties a destination column to the CSV column feeding it.
type MappedColumn struct {
	Column      database.Column
	SourceIndex int    // Index into SourceSet.Header
	Source      string // Header name the values come from
	Kind        ColumnKind
	Derived     bool // Filled from the header without the timestamp suffix
}

// Mapping is the result of aligning a CSV header with a destination table.
type Mapping struct {
	Columns   []MappedColumn // In destination column order
	Discarded []string       // CSV headers with no destination column
	Unmatched []database.Column
}

// ColumnNames returns the destination column names in insert order.
func (m *Mapping) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Column.Name
	}
	return names
}

// Cell is a normalized value. Valid is false for NULL.
type Cell struct {
	Kind  ColumnKind
	Text  string
	Time  time.Time
	Valid bool
}

// NullCell returns a NULL of the given kind.
func NullCell(kind ColumnKind) Cell {
	return Cell{Kind: kind}
}

// Value implements driver.Valuer: nil for NULL, time.Time for timestamps,
// string otherwise.
func (c Cell) Value() (driver.Value, error) {
	if !c.Valid {
		return nil, nil
	}
	if c.Kind == ColumnTimestamp {
		return c.Time, nil
	}
	return c.Text, nil
}

// String renders the cell for logs. NULL renders as "".
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	if c.Kind == ColumnTimestamp {
		return c.Time.Format("2006-01-02 15:04:05")
	}
	return c.Text
}

// MappedRow is a source row reduced to the mapped columns, with cells
// aligned to Mapping.Columns.
type MappedRow struct {
	Line  int
	Cells []Cell
}

// Values returns the cells as plain insert arguments.
func (r MappedRow) Values() []any {
	values := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		values[i], _ = c.Value()
	}
	return values
}

// UploadPhase indicates the current stage of a run.
type UploadPhase string

const (
	PhaseConnecting    UploadPhase = "connecting"
	PhaseReading       UploadPhase = "reading"
	PhaseIntrospecting UploadPhase = "introspecting"
	PhaseMapping       UploadPhase = "mapping"
	PhaseInserting     UploadPhase = "inserting"
	PhaseComplete      UploadPhase = "complete"
	PhaseFailed        UploadPhase = "failed"
)

// UploadResult contains the final result of a run.
type UploadResult struct {
	RunID      string
	FileName   string
	Table      string // schema.table
	Phase      UploadPhase
	RowsRead   int
	RowsMapped int
	Attempted  int
	Committed  int // 0 unless the transaction committed
	Discarded  []string
	Unmatched  []MappingWarning
	Warnings   []CoercionWarning
	DryRun     bool
	Duration   time.Duration
	Error      string // Non-empty if the run failed
}

// Success reports whether the run completed without a fatal error.
func (r *UploadResult) Success() bool {
	return r.Phase == PhaseComplete && r.Error == ""
}
