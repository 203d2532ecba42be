package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvload/internal/config"
	"github.com/JonMunkholm/csvload/internal/database"
	"github.com/JonMunkholm/csvload/internal/logging"
)

// Loader runs a load of one CSV file into one table.
type Loader struct {
	cfg    *config.Config
	logger *slog.Logger

	// DryRun executes every insert and then rolls the transaction back.
	DryRun bool
}

// NewLoader creates a loader. cfg must already be validated.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Run connects, reads path, aligns it with table and inserts all rows in a
// single transaction. The result is always non-nil; a fatal failure is also
// returned as an *Error whose Kind names the failing stage.
func (l *Loader) Run(ctx context.Context, path, table string) (*UploadResult, error) {
	start := time.Now()
	schema := l.cfg.Database.Schema

	result := &UploadResult{
		RunID:    uuid.NewString(),
		FileName: path,
		Table:    schema + "." + table,
		DryRun:   l.DryRun,
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	log := logging.FromContext(ctx, l.logger).With("table", result.Table)

	log.Info("starting data upload", "file", path, "dry_run", l.DryRun)

	if table == "" {
		return l.fail(log, result, start, NewError(KindConfiguration, "validate", errors.New("destination table name is empty")))
	}
	loc, err := l.cfg.Load.Location()
	if err != nil {
		return l.fail(log, result, start, NewError(KindConfiguration, "validate", err))
	}

	// Connect
	result.Phase = PhaseConnecting
	dialect, err := database.ForDriver(l.cfg.Database.Driver)
	if err != nil {
		return l.fail(log, result, start, NewError(KindConfiguration, "connect", err))
	}
	db, err := database.Open(ctx, dialect, l.cfg.Database)
	if err != nil {
		log.Error("database connection failed", "dsn", dialect.Redacted(l.cfg.Database))
		return l.fail(log, result, start, NewError(KindConnection, "connect", err))
	}
	defer db.Close()
	log.Info("connected to database", "driver", dialect.Name(), "server", l.cfg.Database.Server, "database", l.cfg.Database.Database)

	// Read
	result.Phase = PhaseReading
	src, err := ReadCSV(path, ReadOptions{
		Delimiter: l.cfg.CSV.DelimiterRune(),
		Encoding:  l.cfg.CSV.Encoding,
	})
	if err != nil {
		return l.fail(log, result, start, err)
	}
	result.RowsRead = src.Len()
	log.Info("read csv", "rows", src.Len(), "columns", len(src.Header))
	if src.Len() == 0 {
		log.Warn("csv has a header but no data rows")
	}

	// Introspect
	result.Phase = PhaseIntrospecting
	columns, err := database.FetchColumns(ctx, db, dialect, schema, table)
	if err != nil {
		kind := KindSchema
		if !errors.Is(err, database.ErrTableNotFound) && ctx.Err() == nil {
			kind = KindConnection
		}
		return l.fail(log, result, start, NewError(kind, "fetch columns", err))
	}
	log.Info("fetched table schema", "columns", len(columns))

	// Map
	result.Phase = PhaseMapping
	mapping, err := MapColumns(src.Header, columns, l.mapOptions())
	if err != nil {
		return l.fail(log, result, start, err)
	}
	result.Discarded = mapping.Discarded
	if len(mapping.Discarded) > 0 {
		log.Warn("discarding csv columns not found in table", "columns", mapping.Discarded)
	}
	for _, col := range mapping.Unmatched {
		w := MappingWarning{Column: col.Name, Nullable: col.Nullable}
		result.Unmatched = append(result.Unmatched, w)
		log.Warn(w.String(), "column", w.Column)
	}
	for _, col := range mapping.Columns {
		if col.Derived {
			log.Info("deriving timestamp column", "column", col.Column.Name, "source", col.Source)
		}
	}

	normalizer := NewNormalizer(NormalizeOptions{
		NullTokens:   l.cfg.Load.NullTokens,
		Layouts:      l.cfg.Load.TimestampFormats,
		Location:     loc,
		CleanNumeric: l.cfg.Load.CleanNumeric,
	})
	mapped, warnings := normalizer.NormalizeRows(src, mapping)
	result.RowsMapped = len(mapped)
	result.Warnings = warnings
	for _, w := range warnings {
		log.Warn(w.String(), "line", w.Line, "column", w.Column)
	}
	log.Info("mapped rows", "rows", len(mapped), "columns", mapping.ColumnNames(), "warnings", len(warnings))

	// Insert
	result.Phase = PhaseInserting
	rows := make([]database.Row, len(mapped))
	for i, r := range mapped {
		rows[i] = database.Row{Line: r.Line, Values: r.Values()}
	}

	writer := database.NewWriter(dialect, l.DryRun)
	written, err := writer.Insert(ctx, db, schema, table, mapping.ColumnNames(), rows)
	result.Attempted = written.Attempted
	result.Committed = written.Committed
	if err != nil {
		var rowErr *database.RowError
		if errors.As(err, &rowErr) {
			log.Error("insert failed; transaction rolled back", "line", rowErr.Line)
		}
		return l.fail(log, result, start, NewError(KindWrite, "insert", err))
	}

	if l.DryRun {
		log.Info(fmt.Sprintf("dry run: %d rows inserted and rolled back", written.Attempted))
	} else {
		log.Info(fmt.Sprintf("%d rows written", written.Committed))
	}

	result.Phase = PhaseComplete
	result.Duration = time.Since(start)
	log.Info("upload complete", "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (l *Loader) mapOptions() MapOptions {
	return MapOptions{
		Match:            MatchMode(l.cfg.Load.MatchMode),
		TimestampSuffix:  l.cfg.Load.TimestampSuffix,
		TimestampColumns: l.cfg.Load.TimestampColumns,
		TimestampByType:  l.cfg.Load.TimestampByType,
		DeriveTimestamps: l.cfg.Load.DeriveTimestamps,
		Aliases:          l.cfg.Load.Aliases,
	}
}

// fail records err on the result and logs it with its support code.
func (l *Loader) fail(log *slog.Logger, result *UploadResult, start time.Time, err error) (*UploadResult, error) {
	phase := result.Phase
	result.Phase = PhaseFailed
	result.Error = err.Error()
	result.Duration = time.Since(start)

	msg := MapError(err)
	attrs := []any{"phase", phase, "kind", KindOf(err).String(), "error", err, "code", msg.Code, "hint", msg.Action}
	if de, ok := database.InspectError(err); ok {
		attrs = append(attrs, "db_code", de.Code)
	}
	log.Error("upload failed", attrs...)
	return result, err
}
