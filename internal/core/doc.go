// Package core loads one CSV file into one existing database table.
//
// This package holds the load logic independent of the CLI. It can be
// driven by cmd/csvload or by tests without modification.
//
// # Flow
//
// [Loader.Run] executes the stages strictly in order, logging each one:
//
//  1. Connect to the destination database
//  2. Read the CSV into a [SourceSet] ([ReadCSV])
//  3. Fetch the destination table's columns
//  4. Align CSV headers with destination columns ([MapColumns])
//  5. Normalize every cell ([Normalizer])
//  6. Insert all rows in a single transaction
//
// # Column Mapping
//
// Headers are matched to destination columns by name, exactly or
// case-insensitively. Headers without a destination column are dropped.
// Destination columns without a header are left out of the INSERT, so they
// receive NULL (or their default) and must allow it.
//
// A destination column ending in the timestamp suffix (default "_Parsed")
// is a timestamp column. When such a column has no header of its own but
// the header without the suffix exists, it is derived from that header.
//
// # Normalization
//
// Blank cells and null tokens ("NULL", "NaN", "N/A") become NULL. Timestamp
// cells are parsed with an ordered list of layouts; a cell that matches none
// becomes NULL and is reported as a [CoercionWarning]. Other cells are passed
// through as text and left to the database to convert.
//
// # Error Handling
//
// Fatal failures are returned as *[Error] with a [ErrorKind] identifying the
// stage; [ExitCode] turns them into process exit statuses. Technical errors
// are annotated with a support code using [MapError].
package core
