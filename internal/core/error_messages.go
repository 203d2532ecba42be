package core

// Error codes reference
//
// Fatal errors are logged with a support code and a suggested action so an
// operator reading upload.log can act without reading driver messages.
//
//	DB001-DB099    connection and database errors
//	TBL001-TBL099  destination table errors
//	VAL001-VAL099  row values rejected by the database
//	FILE001-FILE099 CSV file errors
//	ERR000         no pattern matched; see the technical error in the log
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	patterns []string
	msg      UserMessage
}

var errorPatterns = []errorPattern{
	// Connection (SQL Server, PostgreSQL and SQLite wording)
	{
		patterns: []string{"login failed", "password authentication failed"},
		msg: UserMessage{
			Message: "The database rejected the login",
			Action:  "Check DB_USER and DB_PASSWORD in your .env file",
			Code:    "DB001",
		},
	},
	{
		patterns: []string{"cannot open database", "does not exist", "unable to open database file"},
		msg: UserMessage{
			Message: "The database could not be opened",
			Action:  "Check DB_DATABASE and that the login has access to it",
			Code:    "DB002",
		},
	},
	{
		patterns: []string{"connection refused", "no such host", "unable to open tcp connection", "i/o timeout", "network is unreachable"},
		msg: UserMessage{
			Message: "Unable to reach the database server",
			Action:  "Check DB_SERVER and DB_PORT, that the server allows remote connections, and that the firewall allows TCP port 1433",
			Code:    "DB003",
		},
	},
	{
		patterns: []string{"connection reset", "broken pipe"},
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Run the load again; nothing was committed",
			Code:    "DB004",
		},
	},
	{
		patterns: []string{"deadlock"},
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Run the load again; nothing was committed",
			Code:    "DB005",
		},
	},
	{
		patterns: []string{"context deadline exceeded", "timeout"},
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Raise DB_CONNECT_TIMEOUT or try again later",
			Code:    "DB006",
		},
	},

	// Destination table
	{
		patterns: []string{"table not found"},
		msg: UserMessage{
			Message: "Destination table not found",
			Action:  "Check the table name and DB_SCHEMA; the table must already exist",
			Code:    "TBL001",
		},
	},
	{
		patterns: []string{"no csv columns match"},
		msg: UserMessage{
			Message: "No CSV header matches a column of the destination table",
			Action:  "Check the header row, LOAD_MATCH_MODE and the job file aliases",
			Code:    "TBL002",
		},
	},
	{
		patterns: []string{"ambiguous header"},
		msg: UserMessage{
			Message: "Two CSV headers map to the same destination column",
			Action:  "Rename or remove one of the headers",
			Code:    "TBL003",
		},
	},

	// Values rejected by the database
	{
		patterns: []string{"cannot insert the value null", "not null constraint", "violates not-null"},
		msg: UserMessage{
			Message: "A required column received no value",
			Action:  "Add the column to the CSV or fill the empty cells",
			Code:    "VAL001",
		},
	},
	{
		patterns: []string{"duplicate key", "unique constraint", "violation of primary key"},
		msg: UserMessage{
			Message: "A row duplicates an existing key",
			Action:  "Remove duplicate rows; reruns append the same rows again",
			Code:    "VAL002",
		},
	},
	{
		patterns: []string{"foreign key"},
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Load the parent table first",
			Code:    "VAL003",
		},
	},
	{
		patterns: []string{"would be truncated", "value too long", "right truncation"},
		msg: UserMessage{
			Message: "A value is too long for its column",
			Action:  "Shorten the value or widen the column",
			Code:    "VAL004",
		},
	},
	{
		patterns: []string{"conversion failed", "error converting", "invalid input syntax", "check constraint", "out of range"},
		msg: UserMessage{
			Message: "A value does not match the column type",
			Action:  "Check the reported line for text in a numeric or date column",
			Code:    "VAL005",
		},
	},

	// CSV file
	{
		patterns: []string{"no such file", "cannot find the file"},
		msg: UserMessage{
			Message: "The CSV file was not found",
			Action:  "Check the file path",
			Code:    "FILE001",
		},
	},
	{
		patterns: []string{"empty file"},
		msg: UserMessage{
			Message: "The CSV file has no header row",
			Action:  "Export the file again with a header row",
			Code:    "FILE002",
		},
	},
	{
		patterns: []string{"duplicate header"},
		msg: UserMessage{
			Message: "The CSV header repeats a column name",
			Action:  "Rename the repeated header",
			Code:    "FILE003",
		},
	},
	{
		patterns: []string{"wrong number of fields", "extraneous", "bare \"", "parse csv"},
		msg: UserMessage{
			Message: "The file is not a valid CSV",
			Action:  "Check CSV_DELIMITER and quoting on the reported line",
			Code:    "FILE004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check upload.log for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// If no pattern matches, a fallback message with code ERR000 is returned.
//
//	msg := MapError(errors.New("mssql: Login failed for user 'loader'."))
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		for _, p := range ep.patterns {
			if strings.Contains(errStr, p) {
				return ep.msg
			}
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
