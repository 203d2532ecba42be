// Package config provides centralized configuration management for the loader.
// It loads configuration from environment variables with sensible defaults and
// validates all settings before any file or database access, so a misconfigured
// run fails fast.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	CSV      CSVConfig
	Load     LoadConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds destination database settings.
type DatabaseConfig struct {
	// Driver selects the SQL dialect: sqlserver, postgres or sqlite3 (default: sqlserver)
	Driver string `env:"DB_DRIVER" default:"sqlserver"`

	// Server is the host name or address. For sqlite3 it is the database file path.
	Server string `env:"DB_SERVER" required:"true"`

	// Port is the TCP port (default: 1433)
	Port int `env:"DB_PORT" default:"1433"`

	// Database is the database (catalog) name
	Database string `env:"DB_DATABASE" envAlt:"DB_NAME" required:"true"`

	// User is the login name
	User string `env:"DB_USER" required:"true"`

	// Password is the login password
	Password string `env:"DB_PASSWORD" required:"true"`

	// Schema owns the destination table, e.g. dbo
	Schema string `env:"DB_SCHEMA" required:"true"`

	// Encrypt is passed through to the SQL Server driver: disable, false or true (default: false)
	Encrypt string `env:"DB_ENCRYPT" default:"false"`

	// ConnectTimeout bounds dialing and login (default: 30s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"30s"`
}

// CSVConfig holds source file settings.
type CSVConfig struct {
	// Delimiter is the single field separator character (default: ",")
	Delimiter string `env:"CSV_DELIMITER" default:","`

	// Encoding is a WHATWG encoding label, e.g. utf-8, windows-1252, utf-16le (default: utf-8)
	Encoding string `env:"CSV_ENCODING" default:"utf-8"`
}

// LoadConfig holds column matching and value normalization settings.
type LoadConfig struct {
	// MatchMode is exact or case-insensitive (default: case-insensitive)
	MatchMode string `env:"LOAD_MATCH_MODE" default:"case-insensitive"`

	// TimestampSuffix marks timestamp columns by name (default: _Parsed)
	TimestampSuffix string `env:"LOAD_TIMESTAMP_SUFFIX" default:"_Parsed"`

	// TimestampColumns lists additional timestamp columns by exact name
	TimestampColumns []string `env:"LOAD_TIMESTAMP_COLUMNS"`

	// TimestampFormats is the ordered list of Go time layouts tried when parsing
	TimestampFormats []string `env:"LOAD_TIMESTAMP_FORMATS" default:"2006-01-02 15:04:05,2006-01-02 15:04:05.000,2006-01-02T15:04:05,2006-01-02T15:04:05Z07:00,2006-01-02,01/02/2006 15:04:05,1/2/2006 3:04:05 PM,1/2/2006 3:04 PM,1/2/2006 15:04,1/2/2006"`

	// Timezone is the IANA location timestamps without an offset are read in (default: UTC)
	Timezone string `env:"LOAD_TIMEZONE" default:"UTC"`

	// NullTokens are values treated as NULL, compared case-insensitively (default: NULL,NaN,N/A)
	NullTokens []string `env:"LOAD_NULL_TOKENS" default:"NULL,NaN,N/A"`

	// TimestampByType treats columns declared with a date or time type as timestamps (default: true)
	TimestampByType bool `env:"LOAD_TIMESTAMP_BY_TYPE" default:"true"`

	// DeriveTimestamps fills a missing X_Parsed column from header X (default: true)
	DeriveTimestamps bool `env:"LOAD_DERIVE_TIMESTAMPS" default:"true"`

	// CleanNumeric strips currency symbols and separators in numeric columns (default: false)
	CleanNumeric bool `env:"LOAD_CLEAN_NUMERIC" default:"false"`

	// Aliases maps a CSV header to a destination column name. Set from the job file only.
	Aliases map[string]string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File is the append-only log file; empty disables the file sink (default: upload.log)
	File string `env:"LOG_FILE" default:"upload.log"`

	// MaxSizeMB rotates the file once it grows past this size (default: 100)
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB" default:"100"`

	// MaxBackups is the number of rotated files to keep; 0 keeps all
	MaxBackups int `env:"LOG_MAX_BACKUPS" default:"0"`

	// MaxAgeDays is how long rotated files are kept; 0 keeps them forever
	MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" default:"0"`

	// Compress gzips rotated files (default: false)
	Compress bool `env:"LOG_COMPRESS" default:"false"`
}

// Match modes recognized by LoadConfig.MatchMode.
const (
	MatchExact           = "exact"
	MatchCaseInsensitive = "case-insensitive"
)

// Supported values for DatabaseConfig.Driver.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite3"
)

// Location resolves the configured timezone.
func (c *LoadConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DelimiterRune returns the delimiter as a rune. "\t" and "tab" select a tab.
func (c *CSVConfig) DelimiterRune() rune {
	switch c.Delimiter {
	case `\t`, "tab", "\t":
		return '\t'
	case "":
		return ','
	}
	return []rune(c.Delimiter)[0]
}

// String returns a safe string representation of the config for logging.
// The database password is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, Server: %q, Port: %d, Database: %q, User: %q, Password: [MASKED], Schema: %q}, ",
		c.Database.Driver, c.Database.Server, c.Database.Port, c.Database.Database, c.Database.User, c.Database.Schema))
	b.WriteString(fmt.Sprintf("CSV: {Delimiter: %q, Encoding: %q}, ", c.CSV.Delimiter, c.CSV.Encoding))
	b.WriteString(fmt.Sprintf("Load: {MatchMode: %q, TimestampSuffix: %q, TimestampColumns: %v, NullTokens: %v, DeriveTimestamps: %v}, ",
		c.Load.MatchMode, c.Load.TimestampSuffix, c.Load.TimestampColumns, c.Load.NullTokens, c.Load.DeriveTimestamps))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, File: %q}",
		c.Logging.Level, c.Logging.Format, c.Logging.File))
	b.WriteString("}")
	return b.String()
}
