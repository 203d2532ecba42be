package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequired sets the five required variables for the duration of the test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_SERVER", "10.0.0.5")
	t.Setenv("DB_DATABASE", "Records")
	t.Setenv("DB_USER", "loader")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_SCHEMA", "tcn")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != DriverSQLServer {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLServer)
	}
	if cfg.Database.Port != 1433 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 1433)
	}
	if cfg.Database.ConnectTimeout != 30*time.Second {
		t.Errorf("Database.ConnectTimeout = %v, want %v", cfg.Database.ConnectTimeout, 30*time.Second)
	}
	if cfg.CSV.DelimiterRune() != ',' {
		t.Errorf("CSV.DelimiterRune() = %q, want ','", cfg.CSV.DelimiterRune())
	}
	if cfg.Load.MatchMode != MatchCaseInsensitive {
		t.Errorf("Load.MatchMode = %q, want %q", cfg.Load.MatchMode, MatchCaseInsensitive)
	}
	if cfg.Load.TimestampSuffix != "_Parsed" {
		t.Errorf("Load.TimestampSuffix = %q, want %q", cfg.Load.TimestampSuffix, "_Parsed")
	}
	if !cfg.Load.DeriveTimestamps {
		t.Error("Load.DeriveTimestamps = false, want true")
	}
	if !cfg.Load.TimestampByType {
		t.Error("Load.TimestampByType = false, want true")
	}
	if got := strings.Join(cfg.Load.NullTokens, "|"); got != "NULL|NaN|N/A" {
		t.Errorf("Load.NullTokens = %q, want %q", got, "NULL|NaN|N/A")
	}
	if len(cfg.Load.TimestampFormats) < 2 || cfg.Load.TimestampFormats[0] != "2006-01-02 15:04:05" {
		t.Errorf("Load.TimestampFormats = %v", cfg.Load.TimestampFormats)
	}
	if cfg.Logging.File != "upload.log" {
		t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, "upload.log")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PORT", "14330")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("CSV_ENCODING", "windows-1252")
	t.Setenv("LOAD_MATCH_MODE", "exact")
	t.Setenv("LOAD_TIMESTAMP_COLUMNS", "ShippedAt, ReceivedAt ")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Port != 14330 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 14330)
	}
	if cfg.CSV.DelimiterRune() != ';' {
		t.Errorf("CSV.DelimiterRune() = %q, want ';'", cfg.CSV.DelimiterRune())
	}
	if cfg.Load.MatchMode != MatchExact {
		t.Errorf("Load.MatchMode = %q, want %q", cfg.Load.MatchMode, MatchExact)
	}
	expected := []string{"ShippedAt", "ReceivedAt"}
	if len(cfg.Load.TimestampColumns) != len(expected) {
		t.Fatalf("TimestampColumns length = %d, want %d", len(cfg.Load.TimestampColumns), len(expected))
	}
	for i, v := range expected {
		if cfg.Load.TimestampColumns[i] != v {
			t.Errorf("TimestampColumns[%d] = %q, want %q", i, cfg.Load.TimestampColumns[i], v)
		}
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DATABASE", "")
	t.Setenv("DB_NAME", "AltRecords")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Database != "AltRecords" {
		t.Errorf("Database.Database = %q, want %q", cfg.Database.Database, "AltRecords")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_SCHEMA", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing DB_PASSWORD and DB_SCHEMA")
	}
	for _, name := range []string{"DB_PASSWORD", "DB_SCHEMA"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_CONNECT_TIMEOUT", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DB_CONNECT_TIMEOUT") {
		t.Fatalf("Load() error = %v, want DB_CONNECT_TIMEOUT error", err)
	}
}

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLServer, Server: "db", Port: 1433, Database: "d", User: "u", Password: "p",
			Schema: "dbo", Encrypt: "false", ConnectTimeout: time.Second,
		},
		CSV:     CSVConfig{Delimiter: ",", Encoding: "utf-8"},
		Load:    LoadConfig{MatchMode: MatchCaseInsensitive, TimestampFormats: []string{"2006-01-02"}, Timezone: "UTC"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "DB_DRIVER"},
		{"bad port", func(c *Config) { c.Database.Port = 99999 }, "DB_PORT"},
		{"sqlite ignores port", func(c *Config) { c.Database.Driver = DriverSQLite; c.Database.Port = 0 }, ""},
		{"multi char delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "CSV_DELIMITER"},
		{"quote delimiter", func(c *Config) { c.CSV.Delimiter = `"` }, "CSV_DELIMITER"},
		{"tab delimiter", func(c *Config) { c.CSV.Delimiter = "tab" }, ""},
		{"unknown encoding", func(c *Config) { c.CSV.Encoding = "klingon" }, "CSV_ENCODING"},
		{"match mode", func(c *Config) { c.Load.MatchMode = "fuzzy" }, "LOAD_MATCH_MODE"},
		{"no formats", func(c *Config) { c.Load.TimestampFormats = nil }, "LOAD_TIMESTAMP_FORMATS"},
		{"bad timezone", func(c *Config) { c.Load.Timezone = "Mars/Olympus" }, "LOAD_TIMEZONE"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"encrypt", func(c *Config) { c.Database.Encrypt = "maybe" }, "DB_ENCRYPT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigString_MasksPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "hunter2"
	str := cfg.String()
	if strings.Contains(str, "hunter2") {
		t.Error("String() should mask the database password")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

func TestJobApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	body := `
file: data/records.csv
table: recordDump
schema: staging
csv:
  delimiter: ";"
match_mode: exact
timestamp_suffix: ""
null_tokens: []
derive_timestamps: false
timestamp_by_type: false
aliases:
  Customer Name: CustomerName
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := ReadJob(path)
	if err != nil {
		t.Fatalf("ReadJob() error = %v", err)
	}
	if job.File != "data/records.csv" || job.Table != "recordDump" {
		t.Errorf("job file/table = %q/%q", job.File, job.Table)
	}

	cfg := validConfig()
	cfg.Load.TimestampSuffix = "_Parsed"
	cfg.Load.NullTokens = []string{"NULL"}
	cfg.Load.DeriveTimestamps = true
	cfg.Load.TimestampByType = true
	if err := job.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if cfg.Database.Schema != "staging" {
		t.Errorf("Schema = %q, want staging", cfg.Database.Schema)
	}
	if cfg.CSV.DelimiterRune() != ';' {
		t.Errorf("DelimiterRune() = %q, want ';'", cfg.CSV.DelimiterRune())
	}
	if cfg.Load.MatchMode != MatchExact {
		t.Errorf("MatchMode = %q, want exact", cfg.Load.MatchMode)
	}
	if cfg.Load.TimestampSuffix != "" {
		t.Errorf("TimestampSuffix = %q, want empty (explicitly disabled)", cfg.Load.TimestampSuffix)
	}
	if len(cfg.Load.NullTokens) != 0 {
		t.Errorf("NullTokens = %v, want empty", cfg.Load.NullTokens)
	}
	if cfg.Load.DeriveTimestamps {
		t.Error("DeriveTimestamps = true, want false")
	}
	if cfg.Load.TimestampByType {
		t.Error("TimestampByType = true, want false")
	}
	if cfg.Load.Aliases["Customer Name"] != "CustomerName" {
		t.Errorf("Aliases = %v", cfg.Load.Aliases)
	}
}

func TestReadJob_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte("tabel: typo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJob(path); err == nil {
		t.Fatal("ReadJob() expected error for unknown field")
	}
}
