package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
// All missing required variables are reported together.
func loadStruct(v reflect.Value) error {
	t := v.Type()
	var missing []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				missing = append(missing, envName)
				continue
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(value)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// splitList splits comma-separated values and trims whitespace.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	switch c.Database.Driver {
	case DriverSQLServer, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be one of: sqlserver, postgres, sqlite3", c.Database.Driver))
	}
	for _, req := range []struct{ name, value string }{
		{"DB_SERVER", c.Database.Server},
		{"DB_DATABASE", c.Database.Database},
		{"DB_USER", c.Database.User},
		{"DB_PASSWORD", c.Database.Password},
		{"DB_SCHEMA", c.Database.Schema},
	} {
		if strings.TrimSpace(req.value) == "" {
			errs = append(errs, req.name+" is required")
		}
	}
	if c.Database.Driver != DriverSQLite && (c.Database.Port <= 0 || c.Database.Port > 65535) {
		errs = append(errs, fmt.Sprintf("DB_PORT (%d) must be 1-65535", c.Database.Port))
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.Database.Encrypt) {
	case "disable", "false", "true":
	default:
		errs = append(errs, fmt.Sprintf("DB_ENCRYPT (%q) must be one of: disable, false, true", c.Database.Encrypt))
	}

	// CSV validation
	if d := c.CSV.Delimiter; d != `\t` && d != "tab" && utf8.RuneCountInString(d) != 1 {
		errs = append(errs, fmt.Sprintf("CSV_DELIMITER (%q) must be a single character", d))
	} else if r := c.CSV.DelimiterRune(); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("CSV_DELIMITER (%q) is not a valid separator", d))
	}
	if _, err := htmlindex.Get(c.CSV.Encoding); err != nil {
		errs = append(errs, fmt.Sprintf("CSV_ENCODING (%q) is not a known encoding", c.CSV.Encoding))
	}

	// Load validation
	switch c.Load.MatchMode {
	case MatchExact, MatchCaseInsensitive:
	default:
		errs = append(errs, fmt.Sprintf("LOAD_MATCH_MODE (%q) must be one of: exact, case-insensitive", c.Load.MatchMode))
	}
	if len(c.Load.TimestampFormats) == 0 {
		errs = append(errs, "LOAD_TIMESTAMP_FORMATS must list at least one layout")
	}
	if _, err := c.Load.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("LOAD_TIMEZONE (%q) is not a known location", c.Load.Timezone))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		errs = append(errs, "LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS and LOG_MAX_AGE_DAYS must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
