package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Job is an optional YAML file describing one load. Every field is optional;
// set fields override the environment.
//
//	file: exports/master_record.csv
//	table: recordDump
//	schema: tcn
//	csv:
//	  delimiter: ";"
//	  encoding: windows-1252
//	match_mode: exact
//	timestamp_columns: [ShippedAt]
//	null_tokens: ["NULL", "NaN", "-"]
//	aliases:
//	  Customer Name: CustomerName
type Job struct {
	File   string `yaml:"file"`
	Table  string `yaml:"table"`
	Schema string `yaml:"schema"`

	CSV struct {
		Delimiter string `yaml:"delimiter"`
		Encoding  string `yaml:"encoding"`
	} `yaml:"csv"`

	MatchMode        string            `yaml:"match_mode"`
	TimestampSuffix  *string           `yaml:"timestamp_suffix"`
	TimestampColumns []string          `yaml:"timestamp_columns"`
	TimestampFormats []string          `yaml:"timestamp_formats"`
	Timezone         string            `yaml:"timezone"`
	NullTokens       []string          `yaml:"null_tokens"`
	TimestampByType  *bool             `yaml:"timestamp_by_type"`
	DeriveTimestamps *bool             `yaml:"derive_timestamps"`
	CleanNumeric     *bool             `yaml:"clean_numeric"`
	Aliases          map[string]string `yaml:"aliases"`
}

// ReadJob parses a job file. Unknown keys are rejected so typos surface
// as configuration errors instead of silently falling back to defaults.
func ReadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job Job
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	return &job, nil
}

// Apply overlays the job's set fields onto cfg and revalidates it.
func (j *Job) Apply(cfg *Config) error {
	if j.Schema != "" {
		cfg.Database.Schema = j.Schema
	}
	if j.CSV.Delimiter != "" {
		cfg.CSV.Delimiter = j.CSV.Delimiter
	}
	if j.CSV.Encoding != "" {
		cfg.CSV.Encoding = j.CSV.Encoding
	}
	if j.MatchMode != "" {
		cfg.Load.MatchMode = j.MatchMode
	}
	if j.TimestampSuffix != nil {
		cfg.Load.TimestampSuffix = *j.TimestampSuffix
	}
	if len(j.TimestampColumns) > 0 {
		cfg.Load.TimestampColumns = j.TimestampColumns
	}
	if len(j.TimestampFormats) > 0 {
		cfg.Load.TimestampFormats = j.TimestampFormats
	}
	if j.Timezone != "" {
		cfg.Load.Timezone = j.Timezone
	}
	if j.NullTokens != nil {
		cfg.Load.NullTokens = j.NullTokens
	}
	if j.TimestampByType != nil {
		cfg.Load.TimestampByType = *j.TimestampByType
	}
	if j.DeriveTimestamps != nil {
		cfg.Load.DeriveTimestamps = *j.DeriveTimestamps
	}
	if j.CleanNumeric != nil {
		cfg.Load.CleanNumeric = *j.CleanNumeric
	}
	if len(j.Aliases) > 0 {
		cfg.Load.Aliases = j.Aliases
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("job file validation: %w", err)
	}
	return nil
}
