package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvload/internal/config"
	"github.com/JonMunkholm/csvload/internal/core"
	"github.com/JonMunkholm/csvload/internal/logging"
)

// execute runs the command and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(stderr, core.FormatUserError(err))
	}
	return core.ExitCode(err)
}

type options struct {
	envFile  string
	jobFile  string
	schema   string
	match    string
	logFile  string
	logLevel string
	dryRun   bool
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "csvload [flags] <file.csv> <table>",
		Short: "Append the rows of a CSV file to an existing database table",
		Long: `csvload reads a CSV file, keeps the columns that exist in the destination
table, normalizes empty values and timestamps, and inserts every row in a
single transaction. If any row fails nothing is written.

The file and table may also be given in a job file (--job).`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load; existing environment variables win")
	f.StringVar(&opts.jobFile, "job", "", "YAML job file with load settings")
	f.StringVar(&opts.schema, "schema", "", "destination schema (overrides DB_SCHEMA)")
	f.StringVar(&opts.match, "match", "", "header matching: exact or case-insensitive (overrides LOAD_MATCH_MODE)")
	f.StringVar(&opts.logFile, "log-file", "", "log file path (overrides LOG_FILE)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "insert every row, then roll back")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options, stderr io.Writer) error {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.NewError(core.KindConfiguration, "load env file", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return core.NewError(core.KindConfiguration, "load config", err)
	}

	var file, table string
	if opts.jobFile != "" {
		job, err := config.ReadJob(opts.jobFile)
		if err != nil {
			return core.NewError(core.KindConfiguration, "load job", err)
		}
		if err := job.Apply(cfg); err != nil {
			return core.NewError(core.KindConfiguration, "load job", err)
		}
		file, table = job.File, job.Table
	}

	if len(args) > 0 {
		file = args[0]
	}
	if len(args) > 1 {
		table = args[1]
	}
	if file == "" || table == "" {
		return core.NewError(core.KindConfiguration, "parse arguments",
			fmt.Errorf("a CSV file and a destination table are required\n\n%s", cmd.UsageString()))
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Database.Schema = opts.schema
	}
	if flags.Changed("match") {
		cfg.Load.MatchMode = opts.match
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return core.NewError(core.KindConfiguration, "validate flags", err)
	}

	logger, closer := logging.New(cfg.Logging, stderr)
	defer closer.Close()
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := core.NewLoader(cfg, logger)
	loader.DryRun = opts.dryRun

	result, err := loader.Run(ctx, file, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows read, %d written, %d warnings (%s)\n",
		result.Table, result.RowsRead, result.Committed, len(result.Warnings)+len(result.Unmatched), result.Duration.Round(time.Millisecond))
	return nil
}
