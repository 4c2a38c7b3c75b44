package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"csvclean/adapters/postgres"
	"csvclean/app"
	"csvclean/domain/core"
	"csvclean/internal"
	"csvclean/internal/config"
	"csvclean/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if errors.IsAppError(err) {
			fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// cliFlags holds overrides shared by every subcommand
type cliFlags struct {
	numeric     []string
	report      string
	parallelism int
	runID       string
	logLevel    string
	noDatabase  bool
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:           "csvclean",
		Short:         "Clean tabular CSV and Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSliceVar(&flags.numeric, "numeric", nil, "Numeric columns checked for outliers, in order (overrides CLEANER_NUMERIC_COLUMNS)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newRunCmd(flags),
		newCleanCmd(flags),
		newProfileCmd(flags),
	)
	return rootCmd
}

func newRunCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean every configured job",
		Long: `Clean every job configured through CLEANER_JOBS (or the default dataset list).

Example: csvclean run --parallelism 4 --report out/report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runJobs(cmd.Context(), cmd.OutOrStdout(), cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.report, "report", "", "Write a run report (.md or .html)")
	cmd.Flags().IntVar(&flags.parallelism, "parallelism", 0, "Number of tables cleaned concurrently")
	cmd.Flags().StringVar(&flags.runID, "run-id", "", "Use this UUID as the run identifier")
	cmd.Flags().BoolVar(&flags.noDatabase, "no-database", false, "Do not copy cleaned tables to DATABASE_URL")
	return cmd
}

func newCleanCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [input] [output]",
		Short: "Clean a single file",
		Long: `Clean one CSV or Excel file and write the result.

Example: csvclean clean data/sellers.csv out/sellers.xlsx --numeric totalunitssold,rating`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Jobs = []config.Job{config.NewJob(args[0], args[1])}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runJobs(cmd.Context(), cmd.OutOrStdout(), cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.report, "report", "", "Write a run report (.md or .html)")
	cmd.Flags().BoolVar(&flags.noDatabase, "no-database", false, "Do not copy the cleaned table to DATABASE_URL")
	return cmd
}

func newProfileCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [input]",
		Short: "Show what cleaning would do to a file without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cfg, flags)

			opts := app.OptionsFromConfig(cfg)
			opts.Logger = newLogger(cfg)
			opts.ReportPath = ""
			service, err := app.NewCleaningService(opts)
			if err != nil {
				return err
			}

			result, err := service.Preview(args[0])
			if err != nil {
				return err
			}
			printJob(cmd.OutOrStdout(), *result)
			return nil
		},
	}
}

func applyFlags(cfg *config.Config, flags *cliFlags) {
	if len(flags.numeric) > 0 {
		cfg.Cleaning.NumericColumns = flags.numeric
	}
	if flags.report != "" {
		cfg.Output.ReportPath = flags.report
	}
	if flags.parallelism > 0 {
		cfg.Runtime.Parallelism = flags.parallelism
	}
	if flags.logLevel != "" {
		cfg.Runtime.LogLevel = flags.logLevel
	}
	if flags.noDatabase {
		cfg.Database.URL = ""
	}
}

func newLogger(cfg *config.Config) *internal.Logger {
	return internal.NewLogger(internal.ParseLogLevel(cfg.Runtime.LogLevel))
}

func runJobs(ctx context.Context, out io.Writer, cfg *config.Config, flags *cliFlags) error {
	applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	opts := app.OptionsFromConfig(cfg)
	opts.Logger = logger

	if flags.runID != "" {
		runID, err := core.ParseRunID(flags.runID)
		if err != nil {
			return err
		}
		opts.RunID = runID
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Sink = postgres.NewTableSink(db, cfg.Database.TablePrefix, logger)
	}

	service, err := app.NewCleaningService(opts)
	if err != nil {
		return err
	}

	summary, err := service.Run(ctx, cfg.Jobs)
	if err != nil {
		return err
	}

	for _, job := range summary.Jobs {
		printJob(out, job)
	}
	fmt.Fprintf(out, "Data cleaning complete (run %s)\n", summary.RunID)
	return nil
}

func printJob(out io.Writer, job app.JobResult) {
	fmt.Fprintf(out, "%s: %d -> %d rows, %d -> %d columns\n", job.Job.Name,
		job.RowsIn, job.Cleaning.Table.Len(), job.ColumnsIn, job.Cleaning.Table.Width())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  STAGE\tROWS REMOVED\tDROPPED COLUMNS")
	for _, s := range job.Cleaning.Stages {
		fmt.Fprintf(w, "  %s\t%d\t%v\n", s.Stage, s.RowsRemoved(), s.DroppedColumns)
	}
	for _, b := range job.Cleaning.Bounds {
		if b.Skipped {
			fmt.Fprintf(w, "  outliers[%s]\tskipped\t\n", b.Column)
			continue
		}
		fmt.Fprintf(w, "  outliers[%s]\t%d\t[%g, %g]\n", b.Column, b.Removed, b.Lower, b.Upper)
	}
	w.Flush()

	if job.Written {
		fmt.Fprintf(out, "  written to %s\n", job.Job.Output)
	}
	if job.SinkTable != "" {
		fmt.Fprintf(out, "  stored in table %s\n", job.SinkTable)
	}
}
