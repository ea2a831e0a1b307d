package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datacheck/adapters/datafile"
	"datacheck/adapters/httpapi"
	"datacheck/adapters/postgres"
	"datacheck/domain/audit"
	"datacheck/domain/tabular"
	"datacheck/internal/config"
	"datacheck/internal/integrity"
	"datacheck/internal/logging"
	"datacheck/internal/testkit"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "datacheck",
		Short: "Statistical integrity audits for era-partitioned datasets",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	dataFile       string
	thresholdsFile string
	parallel       bool
	level          string
	demo           bool
	seed           int64
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [data-file]",
		Short: "Audit a dataset file and print every failed check",
		Long: `Audit a CSV or XLSX dataset against the integrity thresholds.

Each check group prints its section marker; every failed check prints one
indented line with the observed value and the allowed bounds. A dataset with
no output below the section markers is clean.

The data file argument falls back to the DATA_FILE environment variable.

Example: datacheck run tournament_data.csv --thresholds custom.yaml --parallel`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.dataFile = args[0]
			}
			if opts.demo && opts.dataFile != "" {
				return errors.New("pass either --demo or a data file, not both")
			}
			return runAudit(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.thresholdsFile, "thresholds", "", "YAML file overriding default thresholds")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Run check groups concurrently")
	cmd.Flags().StringVar(&opts.level, "level", "INFO", "Log level: CRITICAL, ERROR, WARN, INFO or DEBUG")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Audit a generated synthetic dataset instead of a file")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Random seed for --demo data")

	return cmd
}

func runAudit(ctx context.Context, opts runOptions) error {
	level, err := logging.ParseLevel(opts.level)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(level)

	var table *tabular.Table
	var thresholds integrity.Thresholds

	if opts.demo {
		genConfig := testkit.DefaultGeneratorConfig()
		genConfig.Seed = opts.seed
		table, err = testkit.NewGenerator(genConfig).Table()
		if err != nil {
			return fmt.Errorf("failed to generate demo dataset: %w", err)
		}
		if opts.thresholdsFile != "" {
			thresholds, err = config.LoadThresholds(opts.thresholdsFile)
		} else {
			thresholds = genConfig.Thresholds()
		}
	} else {
		path := opts.dataFile
		if path == "" {
			path = config.Load().Audit.DataFile
		}
		if path == "" {
			return errors.New("a data file argument is required unless --demo is set")
		}
		table, err = datafile.NewLoader(logger).Load(ctx, path)
		if err != nil {
			return err
		}
		thresholds, err = config.LoadThresholds(opts.thresholdsFile)
	}
	if err != nil {
		return err
	}

	fmt.Printf("🔎 Auditing %s (%d rows, %d features)\n\n", table.Name(), table.Rows(), table.FeatureCount())

	checker := integrity.New(thresholds, logging.NewWriterSink(os.Stdout))

	var report *audit.Report
	if opts.parallel {
		report, err = checker.RunConcurrent(ctx, table)
	} else {
		report, err = checker.Run(ctx, table)
	}
	if err != nil {
		return fmt.Errorf("audit aborted: %w", err)
	}

	printSummary(report)
	return nil
}

func printSummary(report *audit.Report) {
	duration := report.Duration().Round(time.Millisecond)
	if report.Clean() {
		fmt.Printf("\n✅ %s is clean (%s)\n", report.Dataset, duration)
		return
	}

	fmt.Printf("\n❌ %s: %d findings (%s)\n", report.Dataset, len(report.Findings), duration)
	counts := report.CountBySection()
	for _, section := range audit.Sections() {
		if counts[section] > 0 {
			fmt.Printf("   %s: %d\n", section, counts[section])
		}
	}
}

func newServeCmd() *cobra.Command {
	var thresholdsFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the audit HTTP API",
		Long: `Start the HTTP API that audits uploaded datasets and stores run history.

Configuration comes from the environment (a .env file is honored):
  DATABASE_URL     postgres connection string (required)
  PORT             listen port (default 8080)
  THRESHOLDS_FILE  YAML thresholds override
  AUDIT_PARALLEL   run check groups concurrently (default false)
  LOG_LEVEL        CRITICAL, ERROR, WARN, INFO or DEBUG

Example: DATABASE_URL=postgres://localhost/datacheck datacheck serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), thresholdsFile)
		},
	}

	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "YAML file overriding default thresholds")

	return cmd
}

func runServe(ctx context.Context, thresholdsFile string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := logging.NewDefaultLogger()
	cfg := config.Load()
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	if thresholdsFile == "" {
		thresholdsFile = cfg.Audit.ThresholdsFile
	}
	thresholds, err := config.LoadThresholds(thresholdsFile)
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	app := httpapi.NewApp(httpapi.Config{
		Port:       cfg.Server.Port,
		Thresholds: thresholds,
		Parallel:   cfg.Audit.Parallel,
	}, datafile.NewLoader(logger), postgres.NewRunRepository(db), logger)

	return app.Start()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the datacheck version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("datacheck %s\n", version)
		},
	}
}
