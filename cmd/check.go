package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/api/schemas"
	"github.com/divij-pawar/relcheck/internal/audit"
	"github.com/divij-pawar/relcheck/internal/config"
	"github.com/divij-pawar/relcheck/internal/observability"
	"github.com/divij-pawar/relcheck/internal/results"
	"github.com/divij-pawar/relcheck/internal/store"
)

func newCheckCmd() *cobra.Command {
	var (
		inputPath   string
		checkMode   string
		outputDir   string
		persistRun  bool
		concurrency int
	)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Audit a relation file for hierarchy cycles and broader-than contradictions",
		Long: `Reads the relation file once, builds the hierarchy and broader-than
graphs, runs the detectors selected by --check, and writes one timestamped
CSV artifact per non-empty result category.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := schemas.ParseCheckMode(checkMode)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			// CLI flags override the config file for this run.
			if outputDir != "" {
				cfg.Output.Directory = outputDir
			}
			if concurrency > 0 {
				cfg.Engine.WorkerConcurrency = concurrency
			}

			var sink audit.Sink
			if persistRun {
				if cfg.Postgres.URL == "" {
					return fmt.Errorf("--store requires postgres.url (hint: set RELCHECK_POSTGRES_URL)")
				}
				pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer pool.Close()

				dbStore, err := store.New(ctx, pool, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize store: %w", err)
				}
				sink = dbStore
			}

			writer := results.NewWriter(cfg.Output.Directory, logger)
			runner := audit.NewRunner(cfg, logger, writer, sink)

			envelope, err := runner.Run(ctx, audit.Options{Input: inputPath, Mode: mode})
			if err != nil {
				logger.Error("Audit run failed", zap.Error(err))
				return err
			}

			logger.Info("Check complete. Reports saved.",
				zap.String("run_id", envelope.RunID),
				zap.String("output_dir", cfg.Output.Directory),
			)
			return nil
		},
	}

	checkCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the relation file (MRREL.RRF) (required)")
	checkCmd.Flags().StringVarP(&checkMode, "check", "t", "", "check to run: parent-child, broader-than or both (required)")
	checkCmd.Flags().StringVarP(&outputDir, "output", "o", "", "report directory (overrides output.directory)")
	checkCmd.Flags().BoolVar(&persistRun, "store", false, "also persist the run to Postgres")
	checkCmd.Flags().IntVar(&concurrency, "concurrency", 0, "detector worker concurrency (overrides engine.worker_concurrency)")
	_ = checkCmd.MarkFlagRequired("input")
	_ = checkCmd.MarkFlagRequired("check")

	return checkCmd
}
