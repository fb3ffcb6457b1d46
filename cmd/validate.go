package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/validate"
)

var (
	validateQuery  string
	validateLimit  int
	validateDryRun bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate attribution claims on a batch of assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if validateDryRun {
			cfg.Batch.DryRun = true
		}

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		query := validateQuery
		if query == "" {
			query = cfg.Batch.Query
		}
		limit := validateLimit
		if limit <= 0 {
			limit = cfg.Batch.Limit
		}

		assets, err := env.Catalog.Search(ctx, query, cfg.Catalog.PageSize, limit)
		if err != nil {
			return eris.Wrap(err, "search assets")
		}

		sink := validate.NewSink()
		validate.RunBatch(ctx, assets, env.Validator.Validate, cfg.Batch.Concurrency, sink)

		printSummary(cmd, sink)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateQuery, "query", "", "catalog search query (default from config)")
	validateCmd.Flags().IntVar(&validateLimit, "limit", 0, "max number of assets to validate (default from config)")
	validateCmd.Flags().BoolVar(&validateDryRun, "dry-run", false, "evaluate without writing to the catalog")
	rootCmd.AddCommand(validateCmd)
}

func printSummary(cmd *cobra.Command, sink *validate.Sink) {
	sum := sink.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d pass, %d fail, %d no_data, %d errors\n",
		sum.RunID, sum.Pass, sum.Fail, sum.NoData, sum.Failures)

	for _, o := range sink.Outcomes() {
		// Failed workers are printed from the failures list below.
		if o.Verdict == model.OutcomePass || o.Verdict == model.OutcomeValidationError {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s (%s) %s\n",
			o.Verdict, o.AssetID, o.Actor, truncateLine(o.Reason, 80))
	}
	for _, f := range sink.Failures() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s %s\n", "error", f.AssetID, truncateLine(f.Err, 80))
	}
}

func truncateLine(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
