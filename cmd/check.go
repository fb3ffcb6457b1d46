package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check <asset-id>",
	Short: "Validate attribution claims on a single asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if checkDryRun {
			cfg.Batch.DryRun = true
		}

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		asset, err := env.Catalog.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "get asset")
		}

		outcome, err := env.Validator.Validate(ctx, *asset)
		if err != nil {
			return eris.Wrap(err, "validate asset")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "evaluate without writing to the catalog")
	rootCmd.AddCommand(checkCmd)
}
