package main

import (
	"github.com/spf13/cobra"

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/config"
	"github.com/kelsos/blend-actions/internal/logger"
	"github.com/kelsos/blend-actions/internal/utils"
)

func main() {
	envFiles := utils.LoadEnvironment()
	logger.Init()
	for _, file := range envFiles {
		logger.Debug("Loaded environment from %s", file)
	}

	cfg := config.NewConfig()
	if err := cfg.LoadFromEnvironment(); err != nil {
		logger.Fatal("Invalid environment: %v", err)
	}

	var policy string

	rootCmd := &cobra.Command{
		Use:   "blend-actions",
		Short: "Join indexed collateral and borrow records into per-address actions",
		Long: `blend-actions reads the collateral and borrow ledger records of a set of
addresses from the local index and returns them as one list of actions per address.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("overflow") {
				p, err := amount.ParsePolicy(policy)
				if err != nil {
					return err
				}
				cfg.OverflowPolicy = p
			}
			if err := cfg.ResolvePaths(); err != nil {
				return err
			}
			cfg.SetBaseURL()
			return cfg.Validate()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.DBPath, "db", "", cfg.DBPath, "Path to the index database (default: <data-dir>/index.db)")
	rootCmd.PersistentFlags().StringVarP(&cfg.DataDir, "data-dir", "", cfg.DataDir, "Directory holding the index database and import checkpoints")
	rootCmd.PersistentFlags().StringVarP(&policy, "overflow", "", string(cfg.OverflowPolicy), "What to do with amounts outside the int64 range: error, saturate or wrap")
	rootCmd.PersistentFlags().IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Number of addresses looked up in parallel")

	rootCmd.AddCommand(
		newResolveCmd(cfg),
		newServeCmd(cfg),
		newQueryCmd(cfg),
		newImportCmd(cfg),
		newBrowseCmd(cfg),
		newBackupCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
