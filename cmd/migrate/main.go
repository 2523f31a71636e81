package main

import (
	"os" // Exit codes

	"poker_ledger/internal/config" // Custom import path (Config)
	"poker_ledger/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
	"github.com/spf13/cobra"     // Command line flags
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the poker ledger schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return db.Migrate(cfg.DBDriver, cfg.DatabaseURL)
		},
	}
	// Flags override DB_DRIVER and DATABASE_URL
	cmd.Flags().StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver: postgres, mysql or sqlite")
	cmd.Flags().StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "database connection string")

	if err := cmd.Execute(); err != nil {
		logrus.Errorf("migration failed: %v", err)
		os.Exit(1)
	}
}
