package cmd

import (
	"fmt"

	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/logging"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(config.Get("LOG_LEVEL", "info"))

			dsn := config.Get("DATABASE_URL", "")
			if dsn == "" {
				return fmt.Errorf("missing required environment variables: DATABASE_URL")
			}

			db, err := database.Connect(dsn, logging.GormLevel(config.Get("DB_LOG_LEVEL", "warn")))
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			log.Info("Database migrated")
			return nil
		},
	}
}
