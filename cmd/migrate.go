package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/database"
	"github.com/worknest/worknest-engine/pkg/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		connStr := cfg.Database.ConnectionString()
		logger.Info("Running migrations",
			zap.String("url", logging.SanitizeConnectionString(connStr)),
			zap.String("path", cfg.Database.MigrationsPath))

		return database.MigrateURL(connStr, cfg.Database.MigrationsPath, logger)
	},
}
