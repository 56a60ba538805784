package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crf-service/internal/adapter/db/mysql"
	"crf-service/internal/config"
	"crf-service/pkg/logger"
)

func newMigrateCmd(app *App) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the core tables",
		Long: "Create or update the user, patients, meta_study_structure and\n" +
			"system_data_dictionary tables. CRF data tables are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if _, err := cfg.DB.DSN(); err != nil {
				return err
			}

			l, err := logger.NewWithConfig(logger.Config{
				Level:       cfg.Logger.Level,
				Format:      "console",
				OutputPath:  "stderr",
				ServiceName: "crfctl",
				Environment: cfg.App.Env,
			})
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			db, err := app.OpenDB(cfg, l)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := mysql.Migrate(db); err != nil {
				l.Error("migration failed", zap.Error(err))
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(app.Out, "core tables are up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", ".", "directory holding an optional app.env")
	return cmd
}
