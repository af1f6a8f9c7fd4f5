package main

import (
	"errors"
	"fmt"

	"interlinear/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	migrateCommand := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	migrateCommand.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := connectDatabase(cmd.Context(), cfg.DSN(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(db, logger)
		},
	})

	migrateCommand.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := connectDatabase(cmd.Context(), cfg.DSN(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := newMigrator(db)
			if err != nil {
				return err
			}
			if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to roll back migrations: %w", err)
			}

			logger.Info("Migrations rolled back")
			return nil
		},
	})

	return migrateCommand
}
