package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"novel-backend/internal/shared/config"
	"novel-backend/internal/shared/storage/db"
	"novel-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply embedded database migrations",
		SilenceUsage: true,
		// Bare "migrate" keeps applying pending migrations.
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), db.RunMigrations)
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), db.RunMigrations)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), db.RollbackMigration)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), db.MigrationStatus)
			},
		},
	)
	return root
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.database_url_missing", nil)
		return errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		return err
	}
	defer sqlDB.Close()

	if err := fn(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		return err
	}
	telemetry.Info("migrate.done", nil)
	return nil
}
