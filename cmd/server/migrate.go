package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var migrationsDir = "migrations"

var migrateDownCmd = &cobra.Command{
	Use:   "migrate-down",
	Short: "Drop the catalog tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		pool, err := connectPostgres(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		return migrateDown(cmd.Context(), pool, migrationsDir, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", migrationsDir, "directory holding the SQL migrations")
	rootCmd.AddCommand(migrateDownCmd)
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool, dir string, logger zerolog.Logger) error {
	if err := execFile(ctx, pool, filepath.Join(dir, "create_tables.down.sql")); err != nil {
		return err
	}
	logger.Info().Msg("migrations dropped successfully")
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, dir string, logger zerolog.Logger) error {
	if err := execFile(ctx, pool, filepath.Join(dir, "create_tables.up.sql")); err != nil {
		return err
	}
	logger.Info().Msg("migrations applied successfully")
	return nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", filepath.Base(path), err)
	}
	return nil
}
