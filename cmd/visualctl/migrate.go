package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/database"
)

func newMigrateCmd() *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(migrationsPath, database.RunMigrations, "Migrations applied successfully")
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(migrationsPath, database.RollbackMigration, "Migration rolled back successfully")
		},
	}

	cmd.AddCommand(up)
	cmd.AddCommand(down)
	cmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "", "migrations directory path (defaults to paths.migrations_path)")
	return cmd
}

func runMigration(migrationsPath string, fn func(*sql.DB, string) error, successMsg string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "mysql" {
		return fmt.Errorf("SQL migrations require the mysql driver, got %q (sqlite uses automatic schema migration)", cfg.Database.Driver)
	}
	if migrationsPath == "" {
		migrationsPath = cfg.Paths.MigrationsPath
	}

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database connection: %v", err)
	}
	if err := fn(sqlDB, migrationsPath); err != nil {
		return err
	}
	printMessage(successMsg)
	return nil
}
