package db

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// gooseDialect translates our driver names to the names goose expects.
func gooseDialect(driver string) string {
	switch driver {
	case "sqlite":
		return "sqlite3"
	case "pgx":
		return "postgres"
	}
	return driver
}

func prepareGoose(driver string) error {
	err := goose.SetDialect(gooseDialect(driver))
	if err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	goose.SetBaseFS(dir)

	return nil
}

// RunMigrations applies all pending embedded migrations at startup.
func RunMigrations(database *sql.DB, driver string) error {
	err := prepareGoose(driver)
	if err != nil {
		return err
	}

	err = goose.Up(database, ".")
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	slog.Info("migrations up to date")
	return nil
}

// MigrateDown rolls back the most recent migration. Meant for development
// recovery, nothing calls it on the serving path.
func MigrateDown(database *sql.DB, driver string) error {
	err := prepareGoose(driver)
	if err != nil {
		return err
	}

	err = goose.Down(database, ".")
	if err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}
