package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Migrate applies all pending SQL migrations from the given directory.
func Migrate(ctx context.Context, dbConn Connection, migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set the migrations dialect: %w", err)
	}
	if err := goose.UpContext(ctx, dbConn.DB(), migrationsDir); err != nil {
		return fmt.Errorf("could not apply the migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current migration version of the database.
func MigrationVersion(ctx context.Context, dbConn Connection) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, dbConn.DB())
	if err != nil {
		return 0, fmt.Errorf("could not get the migration version: %w", err)
	}
	return version, nil
}
