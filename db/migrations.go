// Package db holds the SQL schema migrations applied by goose.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is the directory inside Migrations that goose reads from.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS

// NewProvider returns a goose provider over the embedded migrations.
func NewProvider(sqlDB *sql.DB) (*goose.Provider, error) {
	sub, err := fs.Sub(Migrations, MigrationsDir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, sqlDB, sub)
}

// Up applies every pending embedded migration.
func Up(ctx context.Context, sqlDB *sql.DB) error {
	p, err := NewProvider(sqlDB)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
