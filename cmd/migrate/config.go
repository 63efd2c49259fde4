package main

import (
	"io/fs"
	"os"

	"bookreview/db"
	"bookreview/internal/config"
)

// migrationsDir is where `create` writes new files.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

// migrationsFS returns MIGRATIONS_DIR when set, else the migrations
// embedded in the binary.
func migrationsFS() (fs.FS, error) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return os.DirFS(v), nil
	}
	return fs.Sub(db.Migrations, db.MigrationsDir)
}

func databaseDSN() string {
	if v := os.Getenv("DB_DSN"); v != "" {
		return v
	}
	return config.DefaultDatabaseDSN
}
