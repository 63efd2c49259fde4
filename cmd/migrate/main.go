package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bookreview/internal/config"
	"bookreview/internal/logger"
	"bookreview/internal/platform/postgres"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	if err := logger.Initialize(envOr("LOG_LEVEL", "info")); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), *command, *name); err != nil {
		logger.Log.Fatalw("migrate failed", "command", *command, "error", err)
	}
}

func run(ctx context.Context, command, name string) error {
	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		goose.SetSequential(true)
		return goose.Create(nil, migrationsDir(), name, "sql")
	}

	dsn := databaseDSN()
	pool, err := postgres.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	fsys, err := migrationsFS()
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, res := range results {
			logger.Log.Infow("applied", "migration", res.Source.Path, "duration", res.Duration)
		}
		if err != nil {
			return err
		}
		logger.Log.Infow("migrations applied", "count", len(results))
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			return err
		}
		logger.Log.Infow("rolled back", "migration", res.Source.Path)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			fmt.Printf("%-40s %-10s %s\n", st.Source.Path, st.State, formatApplied(st))
		}
	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	default:
		return fmt.Errorf("unknown command %q: use up, down, status, version, create", command)
	}
	return nil
}

func formatApplied(st *goose.MigrationStatus) string {
	if st.State != goose.StateApplied {
		return "-"
	}
	return st.AppliedAt.Format("2006-01-02 15:04:05")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
