package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"bookreview/db"
)

// NewPostgres starts a throwaway Postgres, applies the schema and returns a
// pool on it. The test is skipped when no container runtime is available.
func NewPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "bookreviews",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(90 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%d/bookreviews?sslmode=disable", host, port.Int())

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if err := db.Up(ctx, sqlDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return pool
}

// Truncate empties every table and resets the id sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE reviews, books, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// InsertUser adds a user row directly and returns its id.
func InsertUser(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, 'x') RETURNING id`,
		username, username+"@example.com",
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertBook adds a book row directly and returns its id. A zero creator
// stores NULL.
func InsertBook(t *testing.T, pool *pgxpool.Pool, title, author, genre string, creator int64) int64 {
	t.Helper()
	var creatorArg any
	if creator != 0 {
		creatorArg = creator
	}
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO books (title, author, genre, user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		title, author, genre, creatorArg,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	return id
}

// InsertReview adds a review row directly.
func InsertReview(t *testing.T, pool *pgxpool.Pool, bookID, userID int64, rating int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO reviews (review_text, rating, book_id, user_id, reviewer) VALUES ($1, $2, $3, $4, $5)`,
		"a review long enough", rating, bookID, userID, fmt.Sprintf("user-%d", userID),
	)
	if err != nil {
		t.Fatalf("insert review: %v", err)
	}
}
