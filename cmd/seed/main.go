package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/config"
	"bookreview/internal/logger"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/postgres"
)

var (
	genres  = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	authors = []string{"Ursula K. Le Guin", "Frank Herbert", "Mary Beard", "Carl Sagan", "Donald Knuth", "Jane Austen", "Agatha Christie", "Walter Isaacson", "Iris Murdoch", "John Berger"}
	words   = []string{"Journey", "Discovery", "Adventure", "Mystery", "Legacy", "Horizon", "Echo", "Shadow", "Light", "Dream"}
	blurbs  = []string{
		"Slow to start but worth every page.",
		"A solid read with a memorable ending.",
		"Not for me, the pacing dragged throughout.",
		"Beautifully written and carefully argued.",
		"I keep recommending this one to friends.",
	}
)

type options struct {
	books   int
	readers int
	perUser int
	seed    uint64
}

func main() {
	var opts options
	flag.IntVar(&opts.books, "books", 1000, "Number of system books to insert")
	flag.IntVar(&opts.readers, "readers", 0, "Number of sample reviewers to create (0 skips reviews)")
	flag.IntVar(&opts.perUser, "reviews-per-reader", 20, "Reviews written by each sample reviewer")
	flag.Uint64Var(&opts.seed, "seed", 1, "Random seed")
	flag.Parse()

	config.LoadEnvFiles()
	if err := logger.Initialize("info"); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = config.DefaultDatabaseDSN
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, dsn)
	if err != nil {
		logger.Log.Fatalw("connect", "error", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool, opts); err != nil {
		logger.Log.Fatalw("seed failed", "error", err)
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, opts options) error {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed))

	n, err := pool.CopyFrom(ctx, pgx.Identifier{"books"},
		[]string{"title", "author", "genre"}, pgx.CopyFromRows(bookRows(opts.books, rng)))
	if err != nil {
		return fmt.Errorf("copy books: %w", err)
	}
	logger.Log.Infow("inserted books", "count", n)

	if opts.readers <= 0 {
		return nil
	}

	hash, err := crypto.HashPassword("password123")
	if err != nil {
		return err
	}
	usernames := readerNames(opts.readers, opts.seed)
	userRows := make([][]any, len(usernames))
	for i, name := range usernames {
		userRows[i] = []any{name, name + "@example.com", hash}
	}
	if _, err := pool.CopyFrom(ctx, pgx.Identifier{"users"},
		[]string{"username", "email", "password_hash"}, pgx.CopyFromRows(userRows)); err != nil {
		return fmt.Errorf("copy users: %w", err)
	}

	readers, err := loadReaders(ctx, pool, usernames)
	if err != nil {
		return err
	}
	rows, err := pool.Query(ctx, `SELECT id FROM books WHERE user_id IS NULL ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load book ids: %w", err)
	}
	bookIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return fmt.Errorf("load book ids: %w", err)
	}

	n, err = pool.CopyFrom(ctx, pgx.Identifier{"reviews"},
		[]string{"book_id", "user_id", "reviewer", "review_text", "rating"},
		pgx.CopyFromRows(reviewRows(bookIDs, readers, opts.perUser, rng)))
	if err != nil {
		return fmt.Errorf("copy reviews: %w", err)
	}
	logger.Log.Infow("inserted reviews", "count", n, "readers", len(readers))
	return nil
}

type reader struct {
	ID       int64
	Username string
}

func loadReaders(ctx context.Context, pool *pgxpool.Pool, usernames []string) ([]reader, error) {
	rows, err := pool.Query(ctx, `SELECT id, username FROM users WHERE username = ANY($1) ORDER BY id`, usernames)
	if err != nil {
		return nil, fmt.Errorf("load readers: %w", err)
	}
	readers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[reader])
	if err != nil {
		return nil, fmt.Errorf("load readers: %w", err)
	}
	return readers, nil
}

// readerNames are unique per seed so repeated runs don't collide on
// users_username_key.
func readerNames(n int, seed uint64) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("reader_%d_%d", seed, i+1)
	}
	return names
}

func bookRows(n int, rng *rand.Rand) [][]any {
	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("Book Title %d - %s", i+1, words[rng.IntN(len(words))])
		rows = append(rows, []any{title, authors[rng.IntN(len(authors))], genres[rng.IntN(len(genres))]})
	}
	return rows
}

// reviewRows gives each reader up to perUser reviews on distinct books.
func reviewRows(bookIDs []int64, readers []reader, perUser int, rng *rand.Rand) [][]any {
	if perUser > len(bookIDs) {
		perUser = len(bookIDs)
	}
	rows := make([][]any, 0, len(readers)*perUser)
	for _, rd := range readers {
		for _, idx := range rng.Perm(len(bookIDs))[:perUser] {
			rows = append(rows, []any{
				bookIDs[idx],
				rd.ID,
				rd.Username,
				blurbs[rng.IntN(len(blurbs))],
				int16(1 + rng.IntN(5)),
			})
		}
	}
	return rows
}
