package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/platform/postgres"
)

const (
	uniqueBookUser = "reviews_book_user_key"
	fkBook         = "reviews_book_id_fkey"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, in NewReview) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(timeoutCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Review{}, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback(timeoutCtx) }()

	// The share lock keeps the book in place until commit.
	var bookID int64
	err = tx.QueryRow(timeoutCtx, `SELECT id FROM books WHERE id = $1 FOR SHARE`, in.BookID).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrBookNotFound
		}
		return Review{}, fmt.Errorf("lock book: %w", err)
	}

	var exists bool
	err = tx.QueryRow(timeoutCtx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE book_id = $1 AND user_id = $2)`,
		in.BookID, in.UserID,
	).Scan(&exists)
	if err != nil {
		return Review{}, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return Review{}, ErrDuplicateReview
	}

	const insert = `
	INSERT INTO reviews (review_text, rating, book_id, user_id, reviewer)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`
	out := Review{
		BookID:   in.BookID,
		UserID:   in.UserID,
		Reviewer: in.Reviewer,
		Text:     in.Text,
		Rating:   in.Rating,
	}
	err = tx.QueryRow(timeoutCtx, insert, in.Text, in.Rating, in.BookID, in.UserID, in.Reviewer).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return Review{}, classify(err)
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Review{}, classify(err)
	}
	return out, nil
}

// classify maps constraint violations raised by a concurrent writer.
func classify(err error) error {
	switch {
	case postgres.IsUniqueViolation(err, uniqueBookUser):
		return ErrDuplicateReview
	case postgres.IsForeignKeyViolation(err, fkBook):
		return ErrBookNotFound
	case postgres.IsCheckViolation(err):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("insert review: %w", err)
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID int64) ([]Review, error) {
	const query = `
	SELECT id, book_id, user_id, reviewer, review_text, rating, created_at
	FROM reviews
	WHERE book_id = $1
	ORDER BY created_at DESC, id DESC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var rv Review
		var stars int16
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Reviewer, &rv.Text, &stars, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		rv.Rating = int(stars)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
