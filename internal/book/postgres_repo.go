package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/platform/postgres"
	"bookreview/internal/rating"
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

// viewSelect joins each book to the SUM/COUNT of its reviews. The average is
// computed from the integer sums in Go so its rounding is exact.
const viewSelect = `
	SELECT b.id, b.title, b.author, b.genre, b.user_id, b.created_at,
	       COALESCE(s.rating_sum, 0), COALESCE(s.review_count, 0)
	FROM books b
	LEFT JOIN (
		SELECT book_id, SUM(rating)::bigint AS rating_sum, COUNT(*) AS review_count, AVG(rating) AS rating_avg
		FROM reviews
		GROUP BY book_id
	) s ON s.book_id = b.id
`

func scanView(row pgx.Row) (BookView, error) {
	var v BookView
	var sum int64
	if err := row.Scan(&v.ID, &v.Title, &v.Author, &v.Genre, &v.CreatorID, &v.CreatedAt, &sum, &v.ReviewCount); err != nil {
		return BookView{}, err
	}
	v.AverageRating = rating.NewAverage(sum, v.ReviewCount)
	return v, nil
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (title, author, genre, user_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, b.Title, b.Author, b.Genre, b.CreatorID).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return ErrValidation
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// List reads the page and the matching total in one read-only snapshot so
// the two agree.
func (r *PostgresRepo) List(ctx context.Context, q Query) ([]BookView, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf(`b.genre ILIKE $%d ESCAPE '\'`, argn))
		args = append(args, "%"+escapeLike(q.Genre)+"%")
		argn++
	}

	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf(`b.author ILIKE $%d ESCAPE '\'`, argn))
		args = append(args, "%"+escapeLike(q.Author)+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	sortCol := "b.created_at"
	if q.SortBy == SortByRating {
		sortCol = "COALESCE(s.rating_avg, 0)"
	}
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}

	countSQL := "SELECT COUNT(*) FROM books b " + where
	dataSQL := fmt.Sprintf(`%s
		%s
		ORDER BY %s %s, b.id %s
		LIMIT $%d OFFSET $%d`,
		viewSelect, where, sortCol, order, order, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset())

	var (
		total int
		out   = []BookView{}
	)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := pgx.BeginTxFunc(timeoutCtx, r.db, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
			return fmt.Errorf("count books: %w", err)
		}

		rows, err := tx.Query(timeoutCtx, dataSQL, argsWithPage...)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scanView(rows)
			if err != nil {
				return fmt.Errorf("scan book: %w", err)
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) GetView(ctx context.Context, id int64) (BookView, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	v, err := scanView(r.db.QueryRow(timeoutCtx, viewSelect+" WHERE b.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BookView{}, ErrNotFound
		}
		return BookView{}, fmt.Errorf("get book: %w", err)
	}
	return v, nil
}

func (r *PostgresRepo) Genres(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT genre COLLATE "C" AS v FROM books ORDER BY v`)
}

func (r *PostgresRepo) Authors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT author COLLATE "C" AS v FROM books ORDER BY v`)
}

func (r *PostgresRepo) distinct(ctx context.Context, query string) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct values: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("distinct values: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
