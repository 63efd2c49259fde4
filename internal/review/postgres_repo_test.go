package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/testutil"
)

func TestPostgresRepo(t *testing.T) {
	pool := testutil.NewPostgres(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	t.Run("create and list newest first", func(t *testing.T) {
		testutil.Truncate(t, pool)
		alice := testutil.InsertUser(t, pool, "alice")
		bob := testutil.InsertUser(t, pool, "bob")
		book := testutil.InsertBook(t, pool, "Dune", "Herbert", "Science Fiction", alice)

		first, err := repo.Create(ctx, NewReview{BookID: book, UserID: alice, Reviewer: "alice", Text: "Great worldbuilding", Rating: 5})
		require.NoError(t, err)
		assert.NotZero(t, first.ID)
		assert.False(t, first.CreatedAt.IsZero())

		second, err := repo.Create(ctx, NewReview{BookID: book, UserID: bob, Reviewer: "bob", Text: "Too long for me", Rating: 3})
		require.NoError(t, err)

		list, err := repo.ListByBook(ctx, book)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
		assert.Equal(t, 3, list[0].Rating)
		assert.Equal(t, "bob", list[0].Reviewer)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		testutil.Truncate(t, pool)
		book := testutil.InsertBook(t, pool, "Emma", "Austen", "Classic", 0)

		list, err := repo.ListByBook(ctx, book)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("missing book", func(t *testing.T) {
		testutil.Truncate(t, pool)
		alice := testutil.InsertUser(t, pool, "alice")

		_, err := repo.Create(ctx, NewReview{BookID: 999, UserID: alice, Reviewer: "alice", Text: "Great worldbuilding", Rating: 5})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("second review by the same user", func(t *testing.T) {
		testutil.Truncate(t, pool)
		alice := testutil.InsertUser(t, pool, "alice")
		book := testutil.InsertBook(t, pool, "Dune", "Herbert", "Science Fiction", alice)

		in := NewReview{BookID: book, UserID: alice, Reviewer: "alice", Text: "Great worldbuilding", Rating: 5}
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)

		_, err = repo.Create(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateReview)
	})

	t.Run("check constraint backstops the rating bound", func(t *testing.T) {
		testutil.Truncate(t, pool)
		alice := testutil.InsertUser(t, pool, "alice")
		book := testutil.InsertBook(t, pool, "Dune", "Herbert", "Science Fiction", alice)

		_, err := repo.Create(ctx, NewReview{BookID: book, UserID: alice, Reviewer: "alice", Text: "Great worldbuilding", Rating: 6})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("concurrent submissions keep one review", func(t *testing.T) {
		testutil.Truncate(t, pool)
		alice := testutil.InsertUser(t, pool, "alice")
		book := testutil.InsertBook(t, pool, "Dune", "Herbert", "Science Fiction", alice)
		svc := NewService(repo)

		const n = 10
		var wg sync.WaitGroup
		errs := make([]error, n)
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Add(ctx, NewReview{BookID: book, UserID: alice, Reviewer: "alice", Text: "Great worldbuilding", Rating: 4})
			}(i)
		}
		close(start)
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, ErrDuplicateReview)
		}
		assert.Equal(t, 1, ok)

		var count int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE book_id = $1 AND user_id = $2`, book, alice).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
