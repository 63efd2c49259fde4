package review

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=review

type Repository interface {
	// Create checks the book, checks for an existing review by the same user
	// and inserts, all in one transaction.
	Create(ctx context.Context, in NewReview) (Review, error)
	ListByBook(ctx context.Context, bookID int64) ([]Review, error)
}
