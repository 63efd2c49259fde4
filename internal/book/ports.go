package book

import (
	"context"

	"bookreview/internal/review"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	List(ctx context.Context, q Query) ([]BookView, int, error)
	GetView(ctx context.Context, id int64) (BookView, error)
	Genres(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
}

// ReviewLister supplies the reviews shown on a book's detail view.
type ReviewLister interface {
	ListByBook(ctx context.Context, bookID int64) ([]review.Review, error)
}
