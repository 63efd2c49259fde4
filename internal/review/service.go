package review

import (
	"context"
	"fmt"
	"strings"

	"bookreview/internal/rating"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add validates in and stores it. Invalid input never reaches the store.
func (s *Service) Add(ctx context.Context, in NewReview) (Review, error) {
	if err := rating.Validate(in.Rating); err != nil {
		return Review{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return Review{}, fmt.Errorf("%w: review text is required", ErrValidation)
	}
	if in.BookID <= 0 {
		return Review{}, ErrBookNotFound
	}
	if in.UserID <= 0 || in.Reviewer == "" {
		return Review{}, fmt.Errorf("%w: reviewer identity is required", ErrValidation)
	}
	return s.repo.Create(ctx, in)
}

// ListByBook returns the book's reviews, newest first.
func (s *Service) ListByBook(ctx context.Context, bookID int64) ([]Review, error) {
	return s.repo.ListByBook(ctx, bookID)
}
