package book

import (
	"context"

	"bookreview/internal/rating"
	"bookreview/internal/review"
)

// Service provides book-related business logic.
type Service struct {
	repo    Repository
	reviews ReviewLister
}

// NewService creates a new book service.
func NewService(repo Repository, reviews ReviewLister) *Service {
	return &Service{repo: repo, reviews: reviews}
}

func (s *Service) Create(ctx context.Context, in NewBook) (Book, error) {
	in, err := in.normalize()
	if err != nil {
		return Book{}, err
	}
	b := &Book{Title: in.Title, Author: in.Author, Genre: in.Genre}
	if in.CreatorID > 0 {
		creator := in.CreatorID
		b.CreatorID = &creator
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, err
	}
	return *b, nil
}

// List returns one page of books and the number of books matching the
// filters. Pagination is clamped by Query.Normalize.
func (s *Service) List(ctx context.Context, q Query) ([]BookView, int, error) {
	books, total, err := s.repo.List(ctx, q.Normalize())
	if err != nil {
		return nil, 0, err
	}
	if books == nil {
		books = []BookView{}
	}
	return books, total, nil
}

// Get returns the book with its aggregate and reviews, newest first.
func (s *Service) Get(ctx context.Context, id int64) (BookDetail, error) {
	if id <= 0 {
		return BookDetail{}, ErrNotFound
	}
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}
	reviews, err := s.reviews.ListByBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}

	// A review committed between the two reads would make the aggregate
	// disagree with the list; report the list we are returning.
	if int64(len(reviews)) != view.ReviewCount {
		var sum int64
		for _, rv := range reviews {
			sum += int64(rv.Rating)
		}
		view.ReviewCount = int64(len(reviews))
		view.AverageRating = rating.NewAverage(sum, view.ReviewCount)
	}
	if reviews == nil {
		reviews = []review.Review{}
	}

	return BookDetail{BookView: view, Reviews: reviews}, nil
}

func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return nonNil(s.repo.Genres(ctx))
}

func (s *Service) Authors(ctx context.Context) ([]string, error) {
	return nonNil(s.repo.Authors(ctx))
}

func nonNil(values []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	if values == nil {
		return []string{}, nil
	}
	return values, nil
}
