package book

import (
	"errors"
	"strings"
	"time"

	"bookreview/internal/rating"
	"bookreview/internal/review"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound   = errors.New("book not found")
	ErrValidation = errors.New("title, author and genre are required")
)

// Book is a catalog entry. CreatorID is nil for system-seeded books.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	CreatorID *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BookView is a book with its review aggregate, computed on every read.
type BookView struct {
	Book
	AverageRating rating.Average `json:"average_rating"`
	ReviewCount   int64          `json:"review_count"`
}

// BookDetail is the single-book read model.
type BookDetail struct {
	BookView
	Reviews []review.Review `json:"reviews"`
}

type NewBook struct {
	Title     string
	Author    string
	Genre     string
	CreatorID int64
}

func (n NewBook) normalize() (NewBook, error) {
	n.Title = strings.TrimSpace(n.Title)
	n.Author = strings.TrimSpace(n.Author)
	n.Genre = strings.TrimSpace(n.Genre)
	if n.Title == "" || n.Author == "" || n.Genre == "" {
		return NewBook{}, ErrValidation
	}
	return n, nil
}
