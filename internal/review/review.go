package review

import (
	"errors"
	"time"
)

var (
	ErrValidation      = errors.New("invalid review")
	ErrBookNotFound    = errors.New("book not found")
	ErrDuplicateReview = errors.New("user has already reviewed this book")
)

// Review is immutable once written. Reviewer is the author's username as it
// was when the review was posted.
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserID    int64     `json:"user_id"`
	Reviewer  string    `json:"reviewer"`
	Text      string    `json:"review_text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type NewReview struct {
	BookID   int64
	UserID   int64
	Reviewer string
	Text     string
	Rating   int
}
