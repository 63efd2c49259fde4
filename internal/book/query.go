package book

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByRating SortKey = "rating"
)

// Query defines filters, ordering and pagination for listing books.
// Genre and Author are case-insensitive substring filters.
type Query struct {
	Genre     string
	Author    string
	SortBy    SortKey
	Ascending bool
	Page      int
	Limit     int
}

// ParseSort maps the sortBy parameter; anything but "rating" sorts by date.
func ParseSort(s string) SortKey {
	if strings.EqualFold(strings.TrimSpace(s), string(SortByRating)) {
		return SortByRating
	}
	return SortByDate
}

// ParseAscending maps the order parameter; only "asc" is ascending.
func ParseAscending(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "asc")
}

// Normalize clamps pagination into range: page below 1 becomes 1, a limit
// below 1 becomes DefaultLimit and one above MaxLimit becomes MaxLimit.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.SortBy != SortByRating {
		q.SortBy = SortByDate
	}
	q.Genre = strings.TrimSpace(q.Genre)
	q.Author = strings.TrimSpace(q.Author)
	return q
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

func TotalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
