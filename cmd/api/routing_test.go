package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/rating"
	"bookreview/internal/review"
	"bookreview/internal/testutil"
	"bookreview/internal/user"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testutil.TestSecret,
		TokenTTL:       time.Hour,
		CORSOrigins:    []string{"http://localhost:5173"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	}
}

// fakeStore backs the gomock expectations with in-memory state so the
// scenario reads back what it wrote.
type fakeStore struct {
	mu      sync.Mutex
	users   map[int64]user.User
	books   map[int64]book.Book
	reviews []review.Review
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]user.User{}, books: map[int64]book.Book{}}
}

func (s *fakeStore) expect(users *user.MockRepository, books *book.MockRepository, reviews *review.MockRepository) {
	users.EXPECT().ExistsByUsernameOrEmail(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, username, email string) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, u := range s.users {
				if u.Username == username || u.Email == email {
					return true, nil
				}
			}
			return false, nil
		}).AnyTimes()
	users.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			u.ID = int64(len(s.users) + 1)
			u.CreatedAt = time.Now()
			s.users[u.ID] = *u
			return nil
		}).AnyTimes()
	users.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int64) (user.User, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			u, ok := s.users[id]
			if !ok {
				return user.User{}, user.ErrNotFound
			}
			return u, nil
		}).AnyTimes()

	books.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *book.Book) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			b.ID = int64(len(s.books) + 1)
			b.CreatedAt = time.Now()
			s.books[b.ID] = *b
			return nil
		}).AnyTimes()
	books.EXPECT().GetView(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int64) (book.BookView, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			b, ok := s.books[id]
			if !ok {
				return book.BookView{}, book.ErrNotFound
			}
			var sum, count int64
			for _, rv := range s.reviews {
				if rv.BookID == id {
					sum += int64(rv.Rating)
					count++
				}
			}
			return book.BookView{Book: b, AverageRating: rating.NewAverage(sum, count), ReviewCount: count}, nil
		}).AnyTimes()

	reviews.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in review.NewReview) (review.Review, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.books[in.BookID]; !ok {
				return review.Review{}, review.ErrBookNotFound
			}
			for _, rv := range s.reviews {
				if rv.BookID == in.BookID && rv.UserID == in.UserID {
					return review.Review{}, review.ErrDuplicateReview
				}
			}
			rv := review.Review{
				ID:        int64(len(s.reviews) + 1),
				BookID:    in.BookID,
				UserID:    in.UserID,
				Reviewer:  in.Reviewer,
				Text:      in.Text,
				Rating:    in.Rating,
				CreatedAt: time.Now(),
			}
			s.reviews = append(s.reviews, rv)
			return rv, nil
		}).AnyTimes()
	reviews.EXPECT().ListByBook(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, bookID int64) ([]review.Review, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			out := []review.Review{}
			for i := len(s.reviews) - 1; i >= 0; i-- {
				if s.reviews[i].BookID == bookID {
					out = append(out, s.reviews[i])
				}
			}
			return out, nil
		}).AnyTimes()
}

func newTestServer(t *testing.T, ping func(context.Context) error) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)

	users := user.NewMockRepository(ctrl)
	books := book.NewMockRepository(ctrl)
	reviews := review.NewMockRepository(ctrl)
	newFakeStore().expect(users, books, reviews)

	router, limiter := wire(testConfig(), repositories{users: users, books: books, reviews: reviews}, prometheus.NewRegistry(), ping)
	t.Cleanup(limiter.Stop)
	return router
}

func do(h http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestReviewScenario(t *testing.T) {
	h := newTestServer(t, nil)

	resp := do(h, testutil.NewRequest(http.MethodPost, "/api/auth/signup", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}))
	require.Equal(t, http.StatusCreated, resp.Code)
	token, _ := resp.Data()["token"].(string)
	require.NotEmpty(t, token)

	resp = do(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books", map[string]any{
		"title":  "Dune",
		"author": "Frank Herbert",
		"genre":  "Science Fiction",
	}, token))
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.EqualValues(t, 1, resp.Data()["id"])
	assert.EqualValues(t, 1, resp.Data()["user_id"])

	body := map[string]any{"review_text": "A desert planet classic.", "rating": 5}
	resp = do(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", body, token))
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "alice", resp.Data()["reviewer"])

	resp = do(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", body, token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "DUPLICATE_REVIEW", resp.ErrorCode())

	resp = do(h, testutil.NewRequest(http.MethodGet, "/api/books/1", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.Data()
	assert.Equal(t, "5.0", data["average_rating"])
	assert.EqualValues(t, 1, data["review_count"])
	listed, _ := data["reviews"].([]any)
	assert.Len(t, listed, 1)

	resp = do(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/auth/me", nil, token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "alice", resp.Data()["username"])
	assert.NotContains(t, resp.Data(), "password_hash")
}

func TestReviewForMissingBook(t *testing.T) {
	h := newTestServer(t, nil)
	token := testutil.GenerateTestToken(7, "bob", "bob@example.com")

	resp := do(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/42/reviews",
		map[string]any{"review_text": "Never written.", "rating": 3}, token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestServer(t, nil)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/books"},
		{http.MethodPost, "/api/books/1/reviews"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp := do(h, testutil.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Equal(t, "UNAUTHORIZED", resp.ErrorCode())

			resp = do(h, testutil.NewRequestWithAuth(rt.method, rt.path, nil, "not-a-jwt"))
			assert.Equal(t, http.StatusForbidden, resp.Code)
			assert.Equal(t, "FORBIDDEN", resp.ErrorCode())

			expired := testutil.GenerateExpiredToken(1, "alice", "alice@example.com")
			resp = do(h, testutil.NewRequestWithAuth(rt.method, rt.path, nil, expired))
			assert.Equal(t, http.StatusForbidden, resp.Code)
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newTestServer(t, nil)

	resp := do(h, testutil.NewRequest(http.MethodGet, "/api/books/abc", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(h, testutil.NewRequest(http.MethodGet, "/api/books/99", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.ErrorCode())

	resp = do(h, testutil.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.ErrorCode())

	resp = do(h, testutil.NewRequest(http.MethodDelete, "/api/books", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "bookreview_http_requests_total"))
}

func TestReadyzReportsDatabaseFailure(t *testing.T) {
	h := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
