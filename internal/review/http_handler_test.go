package review

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"bookreview/internal/httpx"
	"bookreview/internal/testutil"
)

func serveCreate(h *HTTPHandler, r *http.Request, bookID string) *httptest.ResponseRecorder {
	r.SetPathValue("id", bookID)
	w := httptest.NewRecorder()
	httpx.AuthMiddleware(testutil.TokenService())(http.HandlerFunc(h.Create)).ServeHTTP(w, r)
	return w
}

func TestHTTPHandler_Create(t *testing.T) {
	token := testutil.GenerateTestToken(2, "alice", "alice@x.com")
	body := map[string]any{"review_text": "Great worldbuilding and pacing", "rating": 5}

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		h := NewHTTPHandler(NewService(repo))

		repo.EXPECT().Create(gomock.Any(), NewReview{
			BookID: 1, UserID: 2, Reviewer: "alice", Text: "Great worldbuilding and pacing", Rating: 5,
		}).Return(Review{ID: 1, BookID: 1, UserID: 2, Reviewer: "alice", Text: "Great worldbuilding and pacing", Rating: 5, CreatedAt: time.Now()}, nil)

		w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", body, token), "1")

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "alice", resp.Data()["reviewer"])
		assert.Equal(t, float64(5), resp.Data()["rating"])
	})

	t.Run("string rating is coerced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		h := NewHTTPHandler(NewService(repo))

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in NewReview) (Review, error) {
			assert.Equal(t, 4, in.Rating)
			return Review{ID: 1, Rating: in.Rating}, nil
		})

		w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews",
			map[string]any{"review_text": "Great worldbuilding and pacing", "rating": "4"}, token), "1")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	errorCases := []struct {
		name     string
		repoErr  error
		wantCode int
		wantErr  string
	}{
		{"duplicate", ErrDuplicateReview, http.StatusBadRequest, "DUPLICATE_REVIEW"},
		{"missing book", ErrBookNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"store down", errors.New("conn reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockRepository(ctrl)
			h := NewHTTPHandler(NewService(repo))
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(Review{}, tt.repoErr)

			w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", body, token), "1")

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantErr, resp.ErrorCode())
		})
	}

	invalid := []struct {
		name string
		body any
	}{
		{"rating too high", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": 6}},
		{"rating zero", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": 0}},
		{"rating missing", map[string]any{"review_text": "Great worldbuilding and pacing"}},
		{"fractional rating", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": 4.5}},
		{"text rating", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": "five"}},
		{"boolean rating", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": true}},
		{"short text", map[string]any{"review_text": "  meh  ", "rating": 3}},
		{"unknown field", map[string]any{"review_text": "Great worldbuilding and pacing", "rating": 3, "stars": 3}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			h := NewHTTPHandler(NewService(NewMockRepository(ctrl)))

			w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", tt.body, token), "1")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("non-numeric book id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)))

		w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/abc/reviews", body, token), "abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)))

		w := serveCreate(h, testutil.NewRequest(http.MethodPost, "/api/books/1/reviews", body), "1")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)))

		expired := testutil.GenerateExpiredToken(2, "alice", "alice@x.com")
		w := serveCreate(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books/1/reviews", body, expired), "1")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
