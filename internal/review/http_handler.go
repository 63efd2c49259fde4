package review

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookreview/internal/httpx"
	"bookreview/internal/rating"
)

type Adder interface {
	Add(ctx context.Context, in NewReview) (Review, error)
}

type HTTPHandler struct {
	service Adder
}

func NewHTTPHandler(service Adder) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createReviewReq struct {
	Text   string       `json:"review_text" validate:"required,min=10"`
	Rating rating.Value `json:"rating"`
}

// Create handles POST /api/books/{id}/reviews
// @Summary Review a book
// @Description Post a rating and review text; one review per user per book
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Book ID"
// @Param request body createReviewReq true "Review request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", nil)
		return
	}

	bookID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return
	}

	var req createReviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, rating.ErrNotInteger) || errors.Is(err, rating.ErrOutOfRange) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
				[]httpx.ErrorDetail{{Field: "rating", Message: "rating must be a whole number between 1 and 5"}})
			return
		}
		httpx.WriteDecodeError(w, r, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)

	details := httpx.ValidateStruct(req)
	if err := rating.Validate(int(req.Rating)); err != nil {
		details = append(details, httpx.ErrorDetail{Field: "rating", Message: err.Error()})
	}
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	created, err := h.service.Add(r.Context(), NewReview{
		BookID:   bookID,
		UserID:   claims.UserID,
		Reviewer: claims.Username,
		Text:     req.Text,
		Rating:   int(req.Rating),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", nil)
		case errors.Is(err, ErrBookNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrDuplicateReview):
			httpx.JSONError(w, r, http.StatusBadRequest, "DUPLICATE_REVIEW", "You have already reviewed this book", nil)
		default:
			httpx.InternalError(w, r, err)
		}
		return
	}

	httpx.JSONCreated(w, r, created)
}
