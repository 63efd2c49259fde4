package book

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookreview/internal/httpx"
)

// Catalog is the read and write surface the handler needs.
type Catalog interface {
	Create(ctx context.Context, in NewBook) (Book, error)
	List(ctx context.Context, q Query) ([]BookView, int, error)
	Get(ctx context.Context, id int64) (BookDetail, error)
	Genres(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
}

type HTTPHandler struct {
	service Catalog
}

func NewHTTPHandler(service Catalog) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalBooks  int `json:"totalBooks"`
	Limit       int `json:"limit"`
}

type listResponse struct {
	Books      []BookView `json:"books"`
	Pagination Pagination `json:"pagination"`
}

// List handles GET /api/books
// @Summary List books
// @Description Paginated catalog with average rating, filterable by genre and author
// @Tags books
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param genre query string false "Genre substring"
// @Param author query string false "Author substring"
// @Param sortBy query string false "date or rating"
// @Param order query string false "asc or desc"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Genre:     query.Get("genre"),
		Author:    query.Get("author"),
		SortBy:    ParseSort(query.Get("sortBy")),
		Ascending: ParseAscending(query.Get("order")),
		Page:      httpx.QueryInt(r, "page", DefaultPage),
		Limit:     httpx.QueryInt(r, "limit", DefaultLimit),
	}.Normalize()

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, listResponse{
		Books: books,
		Pagination: Pagination{
			CurrentPage: params.Page,
			TotalPages:  TotalPages(total, params.Limit),
			TotalBooks:  total,
			Limit:       params.Limit,
		},
	})
}

// Get handles GET /api/books/{id}
// @Summary Get a book
// @Description Book with its average rating and reviews, newest first
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, detail)
}

type createBookReq struct {
	Title  string `json:"title" validate:"required,notblank"`
	Author string `json:"author" validate:"required,notblank"`
	Genre  string `json:"genre" validate:"required,notblank"`
}

// Create handles POST /api/books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createBookReq true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", nil)
		return
	}

	var req createBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	created, err := h.service.Create(r.Context(), NewBook{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		CreatorID: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONCreated(w, r, created)
}

// Genres handles GET /api/genres
// @Summary Distinct genres
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /genres [get]
func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	h.writeValues(w, r, h.service.Genres)
}

// Authors handles GET /api/authors
// @Summary Distinct authors
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /authors [get]
func (h *HTTPHandler) Authors(w http.ResponseWriter, r *http.Request) {
	h.writeValues(w, r, h.service.Authors)
}

func (h *HTTPHandler) writeValues(w http.ResponseWriter, r *http.Request, load func(context.Context) ([]string, error)) {
	values, err := load(r.Context())
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, values)
}
