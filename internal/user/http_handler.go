package user

import (
	"context"
	"errors"
	"net/http"

	"bookreview/internal/httpx"
)

type Reader interface {
	GetByID(ctx context.Context, id int64) (User, error)
}

type HTTPHandler struct {
	service Reader
}

func NewHTTPHandler(service Reader) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// GetCurrentUser handles GET /api/auth/me
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /auth/me [get]
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", nil)
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, u)
}
