package httpx

import (
	"context"
	"net/http"

	"bookreview/internal/platform/crypto"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "requestID"
)

// ContextWithClaims stores the verified token claims for downstream handlers.
func ContextWithClaims(ctx context.Context, c *crypto.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom returns the caller's identity when the request passed AuthMiddleware.
func ClaimsFrom(r *http.Request) (*crypto.Claims, bool) {
	c, ok := r.Context().Value(claimsKey).(*crypto.Claims)
	return c, ok && c != nil
}

// UserIDFrom returns the authenticated user id, or 0 for anonymous requests.
func UserIDFrom(r *http.Request) int64 {
	if c, ok := ClaimsFrom(r); ok {
		return c.UserID
	}
	return 0
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
