package httpx

import (
	"errors"
	"net/http"
	"strings"

	"bookreview/internal/logger"
	"bookreview/internal/platform/crypto"
)

type TokenVerifier interface {
	Verify(token string) (*crypto.Claims, error)
}

// AuthMiddleware admits requests carrying a valid bearer token. A missing
// token is 401; a token that fails verification is 403.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", nil)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := "token_invalid"
				if errors.Is(err, crypto.ErrTokenExpired) {
					reason = "token_expired"
				}
				logger.Log.Infow("auth rejected",
					"request_id", RequestIDFrom(r),
					"reason", reason,
					"path", r.URL.Path,
				)
				JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
