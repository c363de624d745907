package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
)

// Codes of rejected authentication
const (
	CodeAuthRequired = "AUTH_REQUIRED"
	CodeTokenMissing = "TOKEN_MISSING"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeAuthError    = "AUTH_ERROR"
)

type authenticator interface {
	// Validate Authorization header value and return seller id
	Authenticate(header string) (uuid.UUID, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Reject request unless it carries valid access token
// Seller id of accepted request is available with sellerctx.FromContext
func AuthMiddleware(a authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sellerID, err := a.Authenticate(r.Header.Get("Authorization"))

			switch {
			case err == nil:
				ctx := sellerctx.New(r.Context(), sellerID)
				next.ServeHTTP(w, r.WithContext(ctx))
			case errors.Is(err, apperrors.ErrAuthRequired):
				render.CodedError(w, "Authorization header required", CodeAuthRequired, http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrTokenMissing):
				render.CodedError(w, "Access token missing", CodeTokenMissing, http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.CodedError(w, "Access token expired", CodeTokenExpired, http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrTokenInvalid):
				render.CodedError(w, "Invalid access token", CodeInvalidToken, http.StatusUnauthorized)
			default:
				l.Error("authentication failed", "error", err)
				render.CodedError(w, "Authentication failed", CodeAuthError, http.StatusInternalServerError)
			}
		})
	}
}
