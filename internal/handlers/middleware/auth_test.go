package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
)

// Allow to use a function as authenticator
type authFunc func(header string) (uuid.UUID, error)

func (f authFunc) Authenticate(header string) (uuid.UUID, error) {
	return f(header)
}

func TestAuthMiddleware(t *testing.T) {
	sellerID := uuid.New()

	// Simple handler that try to get seller from context
	// If ok write its id to response
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be true cause middleware has to set seller or write error to response
		id, ok := sellerctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(id.String()))
		require.NoError(t, err, "should write seller id to response")
	})

	t.Run("auth ok", func(t *testing.T) {
		var gotHeader string
		middleware := AuthMiddleware(authFunc(func(header string) (uuid.UUID, error) {
			gotHeader = header
			return sellerID, nil
		}), &recordingLogger{})

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer token")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", string(body))
		require.Equal(t, sellerID.String(), string(body), "should return seller id in response")
		require.Equal(t, "Bearer token", gotHeader, "header should be passed as is")
	})

	t.Run("auth fail", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"no header", apperrors.ErrAuthRequired, http.StatusUnauthorized, CodeAuthRequired},
			{"no token", apperrors.ErrTokenMissing, http.StatusUnauthorized, CodeTokenMissing},
			{"bad token", apperrors.ErrTokenInvalid, http.StatusUnauthorized, CodeInvalidToken},
			{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired},
			{"unexpected", errors.New("hsm is on fire"), http.StatusInternalServerError, CodeAuthError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				logger := &recordingLogger{}
				middleware := AuthMiddleware(authFunc(func(string) (uuid.UUID, error) {
					return uuid.Nil, tt.err
				}), logger)

				rec := httptest.NewRecorder()
				middleware(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

				require.Equal(t, tt.wantStatus, rec.Code)
				require.Contains(t, rec.Body.String(), `"code":"`+tt.wantCode+`"`)
				require.NotContains(t, rec.Body.String(), "hsm is on fire", "internals must not leak")
			})
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := CORSMiddleware([]string{"http://localhost:3000", " https://www.fastandfab.in/ "})(next)

	t.Run("allowed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/active", nil)
		req.Header.Set("Origin", "https://www.fastandfab.in")

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "https://www.fastandfab.in", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/active", nil)
		req.Header.Set("Origin", "https://evil.example.com")

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("same origin untouched", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Empty(t, rec.Header().Get("Vary"))
	})
}
