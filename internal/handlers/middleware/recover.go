package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fastandfab/sellerservice/internal/handlers/render"
)

// Turn handler panic into 500 response
func RecoverMiddleware(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				switch rec {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(rec)
				}

				l.Error("handler panic", "panic", rec, "uri", r.RequestURI, "stack", string(debug.Stack()))
				render.InternalError(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Expose internal error details in 500 responses. Meant for development only
func DetailsMiddleware(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(render.WithDetails(r.Context())))
		})
	}
}
