package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// requestID reuses the caller-supplied id when present so traces can span
// services.
func requestID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

// RequestID tags every request with an id, echoed on the response and
// threaded through the log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestID(r)
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
