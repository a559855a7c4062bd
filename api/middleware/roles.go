package middleware

import (
	"net/http"

	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/internal/authz"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

// Authorize gates a route on the policy table for the given operation.
func Authorize(op authz.Operation, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.UserRole(RoleFromContext(r.Context()))
			if err := authz.Require(op, role); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
