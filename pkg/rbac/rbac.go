// Package rbac gates sandbox routes by the role carried in the bearer token.
package rbac

import (
	"net/http"
	"slices"

	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/middleware"
	"github.com/sparkcrackers/storefront/pkg/response"
)

// HasRole admits only callers whose role is in roles. It runs after
// middleware.Auth: a request without a user is answered 401, a user with
// another role 403.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	roles = slices.Clone(roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middleware.UserIDFromCtx(r)
			if !ok {
				response.Unauthorized(w, "")
				return
			}

			role, _ := middleware.RoleFromCtx(r)
			if !slices.Contains(roles, role) {
				logger.WithCtx(r.Context()).Info("rbac: role denied",
					"user_id", userID, "role", role, "path", r.URL.Path)
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
