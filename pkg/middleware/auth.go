// Package middleware provides the sandbox API's HTTP middleware.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sparkcrackers/storefront/pkg/auth"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/response"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

// Auth rejects requests without a valid bearer token with 401 and stores the
// token's user id and role in the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r)
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, "Session expired, please login again")
			return
		}

		ctx := WithUser(r.Context(), claims.UserID, claims.Role)
		ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", claims.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found {
		// websocket clients cannot always set headers
		token = r.URL.Query().Get("token")
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUser stores a user id and role in ctx.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFromCtx returns the authenticated user id set by Auth.
func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromCtx returns the authenticated role set by Auth.
func RoleFromCtx(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok && role != ""
}
