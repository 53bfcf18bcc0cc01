// Package reqid carries a request ID through contexts and HTTP headers.
//
// The sandbox API tags every incoming request with an ID (reusing the
// caller's X-Request-ID when present) and the storefront client forwards the
// ID of the context it was called with, so one shopper action can be traced
// from the CLI through the API logs.
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

// New returns a fresh random request ID.
func New() string { return uuid.NewString() }

// WithValue stores id in ctx and returns the new context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx extracts the request ID from ctx, or "" when none is present.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Ensure returns ctx unchanged when it already carries an ID, otherwise a
// child context with a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromCtx(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithValue(ctx, id), id
}

// Middleware injects a request ID into every request context and echoes it
// in the response header.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
