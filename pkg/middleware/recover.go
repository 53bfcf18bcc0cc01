package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/response"
)

// Recovery turns a handler panic into a 500 with the stack logged.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.WithCtx(r.Context()).Error("http: handler panicked",
				"panic", v, "route", r.Method+" "+r.URL.Path, "stack", string(debug.Stack()))
			response.Error(w, http.StatusInternalServerError, "Something went wrong, please try again")
		}()
		next.ServeHTTP(w, r)
	})
}
