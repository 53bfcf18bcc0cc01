package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/pkg/reqid"
)

// CORSOptions configures the CORS middleware. An origin list containing "*"
// admits every origin.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSOptions admits the origins in CORS_ORIGINS (comma-separated,
// default "*") with the methods and headers the storefront client sends.
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowedOrigins: splitList(config.Get("CORS_ORIGINS", "*")),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", reqid.Header},
		MaxAge:         600,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CORS sets the Access-Control headers for admitted origins and answers
// preflight requests itself. Requests without an Origin pass untouched.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	wildcard := slices.Contains(opts.AllowedOrigins, "*")
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && origin != ""

			if origin != "" {
				h := w.Header()
				h.Add("Vary", "Origin")
				switch {
				case wildcard:
					h.Set("Access-Control-Allow-Origin", "*")
				case slices.Contains(opts.AllowedOrigins, origin):
					h.Set("Access-Control-Allow-Origin", origin)
				default:
					if preflight {
						w.WriteHeader(http.StatusForbidden)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
				h.Set("Access-Control-Expose-Headers", reqid.Header)
				if preflight {
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					if opts.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
					}
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
