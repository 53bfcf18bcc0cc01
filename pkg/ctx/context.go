// Package ctx gives sandbox handlers a single request context instead of a
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *CartController) Add(x *ctx.Context) {
//	    var in AddToCartInput
//	    if !x.BindJSON(&in) {
//	        return // response already sent
//	    }
//	    x.OK(items)
//	}
//
//	r.Post("/cart", "cart.add", ctx.Wrap(cart.Add))
package ctx

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/sparkcrackers/storefront/pkg/bind"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/middleware"
	"github.com/sparkcrackers/storefront/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc into an http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{New: func() any { return &Context{} }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request ──────────────────────────────────────────────────────────────────

// Param returns a chi URL parameter ("/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a query-string value, or "".
func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// UserID returns the id of the authenticated caller, or "".
func (c *Context) UserID() string {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

// Role returns the role of the authenticated caller, or "".
func (c *Context) Role() string {
	role, _ := middleware.RoleFromCtx(c.R)
	return role
}

// BindJSON decodes and validates the body into dest. On failure it writes a
// 400 (malformed body), 413 (too large) or 422 (validation) response and
// returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	switch {
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
		return false
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
		return false
	case len(errs) > 0:
		c.status = http.StatusUnprocessableEntity
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ─── Response ─────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// OK sends 200 with v as the bare body.
func (c *Context) OK(v any) { c.JSON(http.StatusOK, v) }

// Created sends 201 with v as the bare body.
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

// Error sends {"message": message}.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.ErrorBody{Message: message})
}

// Invalid sends 422 with a field → message map.
func (c *Context) Invalid(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

func (c *Context) NotFound(message string) { c.Error(http.StatusNotFound, message) }

func (c *Context) Forbidden() { c.Error(http.StatusForbidden, "Forbidden") }

// ServerError logs err and sends a generic 500.
func (c *Context) ServerError(err error) {
	logger.WithCtx(c.Context()).Error("handler failed",
		"method", c.R.Method, "path", c.R.URL.Path, "error", err)
	c.Error(http.StatusInternalServerError, "Something went wrong, please try again")
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
