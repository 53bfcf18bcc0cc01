package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	appctx "github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/middleware"
)

type quantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

func serve(method, target, body string, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestOKWritesBareBody(t *testing.T) {
	rec := serve(http.MethodGet, "/", "", func(c *appctx.Context) {
		c.OK([]string{"a", "b"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["a","b"]`, rec.Body.String())
}

func TestBindJSONValidation(t *testing.T) {
	rec := serve(http.MethodPut, "/", `{"quantity":0}`, func(c *appctx.Context) {
		var in quantityInput
		if c.BindJSON(&in) {
			t.Fatal("expected validation failure")
		}
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity"`)
	assert.Contains(t, rec.Body.String(), `"message":"Validation failed"`)
}

func TestBindJSONMalformed(t *testing.T) {
	rec := serve(http.MethodPut, "/", `{`, func(c *appctx.Context) {
		var in quantityInput
		assert.False(t, c.BindJSON(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindJSONValid(t *testing.T) {
	rec := serve(http.MethodPut, "/", `{"quantity":3}`, func(c *appctx.Context) {
		var in quantityInput
		if assert.True(t, c.BindJSON(&in)) {
			c.OK(in)
		}
	})
	assert.JSONEq(t, `{"quantity":3}`, rec.Body.String())
}

func TestParamAndUser(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{id}", appctx.Wrap(func(c *appctx.Context) {
		c.OK(map[string]string{"id": c.Param("id"), "user": c.UserID(), "role": c.Role()})
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), "u-1", "user"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"id":"o-1","user":"u-1","role":"user"}`, rec.Body.String())
}

func TestErrorShape(t *testing.T) {
	rec := serve(http.MethodGet, "/", "", func(c *appctx.Context) {
		c.NotFound("Order not found")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())
}
