package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/pkg/session"
)

// fakeAPI is an httptest backend mounted under /api that counts every hit
// by "METHOD /path".
type fakeAPI struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu   sync.Mutex
	hits map[string]int
	all  int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, mux: http.NewServeMux(), hits: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.Method+" "+r.URL.Path]++
		f.all++
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) URL() string { return f.srv.URL + "/api" }

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) { f.mux.HandleFunc(pattern, h) }

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(t *testing.T, r *http.Request, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(v))
}

var (
	shopper = models.User{
		ID: "u1", FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9876543210", Role: models.RoleUser,
		Address: models.Address{Street: "12 Temple St", City: "Sivakasi", State: "TN", Pincode: "626123"},
	}
	admin = models.User{ID: "a1", FirstName: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	sparkler = models.Product{ID: "p1", Name: "Sparklers", Price: 250, OriginalPrice: 400, Stock: 50}
	rocket   = models.Product{ID: "p2", Name: "Rocket", Price: 120, Stock: 20}
)

// newStorefront returns a storefront against f with an in-memory store.
func newStorefront(t *testing.T, f *fakeAPI) (*Storefront, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemory()
	sf := Open(f.URL(), store, Deps{Gateway: payment.NewSandbox("secret")})
	t.Cleanup(sf.Close)
	return sf, store
}

// signIn starts a session for user without going through the backend.
// The cart listener runs, so /api/cart must be handled.
func signIn(t *testing.T, sf *Storefront, user models.User) {
	t.Helper()
	require.NoError(t, sf.Session.Start(context.Background(), "tok-"+user.ID, user))
}

// cartHandler serves an in-memory cart for the cart endpoints.
type cartHandler struct {
	mu    sync.Mutex
	items []models.CartItem
}

func (c *cartHandler) snapshot() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *cartHandler) mount(f *fakeAPI) {
	catalog := map[string]models.Product{sparkler.ID: sparkler, rocket.ID: rocket}

	f.handle("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		writeJSON(w, 200, c.snapshot())
	})
	f.handle("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		var in models.AddToCartInput
		decode(f.t, r, &in)
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.items {
			if c.items[i].Product.ID == in.ProductID {
				c.items[i].Quantity += in.Quantity
				writeJSON(w, 200, c.snapshot())
				return
			}
		}
		c.items = append(c.items, models.CartItem{Product: catalog[in.ProductID], Quantity: in.Quantity})
		writeJSON(w, 200, c.snapshot())
	})
	f.handle("PUT /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in models.QuantityInput
		decode(f.t, r, &in)
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.items {
			if c.items[i].Product.ID == r.PathValue("id") {
				c.items[i].Quantity = in.Quantity
			}
		}
		writeJSON(w, 200, c.snapshot())
	})
	f.handle("DELETE /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		kept := c.items[:0]
		for _, it := range c.items {
			if it.Product.ID != r.PathValue("id") {
				kept = append(kept, it)
			}
		}
		c.items = kept
		writeJSON(w, 200, c.snapshot())
	})
	f.handle("DELETE /api/cart", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.items = nil
		writeJSON(w, 200, []models.CartItem{})
	})
}
