package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
)

func mountWishlist(f *fakeAPI) {
	var (
		mu   sync.Mutex
		list []models.Product
	)
	catalog := map[string]models.Product{sparkler.ID: sparkler, rocket.ID: rocket}
	reply := func(w http.ResponseWriter) { writeJSON(w, 200, append([]models.Product{}, list...)) }

	f.handle("GET /api/wishlist", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		reply(w)
	})
	f.handle("POST /api/wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		list = append(list, catalog[r.PathValue("id")])
		reply(w)
	})
	f.handle("DELETE /api/wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		kept := list[:0]
		for _, p := range list {
			if p.ID != r.PathValue("id") {
				kept = append(kept, p)
			}
		}
		list = kept
		reply(w)
	})
}

func TestWishlist_Toggle(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	mountWishlist(f)
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)
	ctx := context.Background()

	on, err := sf.Wishlist.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, sf.Wishlist.Contains("p1"))

	on, err = sf.Wishlist.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, sf.Wishlist.Products())
}

func TestWishlist_AnonymousRefused(t *testing.T) {
	f := newFakeAPI(t)
	sf, _ := newStorefront(t, f)

	require.NoError(t, sf.Wishlist.Fetch(context.Background()))
	_, err := sf.Wishlist.Toggle(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrWishlistLoginRequired)
	assert.Zero(t, f.total())
}

func TestCatalog(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sky", r.URL.Query().Get("category"))
		assert.False(t, r.URL.Query().Has("search"), "empty filters are not sent")
		writeJSON(w, 200, []models.Product{rocket})
	})
	f.handle("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			writeJSON(w, 404, map[string]string{"message": "Product not found"})
			return
		}
		writeJSON(w, 200, sparkler)
	})
	sf, _ := newStorefront(t, f)

	list, err := sf.Catalog.List(context.Background(), models.ProductFilter{Category: "sky"})
	require.NoError(t, err)
	assert.Equal(t, []models.Product{rocket}, list)

	p, err := sf.Catalog.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Sparklers", p.Name)

	_, err = sf.Catalog.Get(context.Background(), "nope")
	assert.EqualError(t, err, "Product not found")
}

func TestWishlist_LateResponseAfterLogoutIsDropped(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	entered, release := make(chan struct{}), make(chan struct{})
	f.handle("GET /api/wishlist", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []models.Product{})
	})
	f.handle("POST /api/wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, 200, []models.Product{rocket})
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	done := make(chan error, 1)
	go func() {
		_, err := sf.Wishlist.Toggle(context.Background(), rocket.ID)
		done <- err
	}()
	<-entered

	require.NoError(t, sf.Auth.Logout(context.Background()))
	close(release)

	require.NoError(t, <-done)
	assert.Empty(t, sf.Wishlist.Products())
	assert.False(t, sf.Wishlist.Contains(rocket.ID))
	assert.False(t, sf.Wishlist.Loading())
}
