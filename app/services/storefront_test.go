package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/session"
)

func TestBootstrap_RestoresAndLoads(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{items: []models.CartItem{{Product: rocket, Quantity: 3}}}).mount(f)
	mountWishlist(f)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []models.ContentSection{{ContentID: "hero_title", Content: "Welcome back"}})
	})

	store := session.NewMemory()
	raw, _ := json.Marshal(shopper)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, "tok-u1"))
	require.NoError(t, store.Set(context.Background(), session.KeyUser, string(raw)))

	sf := Open(f.URL(), store, Deps{})
	t.Cleanup(sf.Close)
	require.NoError(t, sf.Bootstrap(context.Background()))

	assert.True(t, sf.Session.IsAuthenticated())
	assert.False(t, sf.Session.Loading())
	assert.Equal(t, 3, sf.Cart.ItemCount())
	assert.Equal(t, "Welcome back", sf.Content.Value("hero_title"))
	assert.Equal(t, 1, f.count("GET /api/cart"))
	assert.Equal(t, 1, f.count("GET /api/wishlist"))
	assert.Equal(t, 1, f.count("GET /api/content"))
}

func TestBootstrap_ContentFailureIsNotFatal(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	sf, _ := newStorefront(t, f)

	require.NoError(t, sf.Bootstrap(context.Background()))
	assert.False(t, sf.Session.IsAuthenticated())
	assert.True(t, sf.Cart.IsEmpty())
	assert.Error(t, sf.Content.Err())
	assert.NotEmpty(t, sf.Content.Value("hero_title"))
	assert.Zero(t, f.count("GET /api/cart"), "anonymous shoppers have no cart call")
}
