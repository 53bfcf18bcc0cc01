package services

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/collection"
)

// WishlistService follows the cart's rules: auth gated, and the list is
// whatever the backend last returned.
type WishlistService struct {
	client  *api.Client
	session *Session
	stop    func()

	mu       sync.RWMutex
	products []models.Product
	loading  bool
	err      error
}

func NewWishlistService(client *api.Client, session *Session) *WishlistService {
	w := &WishlistService{client: client, session: session}
	w.stop = session.OnChange(func(ctx context.Context, _ SessionState) {
		_ = w.Fetch(ctx)
	})
	return w
}

func (w *WishlistService) Close() { w.stop() }

func (w *WishlistService) Fetch(ctx context.Context) error {
	if !w.session.IsAuthenticated() {
		w.mu.Lock()
		w.products, w.err, w.loading = []models.Product{}, nil, false
		w.mu.Unlock()
		return nil
	}
	return w.send(ctx, api.Call{
		Method: http.MethodGet, Path: "/wishlist",
		Endpoint: "wishlist.fetch", Fallback: "Failed to fetch wishlist",
	})
}

func (w *WishlistService) Add(ctx context.Context, productID string) error {
	return w.mutate(ctx, api.Call{
		Method: http.MethodPost, Path: "/wishlist/" + url.PathEscape(productID),
		Endpoint: "wishlist.add", Fallback: "Failed to add to wishlist",
	})
}

func (w *WishlistService) Remove(ctx context.Context, productID string) error {
	return w.mutate(ctx, api.Call{
		Method: http.MethodDelete, Path: "/wishlist/" + url.PathEscape(productID),
		Endpoint: "wishlist.remove", Fallback: "Failed to remove from wishlist",
	})
}

// Toggle adds productID when absent and removes it when present. It reports
// whether the product is wishlisted afterwards.
func (w *WishlistService) Toggle(ctx context.Context, productID string) (bool, error) {
	if w.Contains(productID) {
		if err := w.Remove(ctx, productID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := w.Add(ctx, productID); err != nil {
		return false, err
	}
	return true, nil
}

func (w *WishlistService) Contains(productID string) bool {
	return collection.IndexOf(w.Products(), func(p models.Product) bool { return p.ID == productID }) >= 0
}

func (w *WishlistService) Products() []models.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.Product, len(w.products))
	copy(out, w.products)
	return out
}

func (w *WishlistService) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

func (w *WishlistService) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

func (w *WishlistService) mutate(ctx context.Context, call api.Call) error {
	if !w.session.IsAuthenticated() {
		w.mu.Lock()
		w.err = ErrWishlistLoginRequired
		w.mu.Unlock()
		return ErrWishlistLoginRequired
	}
	return w.send(ctx, call)
}

func (w *WishlistService) send(ctx context.Context, call api.Call) error {
	gen, _ := w.session.generation()
	w.mu.Lock()
	w.loading, w.err = true, nil
	w.mu.Unlock()

	var products []models.Product
	err := w.client.Do(ctx, call, &products)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	// The session moved while the request was out. The change handler
	// already installed this session's state; only the caller sees err.
	if now, authed := w.session.generation(); now != gen || !authed {
		return err
	}
	if err != nil {
		w.err = err
		return err
	}
	if products == nil {
		products = []models.Product{}
	}
	w.products = products
	return nil
}
