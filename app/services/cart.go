package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/crypt"
)

// CartService holds the shopper's cart. The item list is only ever replaced
// by the array the backend returns; mutations are never applied locally.
type CartService struct {
	client  *api.Client
	session *Session
	stop    func()

	mu      sync.RWMutex
	items   []models.CartItem
	loading bool
	err     error
}

// NewCartService returns a cart that re-fetches on every session change.
func NewCartService(client *api.Client, session *Session) *CartService {
	c := &CartService{client: client, session: session}
	c.stop = session.OnChange(func(ctx context.Context, _ SessionState) {
		_ = c.Fetch(ctx)
	})
	return c
}

// Close stops following the session.
func (c *CartService) Close() { c.stop() }

// Fetch loads the cart. An anonymous shopper has an empty cart and no call
// is made.
func (c *CartService) Fetch(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		c.mu.Lock()
		c.items, c.err, c.loading = []models.CartItem{}, nil, false
		c.mu.Unlock()
		return nil
	}
	return c.send(ctx, api.Call{
		Method: http.MethodGet, Path: "/cart",
		Endpoint: "cart.fetch", Fallback: "Failed to fetch cart",
	})
}

// Add puts qty of product in the cart; qty below 1 adds one.
func (c *CartService) Add(ctx context.Context, product models.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}
	return c.mutate(ctx, api.Call{
		Method: http.MethodPost, Path: "/cart",
		Body:     models.AddToCartInput{ProductID: product.ID, Quantity: qty},
		Endpoint: "cart.add", Fallback: "Failed to add item",
	})
}

func (c *CartService) Remove(ctx context.Context, productID string) error {
	return c.mutate(ctx, api.Call{
		Method: http.MethodDelete, Path: "/cart/" + url.PathEscape(productID),
		Endpoint: "cart.remove", Fallback: "Failed to remove item",
	})
}

// UpdateQuantity sets a line's quantity. qty <= 0 removes the line.
func (c *CartService) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return c.Remove(ctx, productID)
	}
	return c.mutate(ctx, api.Call{
		Method: http.MethodPut, Path: "/cart/" + url.PathEscape(productID),
		Body:     models.QuantityInput{Quantity: qty},
		Endpoint: "cart.update", Fallback: "Failed to update quantity",
	})
}

func (c *CartService) Clear(ctx context.Context) error {
	return c.mutate(ctx, api.Call{
		Method: http.MethodDelete, Path: "/cart",
		Endpoint: "cart.clear", Fallback: "Failed to clear cart",
	})
}

func (c *CartService) mutate(ctx context.Context, call api.Call) error {
	if !c.session.IsAuthenticated() {
		c.mu.Lock()
		c.err = ErrLoginRequired
		c.mu.Unlock()
		return ErrLoginRequired
	}
	return c.send(ctx, call)
}

func (c *CartService) send(ctx context.Context, call api.Call) error {
	gen, _ := c.session.generation()
	c.mu.Lock()
	c.loading, c.err = true, nil
	c.mu.Unlock()

	var items []models.CartItem
	err := c.client.Do(ctx, call, &items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	// The session moved while the request was out. The change handler
	// already installed this session's state; only the caller sees err.
	if now, authed := c.session.generation(); now != gen || !authed {
		return err
	}
	if err != nil {
		c.err = err
		return err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	c.items = items
	return nil
}

// reset empties the local list after the backend has consumed the cart.
func (c *CartService) reset() {
	c.mu.Lock()
	c.items, c.err = []models.CartItem{}, nil
	c.mu.Unlock()
}

// Items returns a copy of the current lines.
func (c *CartService) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CartService) Total() float64        { return models.Subtotal(c.Items()) }
func (c *CartService) ItemCount() int        { return models.ItemCount(c.Items()) }
func (c *CartService) Savings() float64      { return models.Savings(c.Items()) }
func (c *CartService) Shipping() float64     { return models.ShippingFor(c.Total()) }
func (c *CartService) Totals() models.Totals { return models.Price(c.Items()) }
func (c *CartService) IsEmpty() bool         { return len(c.Items()) == 0 }

// Quantity returns the quantity of productID in the cart, or 0.
func (c *CartService) Quantity(productID string) int {
	for _, it := range c.Items() {
		if it.Product.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (c *CartService) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *CartService) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Fingerprint identifies the cart's contents independent of line order.
func (c *CartService) Fingerprint() string {
	items := c.Items()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s:%d:%g", it.Product.ID, it.Quantity, it.Product.Price))
	}
	sort.Strings(parts)
	return crypt.Hash(strings.Join(parts, ";"))
}
