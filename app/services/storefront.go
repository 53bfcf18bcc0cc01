// Package services is the storefront core: the shopper session and the
// stores built on it. Every store takes the same *Session; none of them
// keeps global state.
package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/event"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/session"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

// Deps are the optional collaborators of a Storefront.
type Deps struct {
	Gateway    payment.Gateway
	Cache      *cache.Store
	ContentTTL time.Duration
	Media      storage.Disk
}

// Storefront wires every store to one session and one API client.
type Storefront struct {
	Session  *Session
	Client   *api.Client
	Auth     *AuthService
	Cart     *CartService
	Content  *ContentService
	Catalog  *CatalogService
	Wishlist *WishlistService
	Orders   *OrderService

	gateway payment.Gateway
}

// Open builds a session over store and a client for baseURL whose 401s
// clear that session, then wires the stores.
func Open(baseURL string, store session.Store, deps Deps) *Storefront {
	sess := NewSession(store, event.NewBus())
	client := api.New(baseURL, api.WithTokenSource(sess), api.OnUnauthorized(sess.ForceClear))
	return New(client, sess, deps)
}

func New(client *api.Client, sess *Session, deps Deps) *Storefront {
	return &Storefront{
		Session: sess,
		Client:  client,
		Auth:    NewAuthService(client, sess),
		Cart:    NewCartService(client, sess),
		Content: NewContentService(client, sess, ContentOptions{
			Cache:    deps.Cache,
			CacheTTL: deps.ContentTTL,
			Media:    deps.Media,
		}),
		Catalog:  NewCatalogService(client),
		Wishlist: NewWishlistService(client, sess),
		Orders:   NewOrderService(client, sess),
		gateway:  deps.Gateway,
	}
}

// Bootstrap restores the session, which re-fetches the cart and wishlist,
// while content loads alongside. A content failure is logged and the
// defaults are served.
func (s *Storefront) Bootstrap(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Session.Restore(gctx)
	})
	g.Go(func() error {
		if err := s.Content.Fetch(gctx); err != nil {
			logger.WithCtx(ctx).Warn("storefront: content unavailable, serving defaults", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return s.Cart.Err()
}

// Checkout starts a checkout for the current cart.
func (s *Storefront) Checkout() (*CheckoutFlow, error) {
	return NewCheckoutFlow(s.Cart, s.Client, s.Session, s.gateway)
}

// Close detaches the stores from the session.
func (s *Storefront) Close() {
	s.Cart.Close()
	s.Wishlist.Close()
}
