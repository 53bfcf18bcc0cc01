package controllers

import (
	"errors"

	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// WishlistController serves /wishlist. Every call answers with the saved
// products.
type WishlistController struct {
	wishlists *repositories.WishlistRepository
	products  *repositories.ProductRepository
}

func NewWishlistController(wishlists *repositories.WishlistRepository, products *repositories.ProductRepository) *WishlistController {
	return &WishlistController{wishlists: wishlists, products: products}
}

func (wc *WishlistController) Index(c *ctx.Context) { wc.respond(c) }

// Store handles POST /wishlist/{productId}.
func (wc *WishlistController) Store(c *ctx.Context) {
	id := c.Param("productId")
	if _, err := wc.products.Find(c.Context(), id); err != nil {
		if errors.Is(err, orm.ErrNotFound) {
			c.NotFound("Product not found")
			return
		}
		c.ServerError(err)
		return
	}
	if err := wc.wishlists.Add(c.Context(), c.UserID(), id); err != nil {
		c.ServerError(err)
		return
	}
	wc.respond(c)
}

// Destroy handles DELETE /wishlist/{productId}. Removing an unsaved product
// is not an error.
func (wc *WishlistController) Destroy(c *ctx.Context) {
	if err := wc.wishlists.Remove(c.Context(), c.UserID(), c.Param("productId")); err != nil {
		c.ServerError(err)
		return
	}
	wc.respond(c)
}

func (wc *WishlistController) respond(c *ctx.Context) {
	products, err := wc.wishlists.Products(c.Context(), c.UserID())
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(products)
}
