package controllers

import (
	"errors"
	"net/http"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// CartController serves /cart. Every mutation answers with the full cart.
type CartController struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartController(carts *repositories.CartRepository, products *repositories.ProductRepository) *CartController {
	return &CartController{carts: carts, products: products}
}

func (cc *CartController) Index(c *ctx.Context) {
	cc.respond(c)
}

// Store handles POST /cart {productId, quantity}; the quantity is added to
// any already in the cart.
func (cc *CartController) Store(c *ctx.Context) {
	var in models.AddToCartInput
	if !c.BindJSON(&in) {
		return
	}
	product, ok := cc.product(c, in.ProductID)
	if !ok {
		return
	}

	have, err := cc.carts.Quantity(c.Context(), c.UserID(), product.ID)
	if err != nil {
		c.ServerError(err)
		return
	}
	cc.put(c, product, have+in.Quantity)
}

// Update handles PUT /cart/{productId} {quantity}.
func (cc *CartController) Update(c *ctx.Context) {
	var in models.QuantityInput
	if !c.BindJSON(&in) {
		return
	}
	product, ok := cc.product(c, c.Param("productId"))
	if !ok {
		return
	}

	have, err := cc.carts.Quantity(c.Context(), c.UserID(), product.ID)
	if err != nil {
		c.ServerError(err)
		return
	}
	if have == 0 {
		c.NotFound("Item not in cart")
		return
	}
	cc.put(c, product, in.Quantity)
}

// Destroy handles DELETE /cart/{productId}.
func (cc *CartController) Destroy(c *ctx.Context) {
	removed, err := cc.carts.Remove(c.Context(), c.UserID(), c.Param("productId"))
	if err != nil {
		c.ServerError(err)
		return
	}
	if !removed {
		c.NotFound("Item not in cart")
		return
	}
	cc.respond(c)
}

// Clear handles DELETE /cart.
func (cc *CartController) Clear(c *ctx.Context) {
	if err := cc.carts.Clear(c.Context(), c.UserID()); err != nil {
		c.ServerError(err)
		return
	}
	cc.respond(c)
}

func (cc *CartController) put(c *ctx.Context, product models.Product, qty int) {
	if qty > product.Stock {
		c.Error(http.StatusBadRequest, stockMessage(product))
		return
	}
	if err := cc.carts.Put(c.Context(), c.UserID(), product.ID, qty); err != nil {
		c.ServerError(err)
		return
	}
	cc.respond(c)
}

func (cc *CartController) product(c *ctx.Context, id string) (models.Product, bool) {
	p, err := cc.products.Find(c.Context(), id)
	if errors.Is(err, orm.ErrNotFound) {
		c.NotFound("Product not found")
		return p, false
	}
	if err != nil {
		c.ServerError(err)
		return p, false
	}
	return p, true
}

func (cc *CartController) respond(c *ctx.Context) {
	items, err := cc.carts.Items(c.Context(), c.UserID())
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(items)
}
