package models

import (
	"math"

	"github.com/sparkcrackers/storefront/pkg/collection"
)

// Shipping rules in rupees.
const (
	FreeShippingThreshold = 2000.0
	ShippingFee           = 99.0
)

// CartItem is one cart line as returned by the API.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (i CartItem) LineTotal() float64 { return i.Product.Price * float64(i.Quantity) }

// AddToCartInput is the body of POST /cart.
type AddToCartInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"required,gte=1,lte=999"`
}

// QuantityInput is the body of PUT /cart/{productId}.
type QuantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=999"`
}

// Subtotal is Σ price × quantity.
func Subtotal(items []CartItem) float64 {
	return collection.Sum(items, CartItem.LineTotal)
}

// ItemCount is Σ quantity.
func ItemCount(items []CartItem) int {
	return collection.Sum(items, func(i CartItem) int { return i.Quantity })
}

// Savings is Σ max(0, originalPrice − price) × quantity.
func Savings(items []CartItem) float64 {
	return collection.Sum(items, func(i CartItem) float64 {
		return i.Product.Discount() * float64(i.Quantity)
	})
}

// ShippingFor returns the shipping charge for a cart subtotal. An empty cart
// and any subtotal at or above FreeShippingThreshold ship free.
func ShippingFor(subtotal float64) float64 {
	if subtotal <= 0 || subtotal >= FreeShippingThreshold {
		return 0
	}
	return ShippingFee
}

// Totals is the priced summary of a set of lines.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Price computes Totals for items.
func Price(items []CartItem) Totals {
	sub := Subtotal(items)
	ship := ShippingFor(sub)
	return Totals{Subtotal: sub, Shipping: ship, Total: sub + ship}
}

// ToPaise converts rupees to the gateway's minor unit.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}
