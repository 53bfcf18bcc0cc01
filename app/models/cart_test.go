package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(price, original float64, qty int) CartItem {
	return CartItem{Product: Product{Price: price, OriginalPrice: original}, Quantity: qty}
}

func TestFolds_EmptyCart(t *testing.T) {
	assert.Zero(t, Subtotal(nil))
	assert.Zero(t, ItemCount(nil))
	assert.Zero(t, Savings(nil))
	assert.Equal(t, Totals{}, Price(nil))
}

func TestFolds(t *testing.T) {
	items := []CartItem{line(250, 400, 2), line(99.5, 0, 3), line(10, 5, 1)}

	assert.InDelta(t, 500+298.5+10, Subtotal(items), 1e-9)
	assert.Equal(t, 6, ItemCount(items))
	assert.InDelta(t, 300, Savings(items), 1e-9)
}

func TestShippingFor(t *testing.T) {
	assert.Zero(t, ShippingFor(0))
	assert.Equal(t, ShippingFee, ShippingFor(1999.99))
	assert.Zero(t, ShippingFor(FreeShippingThreshold))
	assert.Zero(t, ShippingFor(5000))
}

func TestPrice(t *testing.T) {
	got := Price([]CartItem{line(500, 0, 1)})
	assert.Equal(t, Totals{Subtotal: 500, Shipping: ShippingFee, Total: 599}, got)
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(59900), ToPaise(599))
	assert.Equal(t, int64(1999), ToPaise(19.99))
}
