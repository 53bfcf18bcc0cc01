package controllers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/validate"
)

// checkOrderInput validates an order request, including the nested address
// and every line, keying errors by their JSON path.
func checkOrderInput(in models.OrderInput) map[string]string {
	errs := validate.Struct(in)
	for field, msg := range validate.Struct(in.ShippingAddress) {
		errs["shippingAddress."+field] = msg
	}
	for i, line := range in.Items {
		for field, msg := range validate.Struct(line) {
			errs["items."+strconv.Itoa(i)+"."+field] = msg
		}
	}
	return errs
}

// priceOrder builds an order from current product records. Repeated lines
// for one product are merged. Unknown products and quantities beyond stock
// come back as field errors.
func priceOrder(ctx context.Context, products *repositories.ProductRepository, userID string, in models.OrderInput) (models.Order, map[string]string, error) {
	qty := make(map[string]int, len(in.Items))
	var ids []string
	first := make(map[string]int, len(in.Items))
	for i, line := range in.Items {
		if _, seen := qty[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
			first[line.ProductID] = i
		}
		qty[line.ProductID] += line.Quantity
	}

	byID, err := products.FindMany(ctx, ids)
	if err != nil {
		return models.Order{}, nil, err
	}

	errs := map[string]string{}
	items := make([]models.OrderItem, 0, len(ids))
	priced := make([]models.CartItem, 0, len(ids))
	for _, id := range ids {
		key := "items." + strconv.Itoa(first[id])
		p, ok := byID[id]
		if !ok {
			errs[key+".product"] = "Product not found."
			continue
		}
		if qty[id] > p.Stock {
			errs[key+".quantity"] = stockMessage(p)
			continue
		}
		var image string
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty[id], Image: image,
		})
		priced = append(priced, models.CartItem{Product: p, Quantity: qty[id]})
	}
	if len(errs) > 0 {
		return models.Order{}, errs, nil
	}

	totals := models.Price(priced)
	return models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		Status:          models.StatusPending,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
	}, nil, nil
}

func stockMessage(p models.Product) string {
	if p.Stock <= 0 {
		return p.Name + " is out of stock."
	}
	return fmt.Sprintf("Only %d of %s left in stock.", p.Stock, p.Name)
}
