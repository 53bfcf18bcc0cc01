package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/orm"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

// OrderTopic is the hub topic carrying status events for one order.
func OrderTopic(orderID string) string { return "order:" + orderID }

func orderEvent(o models.Order) []byte {
	b, _ := json.Marshal(models.OrderEvent{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		At:            o.UpdatedAt,
	})
	return b
}

type OrderController struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	hub      *ws.Hub
}

func NewOrderController(orders *repositories.OrderRepository, products *repositories.ProductRepository, hub *ws.Hub) *OrderController {
	return &OrderController{orders: orders, products: products, hub: hub}
}

// Index handles GET /orders: the caller's orders, or every order for an
// admin.
func (oc *OrderController) Index(c *ctx.Context) {
	userID := c.UserID()
	if c.Role() == models.RoleAdmin {
		userID = ""
	}
	orders, err := oc.orders.ForUser(c.Context(), userID)
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	if order, ok := oc.visible(c); ok {
		c.OK(order)
	}
}

// Store handles POST /orders for cash on delivery. Online methods are
// placed by PaymentController.Verify.
func (oc *OrderController) Store(c *ctx.Context) {
	var in models.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	if errs := checkOrderInput(in); len(errs) > 0 {
		c.Invalid(errs)
		return
	}
	if in.PaymentMethod != models.PaymentCOD {
		c.Error(http.StatusBadRequest, "Online payments must be completed through the payment gateway")
		return
	}

	order, errs, err := priceOrder(c.Context(), oc.products, c.UserID(), in)
	if err != nil {
		c.ServerError(err)
		return
	}
	if len(errs) > 0 {
		c.Invalid(errs)
		return
	}

	if !placeOrder(c, oc.orders, &order, nil) {
		return
	}
	oc.hub.Publish(OrderTopic(order.ID), orderEvent(order))
	c.Created(order)
}

// Cancel handles PUT /orders/{id}/cancel.
func (oc *OrderController) Cancel(c *ctx.Context) {
	order, ok := oc.visible(c)
	if !ok {
		return
	}
	if !order.Status.CanTransitionTo(models.StatusCancelled) {
		c.Error(http.StatusBadRequest, "Order can no longer be cancelled")
		return
	}
	oc.transition(c, order, models.StatusCancelled)
}

// UpdateStatus handles PUT /orders/{id}/status (admin).
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	var in models.StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, ok := oc.visible(c)
	if !ok {
		return
	}
	if !order.Status.CanTransitionTo(in.Status) {
		c.Error(http.StatusBadRequest, "Cannot move order from "+string(order.Status)+" to "+string(in.Status))
		return
	}
	oc.transition(c, order, in.Status)
}

// Live handles GET /orders/{id}/live: a websocket that receives the current
// status and then every change.
func (oc *OrderController) Live(c *ctx.Context) {
	order, ok := oc.visible(c)
	if !ok {
		return
	}
	ws.Upgrade(c.W, c.R, oc.hub, OrderTopic(order.ID), orderEvent(order))
}

func (oc *OrderController) transition(c *ctx.Context, order models.Order, next models.OrderStatus) {
	err := oc.orders.UpdateStatus(c.Context(), &order, next)
	if errors.Is(err, repositories.ErrStaleStatus) {
		c.Error(http.StatusConflict, "Order was updated meanwhile, please retry")
		return
	}
	if err != nil {
		c.ServerError(err)
		return
	}

	logger.WithCtx(c.Context()).Info("orders: status changed", "order_id", order.ID, "status", order.Status)
	oc.hub.Publish(OrderTopic(order.ID), orderEvent(order))
	c.OK(order)
}

// visible loads the {id} order when the caller owns it or is an admin.
// Other users get the same 404 as a missing order.
func (oc *OrderController) visible(c *ctx.Context) (models.Order, bool) {
	order, err := oc.orders.Find(c.Context(), c.Param("id"))
	if err == nil && order.UserID != c.UserID() && c.Role() != models.RoleAdmin {
		err = orm.ErrNotFound
	}
	if errors.Is(err, orm.ErrNotFound) {
		c.NotFound("Order not found")
		return order, false
	}
	if err != nil {
		c.ServerError(err)
		return order, false
	}
	return order, true
}

// placeOrder stores order and writes the error response when that fails.
func placeOrder(c *ctx.Context, orders *repositories.OrderRepository, order *models.Order, intent *models.PaymentIntent) bool {
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now

	err := orders.Place(c.Context(), order, intent)
	var stock *repositories.OutOfStockError
	switch {
	case err == nil:
		logger.WithCtx(c.Context()).Info("orders: placed",
			"order_id", order.ID, "method", order.PaymentMethod, "total", order.Total)
		return true
	case errors.As(err, &stock):
		c.Error(http.StatusConflict, stock.Error())
	default:
		c.ServerError(err)
	}
	return false
}
