package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

// OrderService reads the shopper's orders and follows their status.
type OrderService struct {
	client  *api.Client
	session *Session
}

func NewOrderService(client *api.Client, session *Session) *OrderService {
	return &OrderService{client: client, session: session}
}

func (o *OrderService) List(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := o.client.Get(ctx, "/orders", "orders.list", "Failed to fetch orders", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}

func (o *OrderService) Get(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := o.client.Get(ctx, "/orders/"+url.PathEscape(id), "orders.show", "Failed to fetch order", &order)
	return order, err
}

// Cancel cancels an order. It refuses locally when the order's current
// status can no longer move to cancelled.
func (o *OrderService) Cancel(ctx context.Context, id string) (models.Order, error) {
	current, err := o.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !current.Status.CanTransitionTo(models.StatusCancelled) {
		return current, ErrNotCancellable
	}

	var order models.Order
	err = o.client.Put(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, "orders.cancel", "Failed to cancel order", &order)
	return order, err
}

// Watch streams status events for order id to fn until fn returns false,
// the order reaches a terminal status, the server closes the stream or ctx
// is done. Cancellation returns ctx.Err().
func (o *OrderService) Watch(ctx context.Context, id string, fn func(models.OrderEvent) bool) error {
	target, err := o.client.WebsocketURL("/orders/" + url.PathEscape(id) + "/live")
	if err != nil {
		return err
	}

	err = ws.Subscribe(ctx, target, o.client.AuthHeader(), func(msg []byte) bool {
		var ev models.OrderEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			logger.WithCtx(ctx).Warn("orders: bad status event", "order_id", id, "error", err)
			return true
		}
		return fn(ev) && !ev.Status.IsTerminal()
	})

	var dial *ws.DialError
	if errors.As(err, &dial) {
		if dial.Status == http.StatusUnauthorized {
			o.session.ForceClear(ctx)
		}
		return &api.Error{Status: dial.Status, Message: "Failed to follow order", Err: err}
	}
	return err
}
