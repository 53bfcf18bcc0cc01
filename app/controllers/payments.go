package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/orm"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

// IdempotencyHeader names the request header that makes create-order
// replayable.
const IdempotencyHeader = "Idempotency-Key"

// PaymentController plays the merchant backend of the hosted gateway:
// it issues gateway orders and verifies the widget's signed result.
type PaymentController struct {
	payments *repositories.PaymentRepository
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	hub      *ws.Hub
	secret   string
}

func NewPaymentController(
	payments *repositories.PaymentRepository,
	orders *repositories.OrderRepository,
	products *repositories.ProductRepository,
	hub *ws.Hub,
	secret string,
) *PaymentController {
	return &PaymentController{payments: payments, orders: orders, products: products, hub: hub, secret: secret}
}

// CreateOrder handles POST /payments/create-order. The amount is priced
// from the catalog; a repeated Idempotency-Key returns the first order.
func (pc *PaymentController) CreateOrder(c *ctx.Context) {
	var in models.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	if errs := checkOrderInput(in); len(errs) > 0 {
		c.Invalid(errs)
		return
	}
	if !in.PaymentMethod.Online() {
		c.Error(http.StatusBadRequest, "Cash on delivery orders do not need a payment order")
		return
	}

	key := strings.TrimSpace(c.Header(IdempotencyHeader))
	if key == "" {
		key = uuid.NewString()
	} else if len(key) > 64 {
		c.Invalid(map[string]string{IdempotencyHeader: "The Idempotency-Key may not be greater than 64 characters."})
		return
	}

	existing, found, err := pc.payments.ByKey(c.Context(), c.UserID(), key)
	if err != nil {
		c.ServerError(err)
		return
	}
	if found {
		c.OK(existing.PaymentOrder())
		return
	}

	order, errs, err := priceOrder(c.Context(), pc.products, c.UserID(), in)
	if err != nil {
		c.ServerError(err)
		return
	}
	if len(errs) > 0 {
		c.Invalid(errs)
		return
	}

	gatewayID := payment.NewOrderID()
	intent := models.PaymentIntent{
		GatewayOrderID: gatewayID,
		UserID:         c.UserID(),
		IdempotencyKey: key,
		Amount:         models.ToPaise(order.Total),
		Currency:       "INR",
		Receipt:        "rcpt_" + strings.TrimPrefix(gatewayID, "order_"),
	}
	if err := pc.payments.Create(c.Context(), &intent); err != nil {
		c.ServerError(err)
		return
	}

	logger.WithCtx(c.Context()).Info("payments: gateway order created",
		"gateway_order_id", intent.GatewayOrderID, "amount", intent.Amount)
	c.OK(intent.PaymentOrder())
}

// Verify handles POST /payments/verify. A valid signature places the order
// as paid; verifying the same gateway order again returns the same order id.
func (pc *PaymentController) Verify(c *ctx.Context) {
	var in models.VerifyPaymentInput
	if !c.BindJSON(&in) {
		return
	}

	intent, err := pc.payments.Find(c.Context(), in.GatewayOrderID)
	if err == nil && intent.UserID != c.UserID() {
		err = orm.ErrNotFound
	}
	if errors.Is(err, orm.ErrNotFound) {
		c.NotFound("Payment order not found")
		return
	}
	if err != nil {
		c.ServerError(err)
		return
	}

	if !payment.Verify(in.GatewayOrderID, in.GatewayPaymentID, in.Signature, pc.secret) {
		logger.WithCtx(c.Context()).Warn("payments: signature mismatch", "gateway_order_id", in.GatewayOrderID)
		c.Error(http.StatusBadRequest, "Payment verification failed")
		return
	}
	if intent.OrderID != "" {
		c.OK(models.VerifyPaymentResponse{OrderID: intent.OrderID})
		return
	}

	if errs := checkOrderInput(in.OrderData); len(errs) > 0 {
		c.Invalid(prefixed("orderData.", errs))
		return
	}
	if !in.OrderData.PaymentMethod.Online() {
		c.Error(http.StatusBadRequest, "Cash on delivery orders do not need a payment order")
		return
	}
	order, errs, err := priceOrder(c.Context(), pc.products, c.UserID(), in.OrderData)
	if err != nil {
		c.ServerError(err)
		return
	}
	if len(errs) > 0 {
		c.Invalid(prefixed("orderData.", errs))
		return
	}
	if models.ToPaise(order.Total) != intent.Amount {
		c.Error(http.StatusBadRequest, "Order total changed since payment, please contact support")
		return
	}

	order.Status = models.StatusConfirmed
	order.PaymentStatus = models.PaymentPaid
	order.GatewayOrderID = in.GatewayOrderID
	order.GatewayPaymentID = in.GatewayPaymentID

	err = pc.orders.Place(c.Context(), &order, &intent)
	if errors.Is(err, repositories.ErrIntentUsed) {
		// a concurrent verify won; answer with its order
		if again, ferr := pc.payments.Find(c.Context(), intent.GatewayOrderID); ferr == nil && again.OrderID != "" {
			c.OK(models.VerifyPaymentResponse{OrderID: again.OrderID})
			return
		}
	}
	if err != nil {
		var stock *repositories.OutOfStockError
		if errors.As(err, &stock) {
			c.Error(http.StatusConflict, stock.Error())
			return
		}
		c.ServerError(err)
		return
	}

	logger.WithCtx(c.Context()).Info("payments: verified",
		"order_id", order.ID, "gateway_order_id", order.GatewayOrderID)
	pc.hub.Publish(OrderTopic(order.ID), orderEvent(order))
	c.OK(models.VerifyPaymentResponse{OrderID: order.ID})
}

func prefixed(prefix string, errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[prefix+k] = v
	}
	return out
}
