package services

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/metrics"
	"github.com/sparkcrackers/storefront/pkg/validate"
)

// Step is a checkout stage.
type Step int

const (
	StepContact Step = iota + 1
	StepShipping
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	}
	return "unknown"
}

type ContactForm struct {
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type ShippingForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"    validate:"required"`
	City      string `json:"city"      validate:"required"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"   validate:"required"`
	Landmark  string `json:"landmark"`
}

// Outcome is a placed order and where the shopper goes next.
type Outcome struct {
	OrderID    string
	Method     models.PaymentMethod
	RedirectTo string
}

type pendingPayment struct {
	fingerprint    string
	idempotencyKey string
	order          models.PaymentOrder
}

// CheckoutFlow walks contact → shipping → payment and places the order.
// It lives in memory for one checkout attempt.
type CheckoutFlow struct {
	cart    *CartService
	client  *api.Client
	session *Session
	gateway payment.Gateway
	keyID   string

	mu         sync.Mutex
	step       Step
	contact    ContactForm
	shipping   ShippingForm
	method     models.PaymentMethod
	err        error
	outcome    *Outcome
	pending    *pendingPayment
	submitting bool
}

// NewCheckoutFlow starts a checkout for the current cart. An empty cart
// returns ErrEmptyCart and no flow.
func NewCheckoutFlow(cart *CartService, client *api.Client, session *Session, gateway payment.Gateway) (*CheckoutFlow, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	f := &CheckoutFlow{
		cart:    cart,
		client:  client,
		session: session,
		gateway: gateway,
		keyID:   config.PaymentKeyID(),
		step:    StepContact,
		method:  models.PaymentCOD,
	}
	if u, ok := session.User(); ok {
		f.contact = ContactForm{Email: u.Email, Phone: u.Phone}
		f.shipping = ShippingForm{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Street:    u.Address.Street,
			City:      u.Address.City,
			State:     u.Address.State,
			Pincode:   u.Address.Pincode,
			Landmark:  u.Address.Landmark,
		}
	}
	return f, nil
}

func (f *CheckoutFlow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *CheckoutFlow) Contact() ContactForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contact
}

func (f *CheckoutFlow) Shipping() ShippingForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

func (f *CheckoutFlow) PaymentMethod() models.PaymentMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

func (f *CheckoutFlow) SetContact(c ContactForm) {
	f.mu.Lock()
	f.contact = c
	f.mu.Unlock()
}

func (f *CheckoutFlow) SetShipping(s ShippingForm) {
	f.mu.Lock()
	f.shipping = s
	f.mu.Unlock()
}

func (f *CheckoutFlow) SetPaymentMethod(m models.PaymentMethod) error {
	if !m.Valid() {
		return &ValidationError{Fields: map[string]string{"paymentMethod": "The selected paymentMethod is invalid."}}
	}
	f.mu.Lock()
	f.method = m
	f.mu.Unlock()
	return nil
}

// NextStep validates the current step and advances. It is a no-op on the
// payment step.
func (f *CheckoutFlow) NextStep() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs map[string]string
	switch f.step {
	case StepContact:
		errs = validate.Struct(f.contact)
	case StepShipping:
		errs = validate.Struct(f.shipping)
	default:
		return nil
	}
	if err := validationError(errs); err != nil {
		f.err = err
		return err
	}
	f.err = nil
	f.step++
	return nil
}

// PrevStep goes back one step and clears the error.
func (f *CheckoutFlow) PrevStep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
	if f.step > StepContact {
		f.step--
	}
}

func (f *CheckoutFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Loading reports whether PlaceOrder is in flight.
func (f *CheckoutFlow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Outcome returns the placed order, or nil.
func (f *CheckoutFlow) Outcome() *Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == nil {
		return nil
	}
	o := *f.outcome
	return &o
}

// PlaceOrder submits the order with the chosen payment method. Errors are
// recorded on the flow and it stays on the payment step so the shopper can
// retry. Only one submit runs at a time; an overlapping call gets
// ErrCheckoutInProgress and sends nothing.
func (f *CheckoutFlow) PlaceOrder(ctx context.Context) (*Outcome, error) {
	f.mu.Lock()
	if f.outcome != nil {
		o := *f.outcome
		f.mu.Unlock()
		return &o, nil
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if f.step != StepPayment {
		f.mu.Unlock()
		return nil, ErrNotOnPaymentStep
	}
	f.submitting, f.err = true, nil
	method := f.method
	input := f.orderInputLocked()
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if len(input.Items) == 0 {
		return nil, f.failed(method, ErrEmptyCart)
	}

	var (
		orderID string
		err     error
	)
	if method.Online() {
		orderID, err = f.payOnline(ctx, input)
	} else {
		orderID, err = f.payOnDelivery(ctx, input)
	}
	if err != nil {
		return nil, f.failed(method, err)
	}

	if cerr := f.cart.Clear(ctx); cerr != nil {
		logger.WithCtx(ctx).Warn("checkout: clear cart after order", "order_id", orderID, "error", cerr)
		f.cart.reset()
	}

	out := &Outcome{OrderID: orderID, Method: method, RedirectTo: "/orders/" + orderID}
	f.mu.Lock()
	f.outcome, f.pending = out, nil
	f.mu.Unlock()

	metrics.CheckoutOutcomes.WithLabelValues(string(method), "placed").Inc()
	logger.WithCtx(ctx).Info("checkout: order placed", "order_id", orderID, "method", method)
	o := *out
	return &o, nil
}

func (f *CheckoutFlow) failed(method models.PaymentMethod, err error) error {
	result := "failed"
	if errors.Is(err, payment.ErrDismissed) {
		result = "dismissed"
		err = &api.Error{Message: "Payment cancelled", Err: err}
	}
	metrics.CheckoutOutcomes.WithLabelValues(string(method), result).Inc()

	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	return err
}

func (f *CheckoutFlow) payOnDelivery(ctx context.Context, input models.OrderInput) (string, error) {
	var order models.Order
	if err := f.client.Post(ctx, "/orders", input, "orders.create", "Failed to place order", &order); err != nil {
		return "", err
	}
	return order.ID, nil
}

func (f *CheckoutFlow) payOnline(ctx context.Context, input models.OrderInput) (string, error) {
	po, err := f.gatewayOrder(ctx, input)
	if err != nil {
		return "", err
	}

	res, err := f.gateway.Open(ctx, payment.Checkout{
		KeyID:       f.keyID,
		Order:       po,
		Description: "Order payment",
		Name:        input.ShippingAddress.FirstName + " " + input.ShippingAddress.LastName,
		Email:       input.ShippingAddress.Email,
		Phone:       input.ShippingAddress.Phone,
	})
	if err != nil {
		return "", err
	}

	var verified models.VerifyPaymentResponse
	body := models.VerifyPaymentInput{
		GatewayOrderID:   res.GatewayOrderID,
		GatewayPaymentID: res.GatewayPaymentID,
		Signature:        res.Signature,
		OrderData:        input,
	}
	if err := f.client.Post(ctx, "/payments/verify", body, "payments.verify", "Payment verification failed", &verified); err != nil {
		return "", err
	}
	return verified.OrderID, nil
}

// gatewayOrder returns the gateway order for the current cart, creating it
// only when there is none yet or the cart changed since it was created.
func (f *CheckoutFlow) gatewayOrder(ctx context.Context, input models.OrderInput) (models.PaymentOrder, error) {
	fp := f.cart.Fingerprint()

	f.mu.Lock()
	p := f.pending
	if p != nil && p.fingerprint == fp && p.order.OrderID != "" {
		f.mu.Unlock()
		return p.order, nil
	}
	if p == nil || p.fingerprint != fp {
		p = &pendingPayment{fingerprint: fp, idempotencyKey: uuid.NewString()}
		f.pending = p
	}
	key := p.idempotencyKey
	f.mu.Unlock()

	var po models.PaymentOrder
	err := f.client.Do(ctx, api.Call{
		Method:   http.MethodPost,
		Path:     "/payments/create-order",
		Header:   map[string]string{"Idempotency-Key": key},
		Body:     input,
		Endpoint: "payments.create_order",
		Fallback: "Failed to create payment order",
	}, &po)
	if err != nil {
		return models.PaymentOrder{}, err
	}

	f.mu.Lock()
	if f.pending != nil && f.pending.idempotencyKey == key {
		f.pending.order = po
	}
	f.mu.Unlock()
	return po, nil
}

func (f *CheckoutFlow) orderInputLocked() models.OrderInput {
	items := f.cart.Items()
	lines := make([]models.OrderLineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.OrderLineInput{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return models.OrderInput{
		Items: lines,
		ShippingAddress: models.ShippingAddress{
			FirstName: f.shipping.FirstName,
			LastName:  f.shipping.LastName,
			Email:     f.contact.Email,
			Phone:     f.contact.Phone,
			Street:    f.shipping.Street,
			City:      f.shipping.City,
			State:     f.shipping.State,
			Pincode:   f.shipping.Pincode,
			Landmark:  f.shipping.Landmark,
		},
		PaymentMethod: f.method,
	}
}
