// Package payment abstracts the hosted payment widget used for card and UPI
// checkouts.
//
// The widget is opened with a gateway order created by the backend. On
// success it hands back the gateway's payment id and a signature over
// "orderId|paymentId", which the backend verifies before accepting the
// order.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sparkcrackers/storefront/app/models"
)

// ErrDismissed is returned when the shopper closes the widget without paying.
var ErrDismissed = errors.New("payment: checkout dismissed")

// Checkout is what the widget is opened with.
type Checkout struct {
	KeyID       string
	Order       models.PaymentOrder
	Description string
	Name        string
	Email       string
	Phone       string
}

// Gateway opens the hosted widget and blocks until the shopper pays,
// dismisses it, or ctx is done.
type Gateway interface {
	Open(ctx context.Context, c Checkout) (models.PaymentResult, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, c Checkout) (models.PaymentResult, error)

func (f GatewayFunc) Open(ctx context.Context, c Checkout) (models.PaymentResult, error) {
	return f(ctx, c)
}

// FailedError is a payment the widget reported as failed.
type FailedError struct {
	Code   string
	Reason string
}

func (e *FailedError) Error() string {
	if e.Reason == "" {
		return "Payment failed"
	}
	return "Payment failed: " + e.Reason
}

// Sign returns hex(HMAC-SHA256(orderID + "|" + paymentID, secret)).
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature in constant time.
func Verify(orderID, paymentID, signature, secret string) bool {
	want, err := hex.DecodeString(Sign(orderID, paymentID, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}

// NewOrderID and NewPaymentID mint gateway-style identifiers.
func NewOrderID() string   { return "order_" + shortID() }
func NewPaymentID() string { return "pay_" + shortID() }

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

// SandboxGateway approves every payment and signs it with Secret, the way
// the hosted widget does in test mode. Set Dismiss or Decline to exercise
// the failure paths.
type SandboxGateway struct {
	Secret  string
	Dismiss bool
	Decline string

	opened atomic.Int64
}

func NewSandbox(secret string) *SandboxGateway { return &SandboxGateway{Secret: secret} }

func (g *SandboxGateway) Open(ctx context.Context, c Checkout) (models.PaymentResult, error) {
	g.opened.Add(1)
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{}, err
	}
	if c.Order.OrderID == "" {
		return models.PaymentResult{}, fmt.Errorf("payment: checkout without gateway order")
	}
	if g.Dismiss {
		return models.PaymentResult{}, ErrDismissed
	}
	if g.Decline != "" {
		return models.PaymentResult{}, &FailedError{Code: "BAD_REQUEST_ERROR", Reason: g.Decline}
	}

	pid := NewPaymentID()
	return models.PaymentResult{
		GatewayOrderID:   c.Order.OrderID,
		GatewayPaymentID: pid,
		Signature:        Sign(c.Order.OrderID, pid, g.Secret),
	}, nil
}

// Opened returns how many times the widget was opened.
func (g *SandboxGateway) Opened() int { return int(g.opened.Load()) }
