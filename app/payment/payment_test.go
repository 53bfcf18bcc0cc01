package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
)

func TestSignVerify(t *testing.T) {
	sig := Sign("order_1", "pay_1", "secret")
	assert.Len(t, sig, 64)
	assert.True(t, Verify("order_1", "pay_1", sig, "secret"))
	assert.False(t, Verify("order_1", "pay_2", sig, "secret"))
	assert.False(t, Verify("order_1", "pay_1", sig, "other"))
	assert.False(t, Verify("order_1", "pay_1", "zz-not-hex", "secret"))
}

func TestSandboxGateway_Approves(t *testing.T) {
	g := NewSandbox("secret")
	res, err := g.Open(context.Background(), Checkout{Order: models.PaymentOrder{OrderID: "order_9", Amount: 100}})
	require.NoError(t, err)

	assert.Equal(t, "order_9", res.GatewayOrderID)
	assert.True(t, Verify(res.GatewayOrderID, res.GatewayPaymentID, res.Signature, "secret"))
	assert.Equal(t, 1, g.Opened())
}

func TestSandboxGateway_FailurePaths(t *testing.T) {
	co := Checkout{Order: models.PaymentOrder{OrderID: "order_9"}}

	_, err := (&SandboxGateway{Dismiss: true}).Open(context.Background(), co)
	assert.ErrorIs(t, err, ErrDismissed)

	_, err = (&SandboxGateway{Decline: "card declined"}).Open(context.Background(), co)
	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Payment failed: card declined", err.Error())

	_, err = NewSandbox("s").Open(context.Background(), Checkout{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSandbox("s").Open(ctx, co)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIDs(t *testing.T) {
	assert.Regexp(t, `^order_[0-9a-f]{14}$`, NewOrderID())
	assert.Regexp(t, `^pay_[0-9a-f]{14}$`, NewPaymentID())
}
