package models

// PaymentOrder is a hosted-gateway order. Amount is in paise.
type PaymentOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// PaymentResult is what the gateway widget hands back on success.
type PaymentResult struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

// VerifyPaymentInput is the body of POST /payments/verify.
type VerifyPaymentInput struct {
	GatewayOrderID   string     `json:"gatewayOrderId"   validate:"required"`
	GatewayPaymentID string     `json:"gatewayPaymentId" validate:"required"`
	Signature        string     `json:"signature"        validate:"required"`
	OrderData        OrderInput `json:"orderData"`
}

// VerifyPaymentResponse is the body returned by POST /payments/verify.
type VerifyPaymentResponse struct {
	OrderID string `json:"orderId"`
}
