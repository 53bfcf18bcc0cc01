package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether s may move to next. Forward moves along
// pending → confirmed → processing → shipped → delivered may skip states;
// backward moves and self-transitions are refused; cancelled is reachable
// from every non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !s.Valid() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to > from
}

// PaymentMethod is how the shopper pays.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCOD  PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentUPI || m == PaymentCOD
}

// Online reports whether the method goes through the hosted gateway.
func (m PaymentMethod) Online() bool { return m == PaymentCard || m == PaymentUPI }

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// ShippingAddress is the delivery contact captured at checkout.
type ShippingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required"`
	Street    string `json:"street"    validate:"required"`
	City      string `json:"city"      validate:"required"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"   validate:"required"`
	Landmark  string `json:"landmark,omitempty"`
}

// OrderItem is a priced line frozen at order time.
type OrderItem struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Order is an accepted purchase.
type Order struct {
	ID               string          `gorm:"primaryKey;size:36"        json:"_id"`
	UserID           string          `gorm:"size:36;not null;index"    json:"user"`
	Items            []OrderItem     `gorm:"serializer:json"           json:"items"`
	ShippingAddress  ShippingAddress `gorm:"serializer:json"           json:"shippingAddress"`
	Status           OrderStatus     `gorm:"size:20;default:pending"   json:"status"`
	PaymentMethod    PaymentMethod   `gorm:"size:10"                   json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `gorm:"size:10;default:pending"   json:"paymentStatus"`
	Subtotal         float64         `json:"subtotal"`
	Shipping         float64         `json:"shipping"`
	Total            float64         `json:"total"`
	GatewayOrderID   string          `gorm:"size:64;index"             json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string          `gorm:"size:64"                   json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// OrderLineInput references a product in an order request; the server
// prices it.
type OrderLineInput struct {
	ProductID string `json:"product"  validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// OrderInput is the body of POST /orders and POST /payments/create-order.
type OrderInput struct {
	Items           []OrderLineInput `json:"items"           validate:"required"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"   validate:"required,in=card upi cod"`
}

// StatusInput is the body of PUT /orders/{id}/status.
type StatusInput struct {
	Status OrderStatus `json:"status" validate:"required,in=pending confirmed processing shipped delivered cancelled"`
}

// OrderEvent is pushed to /orders/{id}/live subscribers.
type OrderEvent struct {
	OrderID       string        `json:"orderId"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	At            time.Time     `json:"at"`
}
