package models

import "time"

// CartLine is the sandbox API's stored form of a cart line.
type CartLine struct {
	UserID    string `gorm:"primaryKey;size:36"`
	ProductID string `gorm:"primaryKey;size:36"`
	Quantity  int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WishlistEntry links a user to a saved product.
type WishlistEntry struct {
	UserID    string `gorm:"primaryKey;size:36"`
	ProductID string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
}

// PaymentIntent records a hosted-gateway order created for a user. The
// (UserID, IdempotencyKey) pair makes repeated create-order calls return the
// same gateway order; OrderID is set once the payment is verified.
type PaymentIntent struct {
	GatewayOrderID string    `gorm:"primaryKey;size:64"`
	UserID         string    `gorm:"size:36;not null;uniqueIndex:idx_intent_key"`
	IdempotencyKey string    `gorm:"size:64;uniqueIndex:idx_intent_key"`
	Amount         int64     `gorm:"not null"`
	Currency       string    `gorm:"size:3;not null"`
	Receipt        string    `gorm:"size:64"`
	OrderID        string    `gorm:"size:36"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentOrder returns the gateway order this intent stands for.
func (p PaymentIntent) PaymentOrder() PaymentOrder {
	return PaymentOrder{OrderID: p.GatewayOrderID, Amount: p.Amount, Currency: p.Currency, Receipt: p.Receipt}
}
