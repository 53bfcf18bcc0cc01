package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

var (
	// ErrIntentUsed is returned by Place when the payment intent already
	// produced an order.
	ErrIntentUsed = errors.New("repositories: payment intent already used")
	// ErrStaleStatus is returned by UpdateStatus when the order moved on
	// since it was read.
	ErrStaleStatus = errors.New("repositories: order status changed concurrently")
)

// OutOfStockError names the product that could not cover an order line.
type OutOfStockError struct {
	ProductID string
	Name      string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.Name)
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.Order{})
}

// Place stores order in one transaction: stock is decremented for every
// line, the user's cart is emptied and, for online payments, intent is
// marked as used.
func (r *OrderRepository) Place(ctx context.Context, order *models.Order, intent *models.PaymentIntent) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	return orm.New(r.db).Transaction(ctx, func(tx *orm.Query) error {
		for _, it := range order.Items {
			n, err := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", it.Quantity),
					"updated_at": time.Now(),
				})
			if err != nil {
				return err
			}
			if n == 0 {
				return &OutOfStockError{ProductID: it.ProductID, Name: it.Name}
			}
		}

		if intent != nil {
			n, err := tx.Model(&models.PaymentIntent{}).
				Where("gateway_order_id = ? AND (order_id = '' OR order_id IS NULL)", intent.GatewayOrderID).
				Updates(map[string]interface{}{"order_id": order.ID, "updated_at": time.Now()})
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrIntentUsed
			}
		}

		if err := tx.Create(order); err != nil {
			return err
		}
		_, err := tx.Model(&models.CartLine{}).Where("user_id = ?", order.UserID).Delete(&models.CartLine{})
		return err
	})
}

func (r *OrderRepository) Find(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := r.query(ctx).Where("id = ?", id).First(&o)
	return o, err
}

// ForUser lists a user's orders, newest first. An empty userID lists every
// order.
func (r *OrderRepository) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	q := r.query(ctx)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	orders := []models.Order{}
	err := q.Order("created_at DESC").Get(&orders)
	return orders, err
}

// UpdateStatus moves order to next, guarded on the status it was read with.
// Cancelling returns the ordered quantities to stock.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, next models.OrderStatus) error {
	from := order.Status
	now := time.Now()

	err := orm.New(r.db).Transaction(ctx, func(tx *orm.Query) error {
		n, err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Updates(map[string]interface{}{"status": next, "updated_at": now})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStaleStatus
		}
		if next != models.StatusCancelled {
			return nil
		}
		for _, it := range order.Items {
			if _, err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				Updates(map[string]interface{}{"stock": gorm.Expr("stock + ?", it.Quantity)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Status = next
	order.UpdatedAt = now
	return nil
}
