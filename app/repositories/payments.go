package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// PaymentRepository stores hosted-gateway orders so create-order can be
// replayed and verify can be checked against what was charged.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.PaymentIntent{})
}

// ByKey returns the intent a user created with key, if any.
func (r *PaymentRepository) ByKey(ctx context.Context, userID, key string) (models.PaymentIntent, bool, error) {
	var p models.PaymentIntent
	err := r.query(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key).First(&p)
	if errors.Is(err, orm.ErrNotFound) {
		return p, false, nil
	}
	return p, err == nil, err
}

func (r *PaymentRepository) Find(ctx context.Context, gatewayOrderID string) (models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := r.query(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&p)
	return p, err
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentIntent) error {
	return orm.New(r.db).WithContext(ctx).Create(p)
}
