package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// CartRepository stores one cart per user as CartLine rows.
type CartRepository struct {
	db       *gorm.DB
	products *ProductRepository
}

func NewCartRepository(db *gorm.DB, products *ProductRepository) *CartRepository {
	return &CartRepository{db: db, products: products}
}

func (r *CartRepository) query(ctx context.Context, userID string) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.CartLine{}).Where("user_id = ?", userID)
}

// Items returns the user's cart in insertion order with current product
// data. Lines whose product no longer exists are skipped.
func (r *CartRepository) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	var lines []models.CartLine
	if err := r.query(ctx, userID).Order("created_at, product_id").Get(&lines); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := r.products.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		items = append(items, models.CartItem{Product: p, Quantity: l.Quantity})
	}
	return items, nil
}

// Quantity returns how many of productID the cart holds, 0 when absent.
func (r *CartRepository) Quantity(ctx context.Context, userID, productID string) (int, error) {
	var line models.CartLine
	err := r.query(ctx, userID).Where("product_id = ?", productID).First(&line)
	if errors.Is(err, orm.ErrNotFound) {
		return 0, nil
	}
	return line.Quantity, err
}

// Put sets the quantity of a line, inserting it when absent.
func (r *CartRepository) Put(ctx context.Context, userID, productID string, qty int) error {
	now := time.Now()
	line := models.CartLine{UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now}
	return orm.New(r.db).WithContext(ctx).DB().
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&line).Error
}

// Remove deletes one line and reports whether it existed.
func (r *CartRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	n, err := r.query(ctx, userID).Where("product_id = ?", productID).Delete(&models.CartLine{})
	return n > 0, err
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.query(ctx, userID).Delete(&models.CartLine{})
	return err
}
