package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

type WishlistRepository struct {
	db       *gorm.DB
	products *ProductRepository
}

func NewWishlistRepository(db *gorm.DB, products *ProductRepository) *WishlistRepository {
	return &WishlistRepository{db: db, products: products}
}

// Products returns the saved products, oldest first.
func (r *WishlistRepository) Products(ctx context.Context, userID string) ([]models.Product, error) {
	var entries []models.WishlistEntry
	err := orm.New(r.db).WithContext(ctx).Model(&models.WishlistEntry{}).
		Where("user_id = ?", userID).
		Order("created_at, product_id").
		Get(&entries)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	byID, err := r.products.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		if p, ok := byID[e.ProductID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Add saves productID; saving it twice is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	entry := models.WishlistEntry{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	return orm.New(r.db).WithContext(ctx).DB().
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := orm.New(r.db).WithContext(ctx).Model(&models.WishlistEntry{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistEntry{})
	return err
}
