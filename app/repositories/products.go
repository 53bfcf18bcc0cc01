package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// ProductRepository reads the catalog. Listings are cached for ttl when a
// cache store is configured.
type ProductRepository struct {
	db    *gorm.DB
	cache *cache.Store
	ttl   time.Duration
}

func NewProductRepository(db *gorm.DB, store *cache.Store, ttl time.Duration) *ProductRepository {
	return &ProductRepository{db: db, cache: store, ttl: ttl}
}

func (r *ProductRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.Product{})
}

// List returns the catalog narrowed by category (exact) and search (case
// insensitive substring of name or description), ordered by name.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	q := r.query(ctx)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	products := []models.Product{}
	key := "storefront:products:" + f.Category + "|" + strings.ToLower(f.Search)
	if err := q.Order("name").Cache(r.cache, key, r.ttl, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Find(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Where("id = ?", id).First(&p)
	return p, err
}

// FindMany loads the given products keyed by id. Unknown ids are absent.
func (r *ProductRepository) FindMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.query(ctx).Where("id IN ?", ids).Get(&products); err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Create inserts a product, assigning an id when missing.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return orm.New(r.db).WithContext(ctx).Create(p)
}
