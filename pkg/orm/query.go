// Package orm is the query helper the sandbox repositories build on. It
// keeps gorm's chaining but binds every query to a request context, maps
// gorm's not-found error to ErrNotFound and adds read-through caching:
//
//	var products []models.Product
//	err := orm.New(db).WithContext(ctx).
//	    Model(&models.Product{}).
//	    Where("category = ?", "rockets").
//	    Order("name").
//	    Cache(store, "products:rockets", time.Minute, &products)
package orm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/pkg/cache"
)

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = errors.New("orm: record not found")

type Query struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

// WithContext binds the query to ctx; cancelling ctx aborts it.
func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value string) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

// DB exposes the underlying handle for calls the helper does not wrap.
func (q *Query) DB() *gorm.DB { return q.db }

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	err := q.db.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error { return q.db.Create(v).Error }

func (q *Query) Save(v interface{}) error { return q.db.Save(v).Error }

// Updates applies a column map to the rows the query matches and returns how
// many changed.
func (q *Query) Updates(values map[string]interface{}) (int64, error) {
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

// Delete removes the rows the query matches.
func (q *Query) Delete(model interface{}) (int64, error) {
	res := q.db.Delete(model)
	return res.RowsAffected, res.Error
}

// Cache serves dest from store when key is present, otherwise runs the query
// and stores the result for ttl. A nil store always queries.
func (q *Query) Cache(store *cache.Store, key string, ttl time.Duration, dest interface{}) error {
	ctx := q.db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if store.Get(ctx, key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	_ = store.Set(ctx, key, dest, ttl)
	return nil
}

// Transaction runs fn inside a database transaction bound to ctx. Returning
// an error rolls back.
func (q *Query) Transaction(ctx context.Context, fn func(tx *Query) error) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}
