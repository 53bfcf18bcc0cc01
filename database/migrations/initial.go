package migrations

import (
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/migration"
)

func init() {
	migration.Register("20250101000100_create_users_table", table(&models.User{}))
	migration.Register("20250101000200_create_products_table", table(&models.Product{}))
	migration.Register("20250101000300_create_cart_lines_table", table(&models.CartLine{}))
	migration.Register("20250101000400_create_wishlist_entries_table", table(&models.WishlistEntry{}))
	migration.Register("20250101000500_create_orders_table", table(&models.Order{}))
	migration.Register("20250101000600_create_payment_intents_table", table(&models.PaymentIntent{}))
	migration.Register("20250101000700_create_content_sections_table", table(&models.ContentSection{}))
}

// createTable migrates one model up and drops its table down.
type createTable struct {
	model interface{}
}

func table(model interface{}) *createTable { return &createTable{model: model} }

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.model)
}
