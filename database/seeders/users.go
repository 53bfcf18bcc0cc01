package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/pkg/auth"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// SeedAdmin creates the admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
func SeedAdmin(db *gorm.DB) error {
	ctx := context.Background()
	users := repositories.NewUserRepository(db)

	email := config.Get("ADMIN_EMAIL", "admin@sparkcrackers.test")
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, orm.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return err
	}
	return users.Create(ctx, &models.User{
		FirstName: "Store",
		LastName:  "Admin",
		Email:     email,
		Role:      models.RoleAdmin,
		Password:  hash,
	})
}
