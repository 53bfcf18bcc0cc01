package seeders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

// catalogNS derives stable product ids from product names so seeded ids
// survive a reseed.
var catalogNS = uuid.MustParse("6f1c2b1e-8d0a-4f52-9a57-3c1f0f6d2a10")

// ProductID returns the id the seeded product called name gets.
func ProductID(name string) string {
	return uuid.NewSHA1(catalogNS, []byte(name)).String()
}

// Catalog is the demo product list.
var Catalog = []models.Product{
	{
		Name: "Electric Sparklers 10 cm", Category: "sparklers",
		Description: "Box of 10 smokeless sparklers, about 40 seconds each.",
		Price: 120, OriginalPrice: 150, Stock: 500,
		Images: []string{"/images/products/sparklers-10cm.jpg"},
	},
	{
		Name: "Colour Sparklers 30 cm", Category: "sparklers",
		Description: "Box of 5 long sparklers in red, green and gold.",
		Price: 240, OriginalPrice: 300, Stock: 300,
		Images: []string{"/images/products/sparklers-30cm.jpg"},
	},
	{
		Name: "Ground Chakkar Deluxe", Category: "ground",
		Description: "Box of 10 spinning wheels with a crackling finish.",
		Price: 180, OriginalPrice: 220, Stock: 400,
		Images: []string{"/images/products/chakkar-deluxe.jpg"},
	},
	{
		Name: "Flower Pot Giant", Category: "ground",
		Description: "Box of 5 fountains rising about two metres.",
		Price: 350, OriginalPrice: 420, Stock: 250,
		Images: []string{"/images/products/flower-pot-giant.jpg"},
	},
	{
		Name: "Whistling Rocket", Category: "rockets",
		Description: "Box of 10 rockets with a whistle and a star burst.",
		Price: 450, OriginalPrice: 500, Stock: 150,
		Images: []string{"/images/products/whistling-rocket.jpg"},
	},
	{
		Name: "Sky Shot 12", Category: "aerial",
		Description: "Cake of 12 multicolour aerial shots.",
		Price: 899, OriginalPrice: 1099, Stock: 80,
		Images: []string{"/images/products/sky-shot-12.jpg"},
	},
	{
		Name: "Sky Shot 60 Grand Finale", Category: "aerial",
		Description: "Cake of 60 shots ending in a gold crown.",
		Price: 3499, OriginalPrice: 3999, Stock: 20,
		Images: []string{"/images/products/sky-shot-60.jpg"},
	},
	{
		Name: "Family Gift Box", Category: "gift-boxes",
		Description: "Assorted 35-item box for a family celebration.",
		Price: 1499, OriginalPrice: 1899, Stock: 60,
		Images: []string{"/images/products/family-gift-box.jpg"},
	},
}

// SeedProducts inserts every Catalog product that is not stored yet.
func SeedProducts(db *gorm.DB) error {
	ctx := context.Background()
	repo := repositories.NewProductRepository(db, nil, 0)
	for _, p := range Catalog {
		p.ID = ProductID(p.Name)
		_, err := repo.Find(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, orm.ErrNotFound) {
			return err
		}
		if err := repo.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
