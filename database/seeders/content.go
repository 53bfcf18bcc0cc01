package seeders

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/app/services"
)

// SeedContent stores the built-in content defaults for every contentId the
// database does not have yet. Edited sections are left alone.
func SeedContent(db *gorm.DB) error {
	ctx := context.Background()
	repo := repositories.NewContentRepository(db)

	defaults, err := services.DefaultContent()
	if err != nil {
		return err
	}
	stored, err := repo.All(ctx)
	if err != nil {
		return err
	}
	for _, s := range stored {
		delete(defaults, s.ContentID)
	}

	missing := make([]models.ContentSection, 0, len(defaults))
	for _, s := range defaults {
		missing = append(missing, s)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].ContentID < missing[j].ContentID })
	return repo.Upsert(ctx, missing)
}
