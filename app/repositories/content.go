package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// All returns every stored section ordered by contentId.
func (r *ContentRepository) All(ctx context.Context) ([]models.ContentSection, error) {
	sections := []models.ContentSection{}
	err := orm.New(r.db).WithContext(ctx).Model(&models.ContentSection{}).Order("content_id").Get(&sections)
	return sections, err
}

// Upsert writes sections keyed by contentId in one transaction. A section
// whose contentId is new is inserted with a fresh id.
func (r *ContentRepository) Upsert(ctx context.Context, sections []models.ContentSection) error {
	return orm.New(r.db).Transaction(ctx, func(tx *orm.Query) error {
		for _, s := range sections {
			var existing models.ContentSection
			err := tx.Model(&models.ContentSection{}).Where("content_id = ?", s.ContentID).First(&existing)
			switch {
			case errors.Is(err, orm.ErrNotFound):
				s.ID = uuid.NewString()
				s.UpdatedAt = time.Now()
				if s.Type == "" {
					s.Type = models.KindText
				}
				if err := tx.Create(&s); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				existing.Title = s.Title
				existing.Content = s.Content
				if s.Type != "" {
					existing.Type = s.Type
				}
				existing.Metadata = s.Metadata
				existing.UpdatedAt = time.Now()
				if err := tx.Save(&existing); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
