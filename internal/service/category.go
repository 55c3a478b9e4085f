package service

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
)

// CategoryService serves the category reference data
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// ListCategories returns every category ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storeError(err, nil, "failed to list categories")
	}
	return categories, nil
}

func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&category).Error
	if err != nil {
		return nil, storeError(err, ErrCategoryNotFound, "failed to load category")
	}
	return &category, nil
}

// SeedCategories inserts or refreshes categories keyed by slug and returns
// how many were written.
func (s *CategoryService) SeedCategories(ctx context.Context, categories []models.Category) (int, error) {
	for i := range categories {
		if categories[i].Slug == "" || categories[i].Name == "" {
			return 0, apperror.NewValidation("category name and slug are required")
		}
	}
	if len(categories) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "emoji", "description"}),
	}).Create(&categories).Error
	if err != nil {
		return 0, storeError(err, nil, "failed to seed categories")
	}
	log.Printf("[CategoryService] Seeded %d categories", len(categories))
	return len(categories), nil
}

func categoryExists(tx *gorm.DB, id interface{}) (bool, error) {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
