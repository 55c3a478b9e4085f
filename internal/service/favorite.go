package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
)

// FavoriteService manages the (user, recipe) favorite pairs.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// AddFavorite favorites a recipe. A second call for the same pair returns
// ErrAlreadyFavorited and writes nothing.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Favorite, error) {
	if userID == uuid.Nil {
		return nil, apperror.NewAuth("you must be signed in to favorite recipes")
	}
	db := s.db.WithContext(ctx)

	var recipes int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipes).Error; err != nil {
		return nil, storeError(err, nil, "failed to load recipe")
	}
	if recipes == 0 {
		return nil, ErrRecipeNotFound
	}

	favorited, err := s.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if favorited {
		return nil, ErrAlreadyFavorited
	}

	favorite := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := db.Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFavorited
		}
		return nil, storeError(err, nil, "failed to add favorite")
	}
	log.Printf("[FavoriteService] User %s favorited recipe %s", userID, recipeID)
	return &favorite, nil
}

// RemoveFavorite unfavorites a recipe. Removing a missing favorite is a no-op.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperror.NewAuth("you must be signed in to favorite recipes")
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{}).Error
	return storeError(err, nil, "failed to remove favorite")
}

func (s *FavoriteService) IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	if err != nil {
		return false, storeError(err, nil, "failed to check favorite")
	}
	return count > 0, nil
}

func (s *FavoriteService) CountFavorites(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("recipe_id = ?", recipeID).Count(&count).Error
	if err != nil {
		return 0, storeError(err, nil, "failed to count favorites")
	}
	return count, nil
}
