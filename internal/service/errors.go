package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

var (
	// ErrAlreadyFavorited is returned when the user has already favorited the recipe.
	ErrAlreadyFavorited = apperror.NewConflict("recipe already favorited", nil).WithCode("already_favorited")
	// ErrReviewConflict is returned when another session changed the user's review concurrently.
	ErrReviewConflict = apperror.NewConflict("your review was changed in another session, reload and try again", nil).WithCode("review_conflict")

	ErrRecipeNotFound   = apperror.NewNotFound("recipe not found")
	ErrCategoryNotFound = apperror.NewNotFound("category not found")
	ErrUserNotFound     = apperror.NewNotFound("user not found")
)

// storeError converts a gorm error into the application taxonomy. Errors that
// already carry a kind pass through untouched.
func storeError(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperror.NewTransient(op, err)
}
