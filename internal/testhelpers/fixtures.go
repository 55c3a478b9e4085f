package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// TestPassword is the plain-text password of users made by CreateUser.
const TestPassword = "password123"

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateCategory inserts a category with the given slug.
func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// CreateRecipe inserts a minimal recipe owned by owner.
func CreateRecipe(t *testing.T, db *gorm.DB, owner *models.User, title string, categoryID *uuid.UUID) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		UserID:       owner.ID,
		Title:        title,
		Ingredients:  models.StringList{"1 cup flour", "2 eggs"},
		Instructions: models.StringList{"Mix", "Bake"},
		CategoryID:   categoryID,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
