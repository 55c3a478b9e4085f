package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest carries only the fields being changed.
type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// RecipeRequest is the full recipe form, used for both create and update.
type RecipeRequest struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CategoryID   *uuid.UUID `json:"category_id"`
	TimeMinutes  *int       `json:"time_minutes"`
	ImageURL     *string    `json:"image_url"`
}

// CommentRequest is a new comment or an edit. A null rating means a plain comment.
type CommentRequest struct {
	Content string `json:"content"`
	Rating  *int   `json:"rating"`
}

// RecipeFilter narrows a recipe listing. Zero values mean "no filter".
type RecipeFilter struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	UserID       *uuid.UUID
	FavoritedBy  *uuid.UUID
	Query        string
	Limit        int
	Offset       int
}
