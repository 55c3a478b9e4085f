package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

const maxBioLength = 500

// PublicProfile is what other users see of an account.
type PublicProfile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FullName     *string   `json:"full_name"`
	AvatarURL    *string   `json:"avatar_url"`
	Bio          *string   `json:"bio"`
	RecipesCount int64     `json:"recipes_count"`
	JoinedAt     time.Time `json:"joined_at"`
}

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, storeError(err, ErrUserNotFound, "failed to load profile")
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req. Empty strings clear the
// optional fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}

	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		var count int64
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", username, userID).Count(&count).Error
		if err != nil {
			return nil, storeError(err, nil, "failed to check username")
		}
		if count > 0 {
			return nil, apperror.NewConflict("username is already taken", nil).WithCode("username_taken")
		}
		updates["username"] = username
	}
	if req.FullName != nil {
		updates["full_name"] = trimmedOrNil(req.FullName)
	}
	if req.Bio != nil {
		if len(*req.Bio) > maxBioLength {
			return nil, apperror.NewValidation("bio must be at most 500 characters")
		}
		updates["bio"] = trimmedOrNil(req.Bio)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = trimmedOrNil(req.AvatarURL)
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.NewConflict("username is already taken", err).WithCode("username_taken")
		}
		if err != nil {
			return nil, storeError(err, nil, "failed to update profile")
		}
		log.Printf("[ProfileService] Updated profile for user %s", userID)
	}
	return s.GetProfile(ctx, userID)
}

// SetAvatar stores an uploaded avatar address.
func (s *ProfileService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error) {
	return s.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{AvatarURL: &url})
}

func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "failed to load profile")
	}

	var recipes int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", user.ID).Count(&recipes).Error; err != nil {
		return nil, storeError(err, nil, "failed to count recipes")
	}

	return &PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		RecipesCount: recipes,
		JoinedAt:     user.CreatedAt,
	}, nil
}
