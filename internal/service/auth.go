package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

const minPasswordLength = 6

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

	errInvalidCredentials = apperror.NewAuth("invalid credentials")
	errInvalidToken       = apperror.NewAuth("invalid token")
)

type AuthService struct {
	db        *gorm.DB
	sessions  SessionStore
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, sessions SessionStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}
	return &AuthService{
		db:        db,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateUsername(username); err != nil {
		return nil, "", err
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", storeError(err, nil, "failed to check email")
	}
	if count > 0 {
		return nil, "", apperror.NewConflict("user already exists", nil).WithCode("email_taken")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, "", storeError(err, nil, "failed to check username")
	}
	if count > 0 {
		return nil, "", apperror.NewConflict("username is already taken", nil).WithCode("username_taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperror.NewInternal("failed to hash password", err)
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FullName:     trimmedOrNil(req.FullName),
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperror.NewConflict("user already exists", err)
		}
		return nil, "", storeError(err, nil, "failed to create user")
	}

	token, _, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[AuthService] Registered user %s (%s)", user.ID, user.Username)
	return &user, token, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errInvalidCredentials
	}
	if err != nil {
		return nil, "", storeError(err, nil, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errInvalidCredentials
	}

	token, _, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return errInvalidToken
	}
	ttl := s.tokenTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperror.NewTransient("failed to revoke session", err)
	}
	log.Printf("[AuthService] User %s logged out", claims.UserID)
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return storeError(err, ErrUserNotFound, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperror.NewAuth("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal("failed to hash password", err)
	}
	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", string(hashed)).Error
	return storeError(err, nil, "failed to update password")
}

// GenerateToken signs a token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, *types.TokenClaims, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, apperror.NewInternal("failed to sign token", err)
	}
	return signed, claims, nil
}

// ValidateToken parses tokenString and rejects expired or revoked tokens.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == uuid.Nil {
		return nil, errInvalidToken
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("[AuthService] Revocation check failed, accepting token: %v", err)
	} else if revoked {
		return nil, apperror.NewAuth("token has been revoked")
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperror.NewValidation("username must be 3-30 characters of lowercase letters, digits or underscores")
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
