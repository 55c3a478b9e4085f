package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	ClaimsKey   = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			WriteError(c, err)
			return
		}
		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			WriteError(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through. A bad token is treated as no token.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if token, err := bearerToken(c); err == nil {
				if claims, err := validator.ValidateToken(c.Request.Context(), token); err == nil {
					setClaims(c, claims)
				}
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// ViewerID is UserID as a pointer, nil for anonymous callers.
func ViewerID(c *gin.Context) *uuid.UUID {
	if id, ok := UserID(c); ok {
		return &id
	}
	return nil
}

// Claims returns the validated token claims.
func Claims(c *gin.Context) *types.TokenClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.TokenClaims)
	return claims
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", apperror.NewAuth("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperror.NewAuth("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setClaims(c *gin.Context, claims *types.TokenClaims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(ClaimsKey, claims)
}
