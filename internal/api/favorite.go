package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// FavoriteStatus is the favorite state of one recipe for the caller.
type FavoriteStatus struct {
	Favorited      bool  `json:"favorited"`
	FavoritesCount int64 `json:"favorites_count"`
}

type FavoriteHandler struct {
	favoriteService service.IFavoriteService
	authService     middleware.TokenValidator
}

func NewFavoriteHandler(favoriteService service.IFavoriteService, authService middleware.TokenValidator) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, authService: authService}
}

func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorite := router.Group("/recipes/:id/favorite", middleware.AuthMiddleware(h.authService))
	{
		favorite.GET("", h.GetFavorite)
		favorite.POST("", h.AddFavorite)
		favorite.DELETE("", h.RemoveFavorite)
	}
}

func (h *FavoriteHandler) GetFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	status, err := h.status(c, userID, recipeID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// AddFavorite answers 409 already_favorited on a repeat.
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.favoriteService.AddFavorite(c.Request.Context(), userID, recipeID); err != nil {
		fail(c, err)
		return
	}
	status, err := h.status(c, userID, recipeID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteService.RemoveFavorite(c.Request.Context(), userID, recipeID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FavoriteHandler) status(c *gin.Context, userID, recipeID uuid.UUID) (*FavoriteStatus, error) {
	favorited, err := h.favoriteService.IsFavorited(c.Request.Context(), userID, recipeID)
	if err != nil {
		return nil, err
	}
	count, err := h.favoriteService.CountFavorites(c.Request.Context(), recipeID)
	if err != nil {
		return nil, err
	}
	return &FavoriteStatus{Favorited: favorited, FavoritesCount: count}, nil
}
