package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// ProfileHandler serves the signed-in user's own account pages and the
// public user pages.
type ProfileHandler struct {
	profileService service.IProfileService
	recipeService  service.IRecipeService
	imageService   service.IImageService
	authService    service.IAuthService
}

func NewProfileHandler(profileService service.IProfileService, recipeService service.IRecipeService, imageService service.IImageService, authService service.IAuthService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		recipeService:  recipeService,
		imageService:   imageService,
		authService:    authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile", middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/password", h.ChangePassword)
		profile.POST("/avatar", h.UploadAvatar)
		profile.GET("/recipes", h.ListMyRecipes)
		profile.GET("/favorites", h.ListFavorites)
	}
	router.GET("/users/:username", h.GetPublicProfile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, ok := readImage(c)
	if !ok {
		return
	}
	url, err := h.imageService.UploadAvatar(c.Request.Context(), userID, data)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.profileService.SetAvatar(c.Request.Context(), userID, url)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) ListMyRecipes(c *gin.Context) {
	h.listFor(c, func(f *types.RecipeFilter, userID *uuid.UUID) { f.UserID = userID })
}

func (h *ProfileHandler) ListFavorites(c *gin.Context) {
	h.listFor(c, func(f *types.RecipeFilter, userID *uuid.UUID) { f.FavoritedBy = userID })
}

func (h *ProfileHandler) listFor(c *gin.Context, scope func(*types.RecipeFilter, *uuid.UUID)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter, err := recipeFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	scope(&filter, &userID)
	page, err := h.recipeService.ListRecipes(c.Request.Context(), filter, &userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.profileService.GetPublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
