package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
	imageService  service.IImageService
	authService   middleware.TokenValidator
	createLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, imageService service.IImageService, authService middleware.TokenValidator, createLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		imageService:  imageService,
		authService:   authService,
		createLimiter: createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.authService), h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuth(h.authService), h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		if h.createLimiter != nil {
			recipes.POST("", auth, h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		} else {
			recipes.POST("", auth, h.CreateRecipe)
		}
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/image", auth, h.UploadImage)
	}
}

// ListRecipes serves the feed, category pages and search.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := recipeFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.recipeService.ListRecipes(c.Request.Context(), filter, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		fail(c, err)
		return
	}
	recipes, err := h.recipeService.SimilarRecipes(c.Request.Context(), id, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores a multipart "image" and sets it as the recipe photo.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	// Ownership is checked before anything is uploaded.
	if _, err := h.recipeService.GetOwnedRecipe(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	data, ok := readImage(c)
	if !ok {
		return
	}
	url, err := h.imageService.UploadRecipeImage(c.Request.Context(), userID, data)
	if err != nil {
		fail(c, err)
		return
	}
	recipe, err := h.recipeService.SetRecipeImage(c.Request.Context(), userID, id, url)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
