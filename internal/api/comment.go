package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// CommentHandler serves the comment thread under each recipe. Every write
// answers with the recipe's fresh aggregate so the page can re-render
// without another round trip.
type CommentHandler struct {
	commentService service.ICommentService
	authService    middleware.TokenValidator
	createLimiter  *middleware.RateLimiter
}

func NewCommentHandler(commentService service.ICommentService, authService middleware.TokenValidator, createLimiter *middleware.RateLimiter) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		authService:    authService,
		createLimiter:  createLimiter,
	}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	router.GET("/recipes/:id/comments", middleware.OptionalAuth(h.authService), h.ListComments)
	if h.createLimiter != nil {
		router.POST("/recipes/:id/comments", auth, h.createLimiter.RateLimitMiddleware(), h.CreateComment)
	} else {
		router.POST("/recipes/:id/comments", auth, h.CreateComment)
	}

	comments := router.Group("/comments", auth)
	{
		comments.PUT("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	thread, err := h.commentService.ListComments(c.Request.Context(), recipeID, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.commentService.CreateComment(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.commentService.UpdateComment(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
