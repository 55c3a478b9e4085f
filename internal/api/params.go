package api

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// fail hands err to the error middleware and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.NewValidation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, apperror.NewValidation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id. Routes using it sit behind
// AuthMiddleware, so a miss means the middleware was not installed.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		fail(c, apperror.NewAuth("authentication required"))
	}
	return id, ok
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + name)
	}
	return &id, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.NewValidation(name + " must be a non-negative integer")
	}
	return n, nil
}

// recipeFilter reads category_id, category, user_id, q, limit and offset.
func recipeFilter(c *gin.Context) (types.RecipeFilter, error) {
	var f types.RecipeFilter
	var err error
	if f.CategoryID, err = optionalUUIDQuery(c, "category_id"); err != nil {
		return f, err
	}
	if f.UserID, err = optionalUUIDQuery(c, "user_id"); err != nil {
		return f, err
	}
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		return f, err
	}
	f.CategorySlug = strings.TrimSpace(c.Query("category"))
	f.Query = c.Query("q")
	return f, nil
}

// readImage loads the multipart "image" field, refusing anything over the
// upload limit before reading it.
func readImage(c *gin.Context) ([]byte, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, apperror.NewValidation("image file is required"))
		return nil, false
	}
	if header.Size > service.MaxImageSize {
		fail(c, apperror.NewValidation("image must be at most 5MB"))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		fail(c, apperror.NewValidation("failed to read image"))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		fail(c, apperror.NewValidation("failed to read image"))
		return nil, false
	}
	return data, true
}
