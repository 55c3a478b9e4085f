package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/service"
)

// ImageHandler serves signed links to stored images for deployments whose
// bucket is not publicly readable.
type ImageHandler struct {
	imageService service.IImageService
}

func NewImageHandler(imageService service.IImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/images/*key", h.GetImage)
}

// GetImage redirects to a presigned URL for the object at key.
func (h *ImageHandler) GetImage(c *gin.Context) {
	image, err := h.imageService.PresignImage(c.Request.Context(), c.Param("key"))
	if err != nil {
		fail(c, err)
		return
	}
	// Browsers may reuse the redirect until shortly before the signature expires.
	maxAge := int(time.Until(image.ExpiresAt).Seconds()) - 60
	if maxAge < 0 {
		maxAge = 0
	}
	c.Header("Cache-Control", "private, max-age="+strconv.Itoa(maxAge))
	c.Redirect(http.StatusFound, image.URL)
}
