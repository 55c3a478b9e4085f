package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// Services are the dependencies of the HTTP handlers.
type Services struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Auth     service.IAuthService
	Profile  service.IProfileService
	Category service.ICategoryService
	Recipe   service.IRecipeService
	Comment  service.ICommentService
	Favorite service.IFavoriteService
	Image    service.IImageService
}

// NewServices builds every service on db. redisClient may be nil; image
// uploads report storage unavailable when images is nil.
func NewServices(db *gorm.DB, redisClient *redis.Client, images service.IImageService, jwtSecret string, tokenTTL time.Duration) *Services {
	var sessions service.SessionStore
	if redisClient != nil {
		sessions = service.NewRedisSessionStore(redisClient)
	}
	if images == nil {
		images = service.NewImageService(nil)
	}
	return &Services{
		DB:       db,
		Redis:    redisClient,
		Auth:     service.NewAuthService(db, sessions, jwtSecret, tokenTTL),
		Profile:  service.NewProfileService(db),
		Category: service.NewCategoryService(db),
		Recipe:   service.NewRecipeService(db, service.NewHashingEmbeddingService()),
		Comment:  service.NewCommentService(db),
		Favorite: service.NewFavoriteService(db),
		Image:    images,
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc *Services) {
	router.GET("/health", healthCheck(svc))

	recipeLimiter := middleware.NewRecipeCreationRateLimiter(svc.Redis)
	commentLimiter := middleware.NewCommentRateLimiter(svc.Redis)

	v1 := router.Group("/api/v1")
	NewAuthHandler(svc.Auth).RegisterRoutes(v1)
	NewCategoryHandler(svc.Category).RegisterRoutes(v1)
	NewRecipeHandler(svc.Recipe, svc.Image, svc.Auth, recipeLimiter).RegisterRoutes(v1)
	NewCommentHandler(svc.Comment, svc.Auth, commentLimiter).RegisterRoutes(v1)
	NewFavoriteHandler(svc.Favorite, svc.Auth).RegisterRoutes(v1)
	NewProfileHandler(svc.Profile, svc.Recipe, svc.Image, svc.Auth).RegisterRoutes(v1)
	NewImageHandler(svc.Image).RegisterRoutes(v1)
}

// healthCheck reports database and Redis reachability.
func healthCheck(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}
		if err := database.HealthCheck(ctx, svc.DB); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if svc.Redis != nil {
			checks["redis"] = "ok"
			if err := svc.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"version": Version,
			"checks":  checks,
		})
	}
}

// NewRouter builds the gin engine with the shared middleware and every route.
func NewRouter(svc *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.ErrorHandler())
	RegisterRoutes(router, svc)
	return router
}
