package service

import (
	"context"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// EmbeddingServiceInterface produces the vectors used for similarity search.
type EmbeddingServiceInterface interface {
	GenerateEmbedding(text string) (pgvector.Vector, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error)
	GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error)
}

// ICategoryService defines the interface for category lookups
type ICategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	SeedCategories(ctx context.Context, categories []models.Category) (int, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error)
	GetRecipe(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*RecipeDetail, error)
	UpdateRecipe(ctx context.Context, actorID, id uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error)
	DeleteRecipe(ctx context.Context, actorID, id uuid.UUID) error
	ListRecipes(ctx context.Context, filter types.RecipeFilter, viewerID *uuid.UUID) (*RecipePage, error)
	SimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]RecipeDetail, error)
	GetOwnedRecipe(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error)
	SetRecipeImage(ctx context.Context, actorID, id uuid.UUID, url string) (*RecipeDetail, error)
}

// ICommentService defines the interface for comments and reviews
type ICommentService interface {
	ListComments(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*CommentThread, error)
	CreateComment(ctx context.Context, actorID, recipeID uuid.UUID, req *types.CommentRequest) (*CommentOutcome, error)
	UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, req *types.CommentRequest) (*CommentOutcome, error)
	DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) (*CommentOutcome, error)
}

// IFavoriteService defines the interface for favorites
type IFavoriteService interface {
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	CountFavorites(ctx context.Context, recipeID uuid.UUID) (int64, error)
}

// IImageService uploads user images to object storage
type IImageService interface {
	UploadRecipeImage(ctx context.Context, userID uuid.UUID, data []byte) (string, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte) (string, error)
	PresignImage(ctx context.Context, key string) (*PresignedImage, error)
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ IProfileService  = (*ProfileService)(nil)
	_ ICategoryService = (*CategoryService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ ICommentService  = (*CommentService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ IImageService    = (*ImageService)(nil)

	_ EmbeddingServiceInterface = (*HashingEmbeddingService)(nil)
	_ SessionStore              = (*RedisSessionStore)(nil)
	_ SessionStore              = (*MemorySessionStore)(nil)
	_ ObjectPresigner           = (*config.S3Config)(nil)
)
