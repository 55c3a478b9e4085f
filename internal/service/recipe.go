package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/review"
	"github.com/pageza/recipeshare/backend/internal/types"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50

	maxTitleLength       = 100
	maxDescriptionLength = 500
	maxTimeMinutes       = 1440
)

// RecipeDetail is a recipe with its author, category and the counters shown
// on recipe cards.
type RecipeDetail struct {
	models.Recipe
	Author         *models.UserSummary `json:"author"`
	Category       *models.Category    `json:"category"`
	Rating         review.Aggregate    `json:"rating"`
	CommentsCount  int64               `json:"comments_count"`
	FavoritesCount int64               `json:"favorites_count"`
	IsFavorited    bool                `json:"is_favorited"`
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Recipes []RecipeDetail `json:"recipes"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// RecipeService handles recipe operations
type RecipeService struct {
	db               *gorm.DB
	embeddingService EmbeddingServiceInterface
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, embeddingService EmbeddingServiceInterface) *RecipeService {
	return &RecipeService{
		db:               db,
		embeddingService: embeddingService,
	}
}

// CreateRecipe validates req and stores it as a recipe owned by actorID.
func (s *RecipeService) CreateRecipe(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error) {
	if actorID == uuid.Nil {
		return nil, apperror.NewAuth("you must be signed in to create recipes")
	}
	recipe := models.Recipe{UserID: actorID}
	if err := s.applyRequest(ctx, &recipe, req); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, storeError(err, nil, "failed to create recipe")
	}
	log.Printf("[RecipeService] Created recipe %s for user %s", recipe.ID, actorID)
	return s.GetRecipe(ctx, recipe.ID, &actorID)
}

// GetRecipe returns one recipe with its counters. viewerID may be nil.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*RecipeDetail, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Preload("User").Preload("Category").First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, storeError(err, ErrRecipeNotFound, "failed to load recipe")
	}
	details, err := s.withStats(ctx, []models.Recipe{recipe}, viewerID)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// GetOwnedRecipe loads a recipe and checks that actorID may change it.
func (s *RecipeService) GetOwnedRecipe(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error) {
	return s.loadOwned(s.db.WithContext(ctx), actorID, id, "edit")
}

// UpdateRecipe replaces the recipe's fields. Only the owner may do this.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, id uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error) {
	recipe, err := s.loadOwned(s.db.WithContext(ctx), actorID, id, "edit")
	if err != nil {
		return nil, err
	}
	if err := s.applyRequest(ctx, recipe, req); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":        recipe.Title,
		"description":  recipe.Description,
		"ingredients":  recipe.Ingredients,
		"instructions": recipe.Instructions,
		"category_id":  recipe.CategoryID,
		"time_minutes": recipe.TimeMinutes,
		"image_url":    recipe.ImageURL,
		"embedding":    recipe.Embedding,
	}).Error
	if err != nil {
		return nil, storeError(err, nil, "failed to update recipe")
	}
	return s.GetRecipe(ctx, id, &actorID)
}

// SetRecipeImage records an uploaded image for the recipe.
func (s *RecipeService) SetRecipeImage(ctx context.Context, actorID, id uuid.UUID, url string) (*RecipeDetail, error) {
	if _, err := s.loadOwned(s.db.WithContext(ctx), actorID, id, "edit"); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Update("image_url", url).Error
	if err != nil {
		return nil, storeError(err, nil, "failed to update recipe image")
	}
	return s.GetRecipe(ctx, id, &actorID)
}

// DeleteRecipe removes the recipe with its comments and favorites.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadOwned(tx, actorID, id, "delete"); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return storeError(err, ErrRecipeNotFound, "failed to delete recipe")
	}
	log.Printf("[RecipeService] Deleted recipe %s", id)
	return nil
}

// ListRecipes returns a page of recipes, newest first. With a search query
// on PostgreSQL the matches are ranked by embedding distance instead.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter, viewerID *uuid.UUID) (*RecipePage, error) {
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Recipe{})
	if filter.CategoryID != nil {
		query = query.Where("recipes.category_id = ?", *filter.CategoryID)
	}
	if filter.CategorySlug != "" {
		query = query.Where("recipes.category_id IN (?)",
			db.Model(&models.Category{}).Select("id").Where("slug = ?", strings.ToLower(filter.CategorySlug)))
	}
	if filter.UserID != nil {
		query = query.Where("recipes.user_id = ?", *filter.UserID)
	}
	if filter.FavoritedBy != nil {
		query = query.Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?", *filter.FavoritedBy)
	}
	q := strings.TrimSpace(filter.Query)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(recipes.title) LIKE ? OR LOWER(COALESCE(recipes.description, '')) LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, storeError(err, nil, "failed to count recipes")
	}

	switch {
	case q != "" && database.IsPostgres(s.db):
		vec, err := s.embeddingService.GenerateEmbedding(q)
		if err != nil {
			return nil, apperror.NewInternal("failed to embed search query", err)
		}
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "recipes.embedding <-> ?", Vars: []interface{}{vec}},
		})
	case filter.FavoritedBy != nil:
		query = query.Order("favorites.created_at DESC")
	default:
		query = query.Order("recipes.created_at DESC").Order("recipes.id")
	}

	var recipes []models.Recipe
	err := query.Select("recipes.*").Preload("User").Preload("Category").
		Limit(limit).Offset(offset).Find(&recipes).Error
	if err != nil {
		return nil, storeError(err, nil, "failed to list recipes")
	}

	details, err := s.withStats(ctx, recipes, viewerID)
	if err != nil {
		return nil, err
	}
	return &RecipePage{Recipes: details, Total: total, Limit: limit, Offset: offset}, nil
}

// SimilarRecipes returns recipes close to id. Without vector search it falls
// back to the newest recipes in the same category.
func (s *RecipeService) SimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]RecipeDetail, error) {
	limit, _ = pageBounds(limit, 0)
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		return nil, storeError(err, ErrRecipeNotFound, "failed to load recipe")
	}

	query := db.Preload("User").Preload("Category").Where("id <> ?", id).Limit(limit)
	if database.IsPostgres(s.db) && recipe.Embedding != nil {
		query = query.Where("embedding IS NOT NULL").Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{*recipe.Embedding}},
		})
	} else {
		if recipe.CategoryID != nil {
			query = query.Where("category_id = ?", *recipe.CategoryID)
		}
		query = query.Order("created_at DESC")
	}

	var similar []models.Recipe
	if err := query.Find(&similar).Error; err != nil {
		return nil, storeError(err, nil, "failed to find similar recipes")
	}
	return s.withStats(ctx, similar, nil)
}

func (s *RecipeService) loadOwned(tx *gorm.DB, actorID, id uuid.UUID, verb string) (*models.Recipe, error) {
	if actorID == uuid.Nil {
		return nil, apperror.NewAuth("you must be signed in to " + verb + " recipes")
	}
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
		return nil, storeError(err, ErrRecipeNotFound, "failed to load recipe")
	}
	if !recipe.IsOwnedBy(actorID) {
		return nil, apperror.NewPermission("you can only " + verb + " your own recipes")
	}
	return &recipe, nil
}

// applyRequest validates req and copies it onto recipe, refreshing the embedding.
func (s *RecipeService) applyRequest(ctx context.Context, recipe *models.Recipe, req *types.RecipeRequest) error {
	title := strings.TrimSpace(req.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		return apperror.NewValidation("title is required")
	case n > maxTitleLength:
		return apperror.NewValidation(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}

	description := trimmedOrNil(req.Description)
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		return apperror.NewValidation(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}

	ingredients := models.StringList(req.Ingredients).Clean()
	if len(ingredients) == 0 {
		return apperror.NewValidation("at least one ingredient is required")
	}
	instructions := models.StringList(req.Instructions).Clean()
	if len(instructions) == 0 {
		return apperror.NewValidation("at least one instruction is required")
	}

	if req.TimeMinutes != nil && (*req.TimeMinutes < 1 || *req.TimeMinutes > maxTimeMinutes) {
		return apperror.NewValidation(fmt.Sprintf("time must be between 1 and %d minutes", maxTimeMinutes))
	}

	if req.CategoryID != nil {
		ok, err := categoryExists(s.db.WithContext(ctx), *req.CategoryID)
		if err != nil {
			return storeError(err, nil, "failed to check category")
		}
		if !ok {
			return apperror.NewValidation("category does not exist")
		}
	}

	recipe.Title = title
	recipe.Description = description
	recipe.Ingredients = ingredients
	recipe.Instructions = instructions
	recipe.TimeMinutes = req.TimeMinutes
	recipe.CategoryID = req.CategoryID
	recipe.ImageURL = trimmedOrNil(req.ImageURL)

	vec, err := s.embeddingService.GenerateEmbedding(recipeText(recipe))
	if err != nil {
		return apperror.NewInternal("failed to embed recipe", err)
	}
	recipe.Embedding = &vec
	return nil
}

type recipeCommentStats struct {
	RecipeID  uuid.UUID
	Comments  int64
	Reviews   int
	RatingSum float64
}

type recipeCount struct {
	RecipeID uuid.UUID
	Total    int64
}

// withStats attaches author, category, rating and counters to each recipe
// using one grouped query per counter.
func (s *RecipeService) withStats(ctx context.Context, recipes []models.Recipe, viewerID *uuid.UUID) ([]RecipeDetail, error) {
	details := make([]RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}
	db := s.db.WithContext(ctx)

	var commentStats []recipeCommentStats
	err := db.Model(&models.Comment{}).
		Select("recipe_id, COUNT(*) AS comments, COUNT(rating) AS reviews, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("recipe_id IN ?", ids).Group("recipe_id").Scan(&commentStats).Error
	if err != nil {
		return nil, storeError(err, nil, "failed to load comment stats")
	}
	byRecipe := make(map[uuid.UUID]recipeCommentStats, len(commentStats))
	for _, st := range commentStats {
		byRecipe[st.RecipeID] = st
	}

	var favCounts []recipeCount
	err = db.Model(&models.Favorite{}).Select("recipe_id, COUNT(*) AS total").
		Where("recipe_id IN ?", ids).Group("recipe_id").Scan(&favCounts).Error
	if err != nil {
		return nil, storeError(err, nil, "failed to load favorite counts")
	}
	favorites := make(map[uuid.UUID]int64, len(favCounts))
	for _, fc := range favCounts {
		favorites[fc.RecipeID] = fc.Total
	}

	favorited := map[uuid.UUID]bool{}
	if viewerID != nil && *viewerID != uuid.Nil {
		var mine []uuid.UUID
		err = db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id IN ?", *viewerID, ids).
			Pluck("recipe_id", &mine).Error
		if err != nil {
			return nil, storeError(err, nil, "failed to load favorites")
		}
		for _, id := range mine {
			favorited[id] = true
		}
	}

	for i, r := range recipes {
		st := byRecipe[r.ID]
		details[i] = RecipeDetail{
			Recipe:         r,
			Author:         r.User.Summary(),
			Category:       r.Category,
			Rating:         review.FromTotals(st.Reviews, st.RatingSum),
			CommentsCount:  st.Comments,
			FavoritesCount: favorites[r.ID],
			IsFavorited:    favorited[r.ID],
		}
	}
	return details, nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
