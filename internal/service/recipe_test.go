package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/review"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
	"github.com/pageza/recipeshare/backend/internal/types"
)

func validRecipeRequest() *types.RecipeRequest {
	return &types.RecipeRequest{
		Title:        "  Tomato Soup ",
		Description:  strPtr("Warm and simple"),
		Ingredients:  []string{"4 tomatoes", "  ", "1 onion"},
		Instructions: []string{"Chop", "Simmer"},
		TimeMinutes:  intPtr(30),
	}
}

func TestCreateRecipe(t *testing.T) {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "chef")
	category := testhelpers.CreateCategory(t, db, "Soups", "soups")
	svc := NewRecipeService(db, NewHashingEmbeddingService())

	req := validRecipeRequest()
	req.CategoryID = &category.ID
	detail, err := svc.CreateRecipe(context.Background(), owner.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Tomato Soup", detail.Title)
	assert.Equal(t, models.StringList{"4 tomatoes", "1 onion"}, detail.Ingredients)
	require.NotNil(t, detail.Author)
	assert.Equal(t, "chef", detail.Author.Username)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "soups", detail.Category.Slug)
	assert.Equal(t, review.Aggregate{}, detail.Rating)
	assert.Zero(t, detail.CommentsCount)
	require.NotNil(t, detail.Embedding)
	assert.Len(t, detail.Embedding.Slice(), models.EmbeddingDimensions)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "chef")
	svc := NewRecipeService(db, NewHashingEmbeddingService())

	tests := []struct {
		name   string
		mutate func(r *types.RecipeRequest)
	}{
		{"empty title", func(r *types.RecipeRequest) { r.Title = "   " }},
		{"long title", func(r *types.RecipeRequest) { r.Title = strings.Repeat("a", 101) }},
		{"long description", func(r *types.RecipeRequest) { r.Description = strPtr(strings.Repeat("d", 501)) }},
		{"no ingredients", func(r *types.RecipeRequest) { r.Ingredients = []string{" "} }},
		{"no instructions", func(r *types.RecipeRequest) { r.Instructions = nil }},
		{"zero time", func(r *types.RecipeRequest) { r.TimeMinutes = intPtr(0) }},
		{"too long", func(r *types.RecipeRequest) { r.TimeMinutes = intPtr(1441) }},
		{"unknown category", func(r *types.RecipeRequest) { id := uuid.New(); r.CategoryID = &id }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRecipeRequest()
			tt.mutate(req)
			_, err := svc.CreateRecipe(context.Background(), owner.ID, req)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := svc.CreateRecipe(context.Background(), uuid.Nil, validRecipeRequest())
	assert.True(t, apperror.IsAuth(err))
}

func TestUpdateAndDeleteRecipeRequireOwner(t *testing.T) {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "chef")
	other := testhelpers.CreateUser(t, db, "other")
	svc := NewRecipeService(db, NewHashingEmbeddingService())
	ctx := context.Background()

	detail, err := svc.CreateRecipe(ctx, owner.ID, validRecipeRequest())
	require.NoError(t, err)

	req := validRecipeRequest()
	req.Title = "Better Soup"
	_, err = svc.UpdateRecipe(ctx, other.ID, detail.ID, req)
	assert.True(t, apperror.IsPermission(err))
	assert.True(t, apperror.IsPermission(svc.DeleteRecipe(ctx, other.ID, detail.ID)))

	updated, err := svc.UpdateRecipe(ctx, owner.ID, detail.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", updated.Title)

	_, err = svc.GetRecipe(ctx, uuid.New(), nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteRecipeRemovesCommentsAndFavorites(t *testing.T) {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	recipe := testhelpers.CreateRecipe(t, db, owner, "Stew", nil)
	ctx := context.Background()

	_, err := NewCommentService(db).CreateComment(ctx, fan.ID, recipe.ID, &types.CommentRequest{Content: "yum", Rating: intPtr(5)})
	require.NoError(t, err)
	_, err = NewFavoriteService(db).AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	svc := NewRecipeService(db, NewHashingEmbeddingService())
	require.NoError(t, svc.DeleteRecipe(ctx, owner.ID, recipe.ID))

	var comments, favorites int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Favorite{}).Count(&favorites).Error)
	assert.Zero(t, comments)
	assert.Zero(t, favorites)

	assert.True(t, apperror.IsNotFound(svc.DeleteRecipe(ctx, owner.ID, recipe.ID)))
}

func TestRecipeStats(t *testing.T) {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "chef")
	u1 := testhelpers.CreateUser(t, db, "u1")
	u2 := testhelpers.CreateUser(t, db, "u2")
	recipe := testhelpers.CreateRecipe(t, db, owner, "Bread", nil)
	ctx := context.Background()

	comments := NewCommentService(db)
	comments.now = stepClock()
	for _, c := range []struct {
		user   uuid.UUID
		rating *int
	}{{u1.ID, intPtr(5)}, {u2.ID, intPtr(4)}, {u2.ID, nil}, {owner.ID, intPtr(5)}} {
		_, err := comments.CreateComment(ctx, c.user, recipe.ID, &types.CommentRequest{Content: "note", Rating: c.rating})
		require.NoError(t, err)
	}
	_, err := NewFavoriteService(db).AddFavorite(ctx, u1.ID, recipe.ID)
	require.NoError(t, err)

	svc := NewRecipeService(db, NewHashingEmbeddingService())
	detail, err := svc.GetRecipe(ctx, recipe.ID, &u1.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Aggregate{Count: 2, Mean: 4.5}, detail.Rating)
	assert.Equal(t, int64(4), detail.CommentsCount)
	assert.Equal(t, int64(1), detail.FavoritesCount)
	assert.True(t, detail.IsFavorited)

	anon, err := svc.GetRecipe(ctx, recipe.ID, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
}

func TestListRecipesFilters(t *testing.T) {
	db := newTestDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	soups := testhelpers.CreateCategory(t, db, "Soups", "soups")
	svc := NewRecipeService(db, NewHashingEmbeddingService())
	ctx := context.Background()

	soup := testhelpers.CreateRecipe(t, db, alice, "Tomato Soup", &soups.ID)
	testhelpers.CreateRecipe(t, db, alice, "Pancakes", nil)
	bread := testhelpers.CreateRecipe(t, db, bob, "Bread", nil)
	_, err := NewFavoriteService(db).AddFavorite(ctx, bob.ID, soup.ID)
	require.NoError(t, err)

	page, err := svc.ListRecipes(ctx, types.RecipeFilter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, DefaultPageSize, page.Limit)

	page, err = svc.ListRecipes(ctx, types.RecipeFilter{CategorySlug: "SOUPS"}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, soup.ID, page.Recipes[0].ID)

	page, err = svc.ListRecipes(ctx, types.RecipeFilter{UserID: &bob.ID}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, bread.ID, page.Recipes[0].ID)

	page, err = svc.ListRecipes(ctx, types.RecipeFilter{FavoritedBy: &bob.ID}, &bob.ID)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, soup.ID, page.Recipes[0].ID)
	assert.True(t, page.Recipes[0].IsFavorited)

	page, err = svc.ListRecipes(ctx, types.RecipeFilter{Query: "pancake"}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Pancakes", page.Recipes[0].Title)

	page, err = svc.ListRecipes(ctx, types.RecipeFilter{Limit: 2, Offset: 2}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Recipes, 1)
	assert.Equal(t, int64(3), page.Total)
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, -5)
	assert.Equal(t, DefaultPageSize, limit)
	assert.Zero(t, offset)

	limit, _ = pageBounds(500, 0)
	assert.Equal(t, MaxPageSize, limit)
}

func TestSimilarRecipesFallsBackToCategory(t *testing.T) {
	db := newTestDB(t)
	chef := testhelpers.CreateUser(t, db, "chef")
	soups := testhelpers.CreateCategory(t, db, "Soups", "soups")
	svc := NewRecipeService(db, NewHashingEmbeddingService())
	ctx := context.Background()

	base := testhelpers.CreateRecipe(t, db, chef, "Tomato Soup", &soups.ID)
	other := testhelpers.CreateRecipe(t, db, chef, "Leek Soup", &soups.ID)
	testhelpers.CreateRecipe(t, db, chef, "Pancakes", nil)

	similar, err := svc.SimilarRecipes(ctx, base.ID, 5)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, other.ID, similar[0].ID)
}
