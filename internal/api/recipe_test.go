package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestRecipeCRUD(t *testing.T) {
	a := newTestAPI(t)
	ownerToken, ownerID := a.register("chef")
	otherToken, _ := a.register("other")
	category := testhelpers.CreateCategory(t, a.db, "Breads", "breads")

	w := a.do(http.MethodPost, "/api/v1/recipes", ownerToken, gin.H{
		"title":        "Sourdough",
		"description":  "Slow and tangy",
		"ingredients":  []string{"flour", "water", "salt"},
		"instructions": []string{"mix", "wait", "bake"},
		"category_id":  category.ID,
		"time_minutes": 240,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	recipeID := created["id"].(string)
	assert.Equal(t, ownerID, created["author"].(map[string]interface{})["id"])
	assert.Equal(t, "breads", created["category"].(map[string]interface{})["slug"])
	assert.NotContains(t, w.Body.String(), "embedding")

	w = a.do(http.MethodPost, "/api/v1/recipes", ownerToken, gin.H{"title": "", "ingredients": []string{"x"}, "instructions": []string{"y"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	update := gin.H{"title": "Better Sourdough", "ingredients": []string{"flour"}, "instructions": []string{"bake"}}
	w = a.do(http.MethodPut, "/api/v1/recipes/"+recipeID, otherToken, update)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPut, "/api/v1/recipes/"+recipeID, ownerToken, update)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Better Sourdough", decode(t, w)["title"])

	w = a.do(http.MethodGet, "/api/v1/recipes?category=breads", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"], "update cleared the category")

	w = a.do(http.MethodGet, "/api/v1/recipes?user_id="+ownerID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = a.do(http.MethodGet, "/api/v1/recipes?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(http.MethodGet, "/api/v1/recipes?category_id=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/api/v1/recipes/"+recipeID, otherToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/recipes/"+recipeID, ownerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil).Code)
}

func TestRecipeImageUpload(t *testing.T) {
	a := newTestAPI(t)
	ownerToken, ownerID := a.register("chef")
	otherToken, _ := a.register("other")
	recipeID := a.createRecipe(ownerToken, "Pizza")
	path := "/api/v1/recipes/" + recipeID + "/image"

	w := a.upload(path, otherToken, pngBytes)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, a.bucket.keys)

	w = a.upload(path, ownerToken, []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.upload(path, ownerToken, pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imageURL := decode(t, w)["image_url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "https://cdn.example.com/recipe-images/"+ownerID+"-"))
	assert.True(t, strings.HasSuffix(imageURL, ".png"))
	require.Len(t, a.bucket.keys, 1)
}

func TestSignedImageRedirect(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register("chef")
	require.Equal(t, http.StatusOK, a.upload("/api/v1/profile/avatar", token, pngBytes).Code)
	require.Len(t, a.bucket.keys, 1)
	key := a.bucket.keys[0]

	w := a.do(http.MethodGet, "/api/v1/images/"+key, "", nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "https://signed.example.com/"+key+"?expires=15m0s", w.Header().Get("Location"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Cache-Control"), "private, max-age="))

	w = a.do(http.MethodGet, "/api/v1/images/secrets/keys.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["code"])
}

func TestCategoriesAndHealth(t *testing.T) {
	a := newTestAPI(t)
	testhelpers.CreateCategory(t, a.db, "Soups", "soups")

	w := a.do(http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"], 1)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/categories/soups", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/categories/cakes", "", nil).Code)

	w = a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}
