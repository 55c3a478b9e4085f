package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// HashingEmbeddingService turns text into a fixed-width bag-of-words vector by
// hashing each word into a bucket. Deterministic and offline; good enough to
// rank recipes that share ingredients and title words.
type HashingEmbeddingService struct {
	dims int
}

func NewHashingEmbeddingService() *HashingEmbeddingService {
	return &HashingEmbeddingService{dims: models.EmbeddingDimensions}
}

// GenerateEmbedding returns an L2-normalised vector for text.
func (s *HashingEmbeddingService) GenerateEmbedding(text string) (pgvector.Vector, error) {
	vec := make([]float32, s.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[int(sum%uint32(s.dims))] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return pgvector.NewVector(vec), nil
}

// recipeText is what gets embedded for a recipe.
func recipeText(r *models.Recipe) string {
	parts := []string{r.Title}
	if r.Description != nil {
		parts = append(parts, *r.Description)
	}
	parts = append(parts, r.Ingredients...)
	return strings.Join(parts, " ")
}
