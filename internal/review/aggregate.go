package review

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// Aggregate is the rating summary of one recipe.
type Aggregate struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Calculate summarises the reviews in comments. The mean is rounded to one
// decimal place; with no reviews it is 0.
func Calculate(comments []models.Comment) Aggregate {
	var count, sum int
	for i := range comments {
		if !comments[i].IsReview() {
			continue
		}
		count++
		sum += *comments[i].Rating
	}
	return FromTotals(count, float64(sum))
}

// FromTotals builds an Aggregate from a review count and rating sum, as
// returned by SQL aggregation.
func FromTotals(count int, sum float64) Aggregate {
	if count == 0 {
		return Aggregate{}
	}
	return Aggregate{Count: count, Mean: Round(sum / float64(count))}
}

// Round rounds to one decimal place, halves away from zero.
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}

// HasRatings is false when the recipe should show "no ratings".
func (a Aggregate) HasRatings() bool {
	return a.Count > 0
}

// Display formats the mean for humans.
func (a Aggregate) Display() string {
	if !a.HasRatings() {
		return "No ratings yet"
	}
	return strconv.FormatFloat(a.Mean, 'f', 1, 64)
}

// Reviews returns the rated comments, keeping order.
func Reviews(comments []models.Comment) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsReview() {
			out = append(out, c)
		}
	}
	return out
}

// CurrentReview returns userID's rated comment, or nil.
func CurrentReview(comments []models.Comment, userID uuid.UUID) *models.Comment {
	for i := range comments {
		if comments[i].UserID == userID && comments[i].IsReview() {
			c := comments[i]
			return &c
		}
	}
	return nil
}
