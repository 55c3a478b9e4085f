// Package review keeps the per-recipe review rule: a user may hold at most
// one rated comment on a recipe, and the recipe owner never rates their own
// recipe. The functions here are pure; callers load the comment list, apply
// the returned Plan inside one transaction and persist nothing on error.
package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Request is a comment write by ActorID on a recipe whose comments are Comments.
type Request struct {
	Comments      []models.Comment
	RecipeID      uuid.UUID
	RecipeOwnerID uuid.UUID
	ActorID       uuid.UUID
	Content       string
	Rating        *int
}

// Plan is the outcome of resolving a write against the current comment list.
type Plan struct {
	// Comment is the row to insert, update or delete.
	Comment models.Comment
	// Demote lists comments whose rating must be cleared before Comment is written.
	Demote []uuid.UUID
	// RatingDropped is set when the owner supplied a rating that was ignored.
	RatingDropped bool
	// Comments is the recipe's list after the write.
	Comments []models.Comment
	// Current is the actor's review after the write.
	Current       *models.Comment
	RatingChanged bool
	Aggregate     Aggregate
}

// CommentsCount is the number of comments after the write.
func (p *Plan) CommentsCount() int {
	return len(p.Comments)
}

// ResolveCreate plans a new comment. A rated comment by a non-owner demotes
// every other review by the same user on the recipe.
func ResolveCreate(req Request, now time.Time) (*Plan, error) {
	content, rating, dropped, err := normalize(req)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.New(),
		RecipeID:  req.RecipeID,
		UserID:    req.ActorID,
		Content:   content,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var demote []uuid.UUID
	if rating != nil {
		demote = otherReviews(req.Comments, req.ActorID, uuid.Nil)
	}

	result := make([]models.Comment, 0, len(req.Comments)+1)
	result = append(result, comment)
	result = append(result, applyDemotions(req.Comments, demote)...)

	return finish(&Plan{
		Comment:       comment,
		Demote:        demote,
		RatingDropped: dropped,
		Comments:      result,
		RatingChanged: rating != nil,
	}, req.ActorID), nil
}

// ResolveUpdate plans an edit of commentID. Adding or changing a rating
// demotes the user's other reviews; clearing it leaves the user with none.
func ResolveUpdate(req Request, commentID uuid.UUID, now time.Time) (*Plan, error) {
	if req.ActorID == uuid.Nil {
		return nil, apperror.NewAuth("you must be signed in to edit comments")
	}
	target, err := findOwned(req.Comments, req.ActorID, commentID, "edit")
	if err != nil {
		return nil, err
	}

	content, rating, dropped, err := normalize(req)
	if err != nil {
		return nil, err
	}

	var demote []uuid.UUID
	if rating != nil {
		demote = otherReviews(req.Comments, req.ActorID, commentID)
	}

	updated := *target
	updated.Content = content
	updated.Rating = rating
	updated.UpdatedAt = now

	result := applyDemotions(req.Comments, demote)
	for i := range result {
		if result[i].ID == commentID {
			result[i] = updated
		}
	}

	return finish(&Plan{
		Comment:       updated,
		Demote:        demote,
		RatingDropped: dropped,
		Comments:      result,
		RatingChanged: len(demote) > 0 || !sameRating(target.Rating, rating),
	}, req.ActorID), nil
}

// ResolveDelete plans removal of commentID. Reviews demoted earlier stay plain
// comments.
func ResolveDelete(comments []models.Comment, actorID, commentID uuid.UUID) (*Plan, error) {
	if actorID == uuid.Nil {
		return nil, apperror.NewAuth("you must be signed in to delete comments")
	}
	target, err := findOwned(comments, actorID, commentID, "delete")
	if err != nil {
		return nil, err
	}

	result := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != commentID {
			result = append(result, c)
		}
	}

	return finish(&Plan{
		Comment:       *target,
		Comments:      result,
		RatingChanged: target.IsReview(),
	}, actorID), nil
}

// ValidateRating rejects ratings outside MinRating..MaxRating. Nil means no rating.
func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return apperror.NewValidation("rating must be between 1 and 5")
	}
	return nil
}

func normalize(req Request) (string, *int, bool, error) {
	if req.ActorID == uuid.Nil {
		return "", nil, false, apperror.NewAuth("you must be signed in to comment")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", nil, false, apperror.NewValidation("comment cannot be empty")
	}

	if err := ValidateRating(req.Rating); err != nil {
		return "", nil, false, err
	}
	if req.Rating == nil {
		return content, nil, false, nil
	}
	// The owner's comment is kept; only the rating is discarded.
	if req.ActorID == req.RecipeOwnerID {
		return content, nil, true, nil
	}
	r := *req.Rating
	return content, &r, false, nil
}

func findOwned(comments []models.Comment, actorID, commentID uuid.UUID, verb string) (*models.Comment, error) {
	for i := range comments {
		if comments[i].ID != commentID {
			continue
		}
		if comments[i].UserID != actorID {
			return nil, apperror.NewPermission("you can only " + verb + " your own comments")
		}
		c := comments[i]
		return &c, nil
	}
	return nil, apperror.NewNotFound("comment not found")
}

// otherReviews lists the user's rated comments other than except.
func otherReviews(comments []models.Comment, userID, except uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for _, c := range comments {
		if c.UserID == userID && c.IsReview() && c.ID != except {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func applyDemotions(comments []models.Comment, demote []uuid.UUID) []models.Comment {
	out := make([]models.Comment, len(comments))
	copy(out, comments)
	for i := range out {
		for _, id := range demote {
			if out[i].ID == id {
				out[i].Rating = nil
			}
		}
	}
	return out
}

func finish(p *Plan, actorID uuid.UUID) *Plan {
	p.Current = CurrentReview(p.Comments, actorID)
	p.Aggregate = Calculate(p.Comments)
	return p
}

func sameRating(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
