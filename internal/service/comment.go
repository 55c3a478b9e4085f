package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/review"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// CommentView is a comment with its author block.
type CommentView struct {
	models.Comment
	Author *models.UserSummary `json:"author"`
}

// CommentThread is everything the recipe page needs to render its comments.
type CommentThread struct {
	RecipeID      uuid.UUID        `json:"recipe_id"`
	Comments      []CommentView    `json:"comments"`
	Reviews       []CommentView    `json:"reviews"`
	Aggregate     review.Aggregate `json:"aggregate"`
	RatingDisplay string           `json:"rating_display"`
	CommentsCount int              `json:"comments_count"`
	CurrentReview *CommentView     `json:"current_review"`
	CanRate       bool             `json:"can_rate"`
}

// CommentOutcome is returned by every comment write. CommentsCount and
// Aggregate are the recipe's fresh totals; RatingChanged tells the client
// whether cached ratings must be refreshed.
type CommentOutcome struct {
	Comment       *CommentView     `json:"comment,omitempty"`
	Aggregate     review.Aggregate `json:"aggregate"`
	CommentsCount int              `json:"comments_count"`
	CurrentReview *CommentView     `json:"current_review"`
	RatingChanged bool             `json:"rating_changed"`
	RatingDropped bool             `json:"rating_dropped"`
	DemotedIDs    []uuid.UUID      `json:"demoted_ids"`
}

// CommentService stores comments and keeps each user's review unique per recipe.
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db, now: time.Now}
}

// ListComments returns a recipe's comments newest first. viewerID may be nil.
func (s *CommentService) ListComments(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*CommentThread, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Select("id", "user_id").First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, storeError(err, ErrRecipeNotFound, "failed to load recipe")
	}

	comments, err := loadComments(db, recipeID)
	if err != nil {
		return nil, storeError(err, nil, "failed to load comments")
	}

	agg := review.Calculate(comments)
	thread := &CommentThread{
		RecipeID:      recipeID,
		Comments:      views(comments),
		Reviews:       views(review.Reviews(comments)),
		Aggregate:     agg,
		RatingDisplay: agg.Display(),
		CommentsCount: len(comments),
	}
	if viewerID != nil && *viewerID != uuid.Nil {
		thread.CurrentReview = view(review.CurrentReview(comments, *viewerID))
		thread.CanRate = !recipe.IsOwnedBy(*viewerID)
	}
	return thread, nil
}

// CreateComment posts a comment, demoting the author's previous review when
// the new one carries a rating. Demotion and insert commit together.
func (s *CommentService) CreateComment(ctx context.Context, actorID, recipeID uuid.UUID, req *types.CommentRequest) (*CommentOutcome, error) {
	var plan *review.Plan
	var author *models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, comments, err := s.lockThread(tx, recipeID)
		if err != nil {
			return err
		}
		plan, err = review.ResolveCreate(review.Request{
			Comments:      comments,
			RecipeID:      recipeID,
			RecipeOwnerID: recipe.UserID,
			ActorID:       actorID,
			Content:       req.Content,
			Rating:        req.Rating,
		}, s.now())
		if err != nil {
			return err
		}
		if author, err = loadAuthor(tx, actorID); err != nil {
			return err
		}
		if err := demote(tx, plan.Demote); err != nil {
			return err
		}
		return tx.Create(&plan.Comment).Error
	})
	if err != nil {
		return nil, commentError(err, "failed to save comment")
	}

	plan.Comment.User = author
	log.Printf("[CommentService] User %s commented on recipe %s (rated=%t, demoted=%d)",
		actorID, recipeID, plan.Comment.Rating != nil, len(plan.Demote))
	return outcome(plan, true), nil
}

// UpdateComment edits the author's own comment. Adding or changing a rating
// demotes the author's other review in the same transaction.
func (s *CommentService) UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, req *types.CommentRequest) (*CommentOutcome, error) {
	var plan *review.Plan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipeID, err := commentRecipe(tx, commentID)
		if err != nil {
			return err
		}
		recipe, comments, err := s.lockThread(tx, recipeID)
		if err != nil {
			return err
		}
		plan, err = review.ResolveUpdate(review.Request{
			Comments:      comments,
			RecipeID:      recipeID,
			RecipeOwnerID: recipe.UserID,
			ActorID:       actorID,
			Content:       req.Content,
			Rating:        req.Rating,
		}, commentID, s.now())
		if err != nil {
			return err
		}
		if err := demote(tx, plan.Demote); err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).Updates(map[string]interface{}{
			"content":    plan.Comment.Content,
			"rating":     plan.Comment.Rating,
			"updated_at": plan.Comment.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, commentError(err, "failed to update comment")
	}

	log.Printf("[CommentService] User %s edited comment %s (rated=%t, demoted=%d)",
		actorID, commentID, plan.Comment.Rating != nil, len(plan.Demote))
	return outcome(plan, true), nil
}

// DeleteComment removes the author's own comment. Demoted reviews stay demoted.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) (*CommentOutcome, error) {
	var plan *review.Plan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipeID, err := commentRecipe(tx, commentID)
		if err != nil {
			return err
		}
		_, comments, err := s.lockThread(tx, recipeID)
		if err != nil {
			return err
		}
		plan, err = review.ResolveDelete(comments, actorID, commentID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, "id = ?", commentID).Error
	})
	if err != nil {
		return nil, commentError(err, "failed to delete comment")
	}

	log.Printf("[CommentService] User %s deleted comment %s", actorID, commentID)
	return outcome(plan, false), nil
}

// lockThread loads the recipe and its comments. On PostgreSQL the recipe row
// is locked so concurrent writes to the same thread serialize.
func (s *CommentService) lockThread(tx *gorm.DB, recipeID uuid.UUID) (*models.Recipe, []models.Comment, error) {
	q := tx.Select("id", "user_id")
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var recipe models.Recipe
	if err := q.First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, nil, storeError(err, ErrRecipeNotFound, "failed to load recipe")
	}
	comments, err := loadComments(tx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	return &recipe, comments, nil
}

func loadComments(db *gorm.DB, recipeID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Preload("User").Where("recipe_id = ?", recipeID).
		Order("created_at DESC").Order("id DESC").Find(&comments).Error
	return comments, err
}

func commentRecipe(tx *gorm.DB, commentID uuid.UUID) (uuid.UUID, error) {
	var comment models.Comment
	if err := tx.Select("id", "recipe_id").First(&comment, "id = ?", commentID).Error; err != nil {
		return uuid.Nil, storeError(err, apperror.NewNotFound("comment not found"), "failed to load comment")
	}
	return comment.RecipeID, nil
}

func loadAuthor(tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return nil, storeError(err, apperror.NewAuth("account no longer exists"), "failed to load user")
	}
	return &user, nil
}

func demote(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&models.Comment{}).Where("id IN ?", ids).Update("rating", gorm.Expr("NULL")).Error
}

// commentError maps a failed transaction. A unique violation means another
// session wrote a review for the same user between our read and write.
func commentError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrReviewConflict
	}
	return storeError(err, nil, op)
}

func outcome(plan *review.Plan, includeComment bool) *CommentOutcome {
	out := &CommentOutcome{
		Aggregate:     plan.Aggregate,
		CommentsCount: plan.CommentsCount(),
		CurrentReview: view(plan.Current),
		RatingChanged: plan.RatingChanged,
		RatingDropped: plan.RatingDropped,
		DemotedIDs:    plan.Demote,
	}
	if out.DemotedIDs == nil {
		out.DemotedIDs = []uuid.UUID{}
	}
	if includeComment {
		out.Comment = view(&plan.Comment)
		if out.CurrentReview != nil && out.CurrentReview.ID == plan.Comment.ID {
			out.CurrentReview = out.Comment
		}
	}
	return out
}

func view(c *models.Comment) *CommentView {
	if c == nil {
		return nil
	}
	return &CommentView{Comment: *c, Author: c.User.Summary()}
}

func views(comments []models.Comment) []CommentView {
	out := make([]CommentView, len(comments))
	for i := range comments {
		out[i] = CommentView{Comment: comments[i], Author: comments[i].User.Summary()}
	}
	return out
}
