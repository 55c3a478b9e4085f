package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/review"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
	"github.com/pageza/recipeshare/backend/internal/types"
)

type commentFixture struct {
	db     *gorm.DB
	svc    *CommentService
	owner  *models.User
	recipe *models.Recipe
}

func newCommentFixture(t *testing.T) *commentFixture {
	db := newTestDB(t)
	owner := testhelpers.CreateUser(t, db, "owner")
	svc := NewCommentService(db)
	svc.now = stepClock()
	return &commentFixture{
		db:     db,
		svc:    svc,
		owner:  owner,
		recipe: testhelpers.CreateRecipe(t, db, owner, "Pancakes", nil),
	}
}

func (f *commentFixture) post(t *testing.T, user *models.User, content string, rating *int) *CommentOutcome {
	t.Helper()
	out, err := f.svc.CreateComment(context.Background(), user.ID, f.recipe.ID,
		&types.CommentRequest{Content: content, Rating: rating})
	require.NoError(t, err)
	return out
}

func (f *commentFixture) storedReviews(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Comment{}).
		Where("recipe_id = ? AND user_id = ? AND rating IS NOT NULL", f.recipe.ID, userID).
		Count(&n).Error)
	return n
}

func TestCreateCommentNewReviewDemotesPrevious(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")

	first := f.post(t, u1, "Great!", intPtr(5))
	assert.Equal(t, review.Aggregate{Count: 1, Mean: 5.0}, first.Aggregate)
	assert.Equal(t, 1, first.CommentsCount)
	require.NotNil(t, first.Comment.Author)
	assert.Equal(t, "u1", first.Comment.Author.Username)

	second := f.post(t, u1, "Actually, also great on day 2", intPtr(4))
	assert.Equal(t, []uuid.UUID{first.Comment.ID}, second.DemotedIDs)
	assert.Equal(t, review.Aggregate{Count: 1, Mean: 4.0}, second.Aggregate)
	assert.Equal(t, 2, second.CommentsCount)
	assert.True(t, second.RatingChanged)
	require.NotNil(t, second.CurrentReview)
	assert.Equal(t, second.Comment.ID, second.CurrentReview.ID)

	assert.Equal(t, int64(1), f.storedReviews(t, u1.ID))
	var demoted models.Comment
	require.NoError(t, f.db.First(&demoted, "id = ?", first.Comment.ID).Error)
	assert.Nil(t, demoted.Rating)
	assert.Equal(t, "Great!", demoted.Content)

	thread, err := f.svc.ListComments(context.Background(), f.recipe.ID, &u1.ID)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 2)
	assert.Equal(t, second.Comment.ID, thread.Comments[0].ID, "newest first")
	require.Len(t, thread.Reviews, 1)
	assert.Equal(t, "4.0", thread.RatingDisplay)
	assert.True(t, thread.CanRate)
}

func TestCreateCommentOwnerRatingDropped(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	f.post(t, u1, "Lovely", intPtr(4))

	out := f.post(t, f.owner, "Thanks everyone", intPtr(5))
	assert.True(t, out.RatingDropped)
	assert.False(t, out.RatingChanged)
	assert.Nil(t, out.Comment.Rating)
	assert.Equal(t, review.Aggregate{Count: 1, Mean: 4.0}, out.Aggregate)
	assert.Equal(t, int64(0), f.storedReviews(t, f.owner.ID))

	thread, err := f.svc.ListComments(context.Background(), f.recipe.ID, &f.owner.ID)
	require.NoError(t, err)
	assert.False(t, thread.CanRate)
	assert.Nil(t, thread.CurrentReview)
}

func TestDeleteCommentRecomputesAggregate(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	u2 := testhelpers.CreateUser(t, f.db, "u2")
	f.post(t, u1, "Good", intPtr(5))
	rated := f.post(t, u2, "Meh", intPtr(3))
	assert.Equal(t, review.Aggregate{Count: 2, Mean: 4.0}, rated.Aggregate)

	out, err := f.svc.DeleteComment(context.Background(), u2.ID, rated.Comment.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Aggregate{Count: 1, Mean: 5.0}, out.Aggregate)
	assert.Equal(t, 1, out.CommentsCount)
	assert.True(t, out.RatingChanged)
	assert.Nil(t, out.Comment)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("recipe_id = ?", f.recipe.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestCreateCommentRejectsOutOfRangeRating(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")

	for _, actor := range []*models.User{u1, f.owner} {
		for _, rating := range []int{0, 6} {
			_, err := f.svc.CreateComment(context.Background(), actor.ID, f.recipe.ID,
				&types.CommentRequest{Content: "hmm", Rating: intPtr(rating)})
			assert.True(t, apperror.IsValidation(err), "%s rating %d", actor.Username, rating)
		}
	}

	var n int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n, "nothing persisted")
}

func TestCreateCommentUnknownRecipe(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")

	_, err := f.svc.CreateComment(context.Background(), u1.ID, uuid.New(),
		&types.CommentRequest{Content: "hello"})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.ListComments(context.Background(), uuid.New(), nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateCommentAddingRatingDemotesOther(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	rated := f.post(t, u1, "rated", intPtr(2))
	plain := f.post(t, u1, "plain", nil)

	out, err := f.svc.UpdateComment(context.Background(), u1.ID, plain.Comment.ID,
		&types.CommentRequest{Content: "  now rated ", Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{rated.Comment.ID}, out.DemotedIDs)
	assert.Equal(t, review.Aggregate{Count: 1, Mean: 5.0}, out.Aggregate)
	assert.Equal(t, "now rated", out.Comment.Content)
	assert.Equal(t, int64(1), f.storedReviews(t, u1.ID))

	var stored models.Comment
	require.NoError(t, f.db.First(&stored, "id = ?", plain.Comment.ID).Error)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.Equal(t, "now rated", stored.Content)
}

func TestUpdateCommentClearingRating(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	rated := f.post(t, u1, "rated", intPtr(3))

	out, err := f.svc.UpdateComment(context.Background(), u1.ID, rated.Comment.ID,
		&types.CommentRequest{Content: "changed my mind"})
	require.NoError(t, err)
	assert.True(t, out.RatingChanged)
	assert.Nil(t, out.CurrentReview)
	assert.Equal(t, review.Aggregate{}, out.Aggregate)
	assert.Equal(t, int64(0), f.storedReviews(t, u1.ID))
}

func TestCommentWritesRequireAuthor(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	u2 := testhelpers.CreateUser(t, f.db, "u2")
	c := f.post(t, u1, "mine", intPtr(4))
	ctx := context.Background()

	_, err := f.svc.UpdateComment(ctx, u2.ID, c.Comment.ID, &types.CommentRequest{Content: "hijack"})
	assert.True(t, apperror.IsPermission(err))

	_, err = f.svc.DeleteComment(ctx, u2.ID, c.Comment.ID)
	assert.True(t, apperror.IsPermission(err))

	_, err = f.svc.DeleteComment(ctx, u1.ID, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.CreateComment(ctx, uuid.Nil, f.recipe.ID, &types.CommentRequest{Content: "anon"})
	assert.True(t, apperror.IsAuth(err))

	var stored models.Comment
	require.NoError(t, f.db.First(&stored, "id = ?", c.Comment.ID).Error)
	assert.Equal(t, "mine", stored.Content)
}

func TestDeleteCommentDoesNotResurrectDemotedReview(t *testing.T) {
	f := newCommentFixture(t)
	u1 := testhelpers.CreateUser(t, f.db, "u1")
	f.post(t, u1, "v1", intPtr(2))
	second := f.post(t, u1, "v2", intPtr(5))

	out, err := f.svc.DeleteComment(context.Background(), u1.ID, second.Comment.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Aggregate{}, out.Aggregate)
	assert.Nil(t, out.CurrentReview)
	assert.Equal(t, int64(0), f.storedReviews(t, u1.ID))
}
