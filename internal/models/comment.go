package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is free text on a recipe. With a rating it is a review; a user holds
// at most one review per recipe, which the partial unique index also enforces.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_comments_one_review,where:rating IS NOT NULL" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_comments_one_review,where:rating IS NOT NULL" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Rating    *int      `gorm:"check:chk_comments_rating,rating IS NULL OR (rating >= 1 AND rating <= 5)" json:"rating"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsReview reports whether the comment carries a rating.
func (c *Comment) IsReview() bool {
	return c.Rating != nil
}
