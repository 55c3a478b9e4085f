package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDimensions is the width of the recipe embedding column.
const EmbeddingDimensions = 64

type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string           `gorm:"size:100;not null" json:"title"`
	Description  *string          `gorm:"size:500" json:"description"`
	Ingredients  StringList       `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions StringList       `gorm:"type:jsonb;not null" json:"instructions"`
	ImageURL     *string          `gorm:"size:512" json:"image_url"`
	CategoryID   *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	TimeMinutes  *int             `gorm:"check:chk_recipes_time,time_minutes IS NULL OR (time_minutes >= 1 AND time_minutes <= 1440)" json:"time_minutes"`
	Embedding    *pgvector.Vector `gorm:"type:vector(64)" json:"-"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID created the recipe.
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
