package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is reference data; recipes point at it by id and clients browse by slug.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	Slug        string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Emoji       *string   `gorm:"size:16" json:"emoji"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
