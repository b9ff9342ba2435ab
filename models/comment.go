package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Content   string    `json:"content" gorm:"type:varchar(300);not null"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index"`
	BlogID    uuid.UUID `json:"blogId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *Author `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
