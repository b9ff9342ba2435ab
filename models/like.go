package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like is unique per (author, blog); the index doubles as the toggle key.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;not null;uniqueIndex:idx_like_author_blog"`
	BlogID    uuid.UUID `json:"blogId" gorm:"type:uuid;not null;uniqueIndex:idx_like_author_blog;index"`
	CreatedAt time.Time `json:"createdAt"`

	Author *Author `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
