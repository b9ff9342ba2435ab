package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Blog struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     *string   `json:"image" gorm:"type:text"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author        *Author        `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Tags          []Tag          `json:"tags" gorm:"many2many:blog_tags;constraint:OnDelete:CASCADE"`
	Comments      []Comment      `json:"comments,omitempty" gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE"`
	Likes         []Like         `json:"-" gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE"`
	Notifications []Notification `json:"-" gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE"`

	Counts BlogCounts `json:"_count" gorm:"embedded"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BlogCounts is filled by listing and detail queries through correlated sub-selects.
type BlogCounts struct {
	Likes    int64 `json:"likes" gorm:"column:like_count;->;-:migration"`
	Comments int64 `json:"comments" gorm:"column:comment_count;->;-:migration"`
}

// BlogRef is the projection of a blog embedded in notifications.
type BlogRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

func (BlogRef) TableName() string {
	return "blogs"
}

// BlogFilter narrows blog listings. Query matches title or content, Tag matches a tag name exactly.
type BlogFilter struct {
	Query    string
	Tag      string
	AuthorID *uuid.UUID
}

// BlogUpdate carries optional blog changes. A non-nil empty Image clears it.
type BlogUpdate struct {
	Title   *string
	Content *string
	Image   *string
}

func (u BlogUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Image == nil
}

// RelatedCounts is what deleting a blog removes alongside it.
type RelatedCounts struct {
	Likes         int64 `json:"likes"`
	Comments      int64 `json:"comments"`
	Notifications int64 `json:"notifications"`
}
