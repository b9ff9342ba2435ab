package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag names are stored lower case and are unique.
type Tag struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	TagName string    `json:"tagName" gorm:"column:tag_name;type:varchar(20);not null;uniqueIndex"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
