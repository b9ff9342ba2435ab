package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. Password is absent for accounts created through a social sign in.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Email     string    `json:"email,omitempty" gorm:"type:text;not null;uniqueIndex"`
	Username  string    `json:"username" gorm:"type:varchar(30);not null;uniqueIndex"`
	Image     *string   `json:"image" gorm:"type:text"`
	Password  *string   `json:"-" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Author is the projection of a user embedded in blogs, comments, likes and notifications.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Image    *string   `json:"image"`
}

func (Author) TableName() string {
	return "users"
}

// UserStats counts what a user has produced.
type UserStats struct {
	Blogs    int64 `json:"blogs"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// ProfileUpdate carries optional profile changes. A non-nil empty Image clears it.
type ProfileUpdate struct {
	Username *string
	Image    *string
}
