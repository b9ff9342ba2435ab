package models

import (
	"context"

	"github.com/google/uuid"
)

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*User, error)
	Stats(ctx context.Context, id uuid.UUID) (UserStats, error)
}

type BlogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	// FindWithComments loads the blog with its latest comments.
	FindWithComments(ctx context.Context, id uuid.UUID, comments int) (*Blog, error)
	List(ctx context.Context, filter BlogFilter, offset, limit int) ([]Blog, error)
	Count(ctx context.Context, filter BlogFilter) (int64, error)
	Create(ctx context.Context, blog *Blog) error
	Update(ctx context.Context, id uuid.UUID, update BlogUpdate) (*Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RelatedCounts(ctx context.Context, id uuid.UUID) (RelatedCounts, error)
}

type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID, offset, limit int) ([]Comment, error)
	CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error)
	Create(ctx context.Context, comment *Comment) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LikeRepository interface {
	Find(ctx context.Context, authorID, blogID uuid.UUID) (*Like, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]Like, error)
	CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error)
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	List(ctx context.Context, filter NotificationFilter, offset, limit int) ([]Notification, error)
	Count(ctx context.Context, filter NotificationFilter) (int64, error)
	// FindOwned returns the notifications among ids that belong to recipient.
	FindOwned(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) ([]Notification, error)
	Create(ctx context.Context, notification *Notification) error
	MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type TagRepository interface {
	// Upsert returns the tag row for name, creating it when absent.
	Upsert(ctx context.Context, name string) (*Tag, error)
	Attach(ctx context.Context, blogID uuid.UUID, tag *Tag) error
	ClearForBlog(ctx context.Context, blogID uuid.UUID) error
	ListForBlog(ctx context.Context, blogID uuid.UUID) ([]Tag, error)
}

// Store groups the repositories. Repositories handed to fn by Transaction share one transaction,
// which commits when fn returns nil.
type Store interface {
	Users() UserRepository
	Blogs() BlogRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Notifications() NotificationRepository
	Tags() TagRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
