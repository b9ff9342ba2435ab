package database

import (
	"context"
	"errors"

	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
)

// Database groups one repository per table over a shared GORM handle.
type Database struct {
	db               *gorm.DB
	userRepo         *UserRepo
	blogRepo         *BlogRepo
	commentRepo      *CommentRepo
	likeRepo         *LikeRepo
	notificationRepo *NotificationRepo
	tagRepo          *TagRepo
}

var _ models.Store = (*Database)(nil)

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) *Database {
	return &Database{
		db:               db,
		userRepo:         NewUserRepo(db),
		blogRepo:         NewBlogRepo(db),
		commentRepo:      NewCommentRepo(db),
		likeRepo:         NewLikeRepo(db),
		notificationRepo: NewNotificationRepo(db),
		tagRepo:          NewTagRepo(db),
	}
}

// Accessor methods for each repository

func (d *Database) Users() models.UserRepository {
	return d.userRepo
}

func (d *Database) Blogs() models.BlogRepository {
	return d.blogRepo
}

func (d *Database) Comments() models.CommentRepository {
	return d.commentRepo
}

func (d *Database) Likes() models.LikeRepository {
	return d.likeRepo
}

func (d *Database) Notifications() models.NotificationRepository {
	return d.notificationRepo
}

func (d *Database) Tags() models.TagRepository {
	return d.tagRepo
}

// Transaction runs fn against repositories bound to one transaction. Calling Transaction on the
// Database handed to fn opens a savepoint.
func (d *Database) Transaction(ctx context.Context, fn func(tx models.Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// DB returns the underlying connection.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// first runs q and returns nil without error when no row matches.
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
