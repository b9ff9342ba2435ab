package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("email = ?", email))
}

// UsernameTaken reports whether another user than exclude already uses username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create inserts a new user into the database
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Image != nil {
		if *update.Image == "" {
			updates["image"] = nil
		} else {
			updates["image"] = *update.Image
		}
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return first[models.User](r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("id = ?", id))
}

func (r *UserRepo) Stats(ctx context.Context, id uuid.UUID) (models.UserStats, error) {
	var stats models.UserStats
	err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM blogs WHERE blogs.author_id = ?) AS blogs,
		(SELECT COUNT(*) FROM likes WHERE likes.author_id = ?) AS likes,
		(SELECT COUNT(*) FROM comments WHERE comments.author_id = ?) AS comments`,
		id, id, id).Scan(&stats).Error
	return stats, err
}
