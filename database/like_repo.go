package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Find returns the like authorID left on blogID, if any
func (r *LikeRepo) Find(ctx context.Context, authorID, blogID uuid.UUID) (*models.Like, error) {
	return first[models.Like](r.db.WithContext(ctx).Where("author_id = ? AND blog_id = ?", authorID, blogID))
}

func (r *LikeRepo) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("blog_id = ?", blogID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

func (r *LikeRepo) CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("blog_id = ?", blogID).Count(&count).Error
	return count, err
}

func (r *LikeRepo) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Omit("Author").Create(like).Error
}

func (r *LikeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id).Error
}
