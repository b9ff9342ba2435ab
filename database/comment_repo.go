package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return first[models.Comment](r.db.WithContext(ctx).Preload("Author").Where("id = ?", id))
}

// ListByBlog returns a page of a blog's comments, newest first
func (r *CommentRepo) ListByBlog(ctx context.Context, blogID uuid.UUID, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("blog_id = ?", blogID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("blog_id = ?", blogID).Count(&count).Error
	return count, err
}

// Create inserts a comment and loads its author
func (r *CommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return err
	}
	var author models.Author
	if err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("id = ?", comment.AuthorID).First(&author).Error; err != nil {
		return err
	}
	comment.Author = &author
	return nil
}

func (r *CommentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error
	if err != nil {
		return nil, err
	}
	return first[models.Comment](r.db.WithContext(ctx).Clauses(dbresolver.Write).Preload("Author").Where("id = ?", id))
}

func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}
