package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// Upsert inserts the tag if no row has its name yet and returns the stored row
func (r *TagRepo) Upsert(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{TagName: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tag_name"}}, DoNothing: true}).
		Create(&tag).Error
	if err != nil {
		return nil, err
	}

	var stored models.Tag
	if err := r.db.WithContext(ctx).Where("tag_name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *TagRepo) Attach(ctx context.Context, blogID uuid.UUID, tag *models.Tag) error {
	return r.db.WithContext(ctx).
		Table("blog_tags").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{"blog_id": blogID, "tag_id": tag.ID}).Error
}

func (r *TagRepo) ClearForBlog(ctx context.Context, blogID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM blog_tags WHERE blog_id = ?", blogID).Error
}

func (r *TagRepo) ListForBlog(ctx context.Context, blogID uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN blog_tags ON blog_tags.tag_id = tags.id").
		Where("blog_tags.blog_id = ?", blogID).
		Order("tags.tag_name ASC").
		Find(&tags).Error
	return tags, err
}
