package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const blogColumns = "blogs.*, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.blog_id = blogs.id) AS like_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.blog_id = blogs.id) AS comment_count"

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// withRelations selects blogs with their author, tags and counts.
func (r *BlogRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Select(blogColumns).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.tag_name ASC")
		})
}

// FindByID returns a blog with its author, tags and counts
func (r *BlogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	return first[models.Blog](r.withRelations(ctx).Where("blogs.id = ?", id))
}

func (r *BlogRepo) FindWithComments(ctx context.Context, id uuid.UUID, comments int) (*models.Blog, error) {
	q := r.withRelations(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC").Limit(comments)
		}).
		Preload("Comments.Author").
		Where("blogs.id = ?", id)
	return first[models.Blog](q)
}

// applyBlogFilter narrows a blogs query. Text search is a case-insensitive substring match on
// title or content; the tag filter matches a stored (lower case) tag name exactly.
func applyBlogFilter(q *gorm.DB, filter models.BlogFilter) *gorm.DB {
	if filter.Query != "" {
		pattern := "%" + escapeLike(filter.Query) + "%"
		q = q.Where("(blogs.title ILIKE ? OR blogs.content ILIKE ?)", pattern, pattern)
	}
	if filter.Tag != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM blog_tags JOIN tags ON tags.id = blog_tags.tag_id
			WHERE blog_tags.blog_id = blogs.id AND tags.tag_name = ?)`, strings.ToLower(filter.Tag))
	}
	if filter.AuthorID != nil {
		q = q.Where("blogs.author_id = ?", *filter.AuthorID)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List returns a page of blogs, newest first
func (r *BlogRepo) List(ctx context.Context, filter models.BlogFilter, offset, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := applyBlogFilter(r.withRelations(ctx), filter).
		Order("blogs.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *BlogRepo) Count(ctx context.Context, filter models.BlogFilter) (int64, error) {
	var count int64
	err := applyBlogFilter(r.db.WithContext(ctx).Model(&models.Blog{}), filter).Count(&count).Error
	return count, err
}

// Create inserts a blog and loads its author from the primary
func (r *BlogRepo) Create(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Tags", "Comments", "Likes", "Notifications").Create(blog).Error; err != nil {
		return err
	}

	var author models.Author
	if err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("id = ?", blog.AuthorID).First(&author).Error; err != nil {
		return err
	}
	blog.Author = &author
	if blog.Tags == nil {
		blog.Tags = []models.Tag{}
	}
	return nil
}

func (r *BlogRepo) Update(ctx context.Context, id uuid.UUID, update models.BlogUpdate) (*models.Blog, error) {
	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if update.Image != nil {
		if *update.Image == "" {
			updates["image"] = nil
		} else {
			updates["image"] = *update.Image
		}
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return first[models.Blog](r.withRelations(ctx).Clauses(dbresolver.Write).Where("blogs.id = ?", id))
}

// Delete removes a blog; comments, likes, notifications and tag links go with it
func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id).Error
}

func (r *BlogRepo) RelatedCounts(ctx context.Context, id uuid.UUID) (models.RelatedCounts, error) {
	var counts models.RelatedCounts
	err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM likes WHERE likes.blog_id = ?) AS likes,
		(SELECT COUNT(*) FROM comments WHERE comments.blog_id = ?) AS comments,
		(SELECT COUNT(*) FROM notifications WHERE notifications.blog_id = ?) AS notifications`,
		id, id, id).Scan(&counts).Error
	return counts, err
}
