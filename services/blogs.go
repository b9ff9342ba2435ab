package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const latestCommentsOnBlog = 5

const (
	MinContentLength = 20
	MaxContentLength = 1000
)

type Blogs struct {
	store  models.Store
	tags   TagScheduler
	logger zerolog.Logger
}

func NewBlogs(store models.Store, tags TagScheduler) *Blogs {
	return &Blogs{
		store:  store,
		tags:   tags,
		logger: log.With().Str("component", "blogs").Logger(),
	}
}

// BlogView is a blog whose tags are reported as names. After a create or update they are the
// names the caller asked for, since attaching them happens in the background.
type BlogView struct {
	*models.Blog
	Tags []string `json:"tags"`
}

type CreateBlogInput struct {
	Title   string
	Content string
	Image   string
	Tags    []string
}

type UpdateBlogInput struct {
	Title   *string
	Content *string
	Image   *string
	// Tags replaces the blog's tags when non-nil, clearing them when empty.
	Tags *[]string
}

func (b *Blogs) Create(ctx context.Context, authorID uuid.UUID, in CreateBlogInput) (*BlogView, error) {
	content, err := sanitizedContent(in.Content)
	if err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:    strings.TrimSpace(in.Title),
		Content:  content,
		AuthorID: authorID,
	}
	if image := strings.TrimSpace(in.Image); image != "" {
		blog.Image = &image
	}

	if err := b.store.Blogs().Create(ctx, blog); err != nil {
		return nil, errs.NewDatabaseError("create", "blog", err)
	}

	tags := NormalizeTags(in.Tags)
	if len(tags) > 0 {
		b.scheduleTags(ctx, TagJob{BlogID: blog.ID, Tags: tags})
	}

	b.logger.Info().Str("blogId", blog.ID.String()).Str("authorId", authorID.String()).Msg("Blog created")
	return &BlogView{Blog: blog, Tags: tags}, nil
}

// Get returns a blog with its latest comments.
func (b *Blogs) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	blog, err := b.store.Blogs().FindWithComments(ctx, id, latestCommentsOnBlog)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	if blog == nil {
		return nil, errs.NewNotFoundError("Blog not found")
	}
	if blog.Comments == nil {
		blog.Comments = []models.Comment{}
	}
	return blog, nil
}

func (b *Blogs) List(ctx context.Context, page pagination.Page) ([]models.Blog, pagination.Meta, error) {
	return b.list(ctx, models.BlogFilter{}, page)
}

func (b *Blogs) Update(ctx context.Context, id, userID uuid.UUID, in UpdateBlogInput) (*BlogView, error) {
	if _, err := b.ownedBlog(ctx, b.store, id, userID, "update"); err != nil {
		return nil, err
	}

	update := models.BlogUpdate{Image: in.Image}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		update.Title = &title
	}
	if in.Content != nil {
		content, err := sanitizedContent(*in.Content)
		if err != nil {
			return nil, err
		}
		update.Content = &content
	}
	if update.Image != nil {
		image := strings.TrimSpace(*update.Image)
		update.Image = &image
	}

	blog, err := b.store.Blogs().Update(ctx, id, update)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "blog", err)
	}
	if blog == nil {
		return nil, errs.NewNotFoundError("Blog not found")
	}

	view := &BlogView{Blog: blog, Tags: tagNames(blog.Tags)}
	if in.Tags != nil {
		tags := NormalizeTags(*in.Tags)
		b.scheduleTags(ctx, TagJob{BlogID: id, Tags: tags, Replace: true})
		view.Tags = tags
	}

	b.logger.Info().Str("blogId", id.String()).Msg("Blog updated")
	return view, nil
}

type DeletedBlog struct {
	DeletedBlogID      uuid.UUID            `json:"deletedBlogId"`
	DeletedBlogTitle   string               `json:"deletedBlogTitle"`
	DeletedRelatedData models.RelatedCounts `json:"deletedRelatedData"`
}

// Delete removes a blog. Its comments, likes, notifications and tag links go with it.
func (b *Blogs) Delete(ctx context.Context, id, userID uuid.UUID) (*DeletedBlog, error) {
	var result DeletedBlog
	err := b.store.Transaction(ctx, func(tx models.Store) error {
		blog, err := b.ownedBlog(ctx, tx, id, userID, "delete")
		if err != nil {
			return err
		}

		related, err := tx.Blogs().RelatedCounts(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("count", "blog related data", err)
		}
		if err := tx.Blogs().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "blog", err)
		}

		result = DeletedBlog{DeletedBlogID: id, DeletedBlogTitle: blog.Title, DeletedRelatedData: related}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", "blog", err)
	}

	b.logger.Info().Str("blogId", id.String()).Msg("Blog deleted")
	return &result, nil
}

// Search matches q against titles and contents, ignoring case.
func (b *Blogs) Search(ctx context.Context, q string, page pagination.Page) ([]models.Blog, pagination.Meta, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, pagination.Meta{}, errs.NewBadRequestError("Search query is required")
	}
	return b.list(ctx, models.BlogFilter{Query: q}, page)
}

// Filter lists blogs carrying tag and/or written by author. Both are optional.
func (b *Blogs) Filter(ctx context.Context, tag string, author string, page pagination.Page) ([]models.Blog, pagination.Meta, error) {
	filter := models.BlogFilter{Tag: strings.ToLower(strings.TrimSpace(tag))}

	if author = strings.TrimSpace(author); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			return nil, pagination.Meta{}, errs.NewInvalidIDError("author")
		}
		user, err := b.store.Users().FindByID(ctx, authorID)
		if err != nil {
			return nil, pagination.Meta{}, errs.NewDatabaseError("find", "author", err)
		}
		if user == nil {
			return nil, pagination.Meta{}, errs.NewNotFoundError("Author not found")
		}
		filter.AuthorID = &authorID
	}

	return b.list(ctx, filter, page)
}

type AuthorBlogs struct {
	User  *models.Author `json:"user"`
	Blogs []models.Blog  `json:"blogs"`
}

// ListByAuthor returns a page of one user's blogs.
func (b *Blogs) ListByAuthor(ctx context.Context, userID uuid.UUID, page pagination.Page) (*AuthorBlogs, pagination.Meta, error) {
	user, err := b.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, pagination.Meta{}, errs.NewNotFoundError("User not found")
	}

	blogs, meta, err := b.list(ctx, models.BlogFilter{AuthorID: &userID}, page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return &AuthorBlogs{
		User:  &models.Author{ID: user.ID, Username: user.Username, Image: user.Image},
		Blogs: blogs,
	}, meta, nil
}

func (b *Blogs) list(ctx context.Context, filter models.BlogFilter, page pagination.Page) ([]models.Blog, pagination.Meta, error) {
	var blogs []models.Blog
	meta, err := pagination.Collect(ctx, page,
		func(ctx context.Context) (err error) {
			blogs, err = b.store.Blogs().List(ctx, filter, page.Offset(), page.Limit)
			return err
		},
		func(ctx context.Context) (int64, error) {
			return b.store.Blogs().Count(ctx, filter)
		},
	)
	if err != nil {
		return nil, pagination.Meta{}, errs.NewDatabaseError("list", "blogs", err)
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	return blogs, meta, nil
}

// ownedBlog loads a blog and checks that userID wrote it. Missing comes before forbidden.
func (b *Blogs) ownedBlog(ctx context.Context, store models.Store, id, userID uuid.UUID, action string) (*models.Blog, error) {
	blog, err := findBlog(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if blog.AuthorID != userID {
		return nil, errs.NewForbiddenError("Unauthorized. You can only " + action + " your own blogs")
	}
	return blog, nil
}

// sanitizedContent strips unsafe markup and rejects content that falls under the minimum length
// once the markup is gone. The upper bound is checked on the submitted text.
func sanitizedContent(raw string) (string, error) {
	content := SanitizeContent(raw)
	if utf8.RuneCountInString(content) < MinContentLength {
		return "", errs.NewValidationError("validation failed", []errs.FieldError{{
			Field:   "content",
			Message: fmt.Sprintf("the length must be between %d and %d", MinContentLength, MaxContentLength),
		}})
	}
	return content, nil
}

// scheduleTags hands job to the queue. A failure is logged and never reaches the caller.
func (b *Blogs) scheduleTags(ctx context.Context, job TagJob) {
	if err := b.tags.Schedule(ctx, job); err != nil {
		b.logger.Error().Err(err).Str("blogId", job.BlogID.String()).Msg("Failed to schedule tag job")
	}
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.TagName)
	}
	return names
}
