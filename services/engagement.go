package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ActionLiked   = "liked"
	ActionUnliked = "unliked"
)

// Engagement owns the writes that imply a second write: likes, comments and the notifications
// they fan out to blog authors. Each operation runs in one transaction.
type Engagement struct {
	store  models.Store
	logger zerolog.Logger
}

func NewEngagement(store models.Store) *Engagement {
	return &Engagement{
		store:  store,
		logger: log.With().Str("component", "engagement").Logger(),
	}
}

// LikedBlog is the blog projection returned by a like toggle.
type LikedBlog struct {
	ID       uuid.UUID      `json:"id"`
	AuthorID uuid.UUID      `json:"authorId"`
	Author   *models.Author `json:"author"`
}

type ToggleLikeResult struct {
	Blog       LikedBlog  `json:"blog"`
	Action     string     `json:"action"`
	LikeID     *uuid.UUID `json:"likeId"`
	TotalLikes int64      `json:"totalLikes"`
	IsLiked    bool       `json:"isLiked"`
}

// ToggleLike removes the user's like on the blog if there is one and adds it otherwise.
func (e *Engagement) ToggleLike(ctx context.Context, blogID, userID uuid.UUID) (*ToggleLikeResult, error) {
	var result ToggleLikeResult
	err := e.store.Transaction(ctx, func(tx models.Store) error {
		blog, err := findBlog(ctx, tx, blogID)
		if err != nil {
			return err
		}
		result = ToggleLikeResult{Blog: LikedBlog{ID: blog.ID, AuthorID: blog.AuthorID, Author: blog.Author}}

		existing, err := tx.Likes().Find(ctx, userID, blogID)
		if err != nil {
			return errs.NewDatabaseError("find", "like", err)
		}

		if existing != nil {
			if err := tx.Likes().Delete(ctx, existing.ID); err != nil {
				return errs.NewDatabaseError("delete", "like", err)
			}
			result.Action = ActionUnliked
		} else {
			like := &models.Like{AuthorID: userID, BlogID: blogID}
			if err := tx.Likes().Create(ctx, like); err != nil {
				return errs.NewDatabaseError("create", "like", err)
			}
			if err := notify(ctx, tx, userID, blog.AuthorID, blogID, models.LikeNotificationMessage); err != nil {
				return err
			}
			result.Action = ActionLiked
			result.LikeID = &like.ID
			result.IsLiked = true
		}

		result.TotalLikes, err = tx.Likes().CountByBlog(ctx, blogID)
		if err != nil {
			return errs.NewDatabaseError("count", "likes", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("toggle", "like", err)
	}

	e.logger.Debug().
		Str("blogId", blogID.String()).
		Str("userId", userID.String()).
		Str("action", result.Action).
		Msg("Like toggled")
	return &result, nil
}

type LikedBy struct {
	ID      uuid.UUID      `json:"id"`
	LikedAt time.Time      `json:"likedAt"`
	User    *models.Author `json:"user"`
}

type LikeList struct {
	BlogID     uuid.UUID `json:"blogId"`
	TotalLikes int       `json:"totalLikes"`
	Likes      []LikedBy `json:"likes"`
}

// ListLikes returns who liked a blog, most recent first.
func (e *Engagement) ListLikes(ctx context.Context, blogID uuid.UUID) (*LikeList, error) {
	if _, err := findBlog(ctx, e.store, blogID); err != nil {
		return nil, err
	}

	likes, err := e.store.Likes().ListByBlog(ctx, blogID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "likes", err)
	}

	list := &LikeList{BlogID: blogID, TotalLikes: len(likes), Likes: make([]LikedBy, 0, len(likes))}
	for _, like := range likes {
		list.Likes = append(list.Likes, LikedBy{ID: like.ID, LikedAt: like.CreatedAt, User: like.Author})
	}
	return list, nil
}

type CommentResult struct {
	Comment       *models.Comment `json:"comment"`
	TotalComments int64           `json:"totalComments"`
}

// CreateComment adds a comment and tells the blog author about it unless they wrote it.
func (e *Engagement) CreateComment(ctx context.Context, blogID, userID uuid.UUID, content string) (*CommentResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.NewValidationError("validation failed", []errs.FieldError{{Field: "content", Message: "comment cannot be empty"}})
	}

	var result CommentResult
	err := e.store.Transaction(ctx, func(tx models.Store) error {
		blog, err := findBlog(ctx, tx, blogID)
		if err != nil {
			return err
		}

		comment := &models.Comment{Content: content, AuthorID: userID, BlogID: blogID}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return errs.NewDatabaseError("create", "comment", err)
		}
		if err := notify(ctx, tx, userID, blog.AuthorID, blogID, models.CommentNotificationMessage(blog.Title)); err != nil {
			return err
		}

		total, err := tx.Comments().CountByBlog(ctx, blogID)
		if err != nil {
			return errs.NewDatabaseError("count", "comments", err)
		}
		result = CommentResult{Comment: comment, TotalComments: total}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	return &result, nil
}

// UpdateComment edits a comment's content. Edits do not notify anyone.
func (e *Engagement) UpdateComment(ctx context.Context, commentID, userID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.NewValidationError("validation failed", []errs.FieldError{{Field: "content", Message: "comment cannot be empty"}})
	}

	if _, err := e.ownedComment(ctx, e.store, commentID, userID, "update"); err != nil {
		return nil, err
	}

	comment, err := e.store.Comments().UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "comment", err)
	}
	if comment == nil {
		return nil, errs.NewNotFoundError("Comment not found")
	}
	return comment, nil
}

type DeletedComment struct {
	DeletedCommentID uuid.UUID `json:"deletedCommentId"`
	BlogID           uuid.UUID `json:"blogId"`
	TotalComments    int64     `json:"totalComments"`
}

func (e *Engagement) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) (*DeletedComment, error) {
	var result DeletedComment
	err := e.store.Transaction(ctx, func(tx models.Store) error {
		comment, err := e.ownedComment(ctx, tx, commentID, userID, "delete")
		if err != nil {
			return err
		}
		if err := tx.Comments().Delete(ctx, commentID); err != nil {
			return errs.NewDatabaseError("delete", "comment", err)
		}
		total, err := tx.Comments().CountByBlog(ctx, comment.BlogID)
		if err != nil {
			return errs.NewDatabaseError("count", "comments", err)
		}
		result = DeletedComment{DeletedCommentID: commentID, BlogID: comment.BlogID, TotalComments: total}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", "comment", err)
	}
	return &result, nil
}

type CommentPage struct {
	BlogID     uuid.UUID        `json:"blogId"`
	BlogTitle  string           `json:"blogTitle"`
	Comments   []models.Comment `json:"comments"`
	Pagination pagination.Meta  `json:"pagination"`
}

// ListComments returns a page of a blog's comments, newest first.
func (e *Engagement) ListComments(ctx context.Context, blogID uuid.UUID, page pagination.Page) (*CommentPage, error) {
	blog, err := findBlog(ctx, e.store, blogID)
	if err != nil {
		return nil, err
	}

	var comments []models.Comment
	meta, err := pagination.Collect(ctx, page,
		func(ctx context.Context) (err error) {
			comments, err = e.store.Comments().ListByBlog(ctx, blogID, page.Offset(), page.Limit)
			return err
		},
		func(ctx context.Context) (int64, error) {
			return e.store.Comments().CountByBlog(ctx, blogID)
		},
	)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	return &CommentPage{BlogID: blog.ID, BlogTitle: blog.Title, Comments: comments, Pagination: meta}, nil
}

// ownedComment loads a comment and checks that userID wrote it. Missing comes before forbidden.
func (e *Engagement) ownedComment(ctx context.Context, store models.Store, commentID, userID uuid.UUID, action string) (*models.Comment, error) {
	comment, err := store.Comments().FindByID(ctx, commentID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	if comment == nil {
		return nil, errs.NewNotFoundError("Comment not found")
	}
	if comment.AuthorID != userID {
		return nil, errs.NewForbiddenError("Unauthorized. You can only " + action + " your own comments")
	}
	return comment, nil
}

func findBlog(ctx context.Context, store models.Store, blogID uuid.UUID) (*models.Blog, error) {
	blog, err := store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	if blog == nil {
		return nil, errs.NewNotFoundError("Blog not found")
	}
	return blog, nil
}

// notify records a notification for recipient. Acting on your own blog notifies nobody.
func notify(ctx context.Context, store models.Store, actorID, recipientID, blogID uuid.UUID, message string) error {
	if actorID == recipientID {
		return nil
	}
	err := store.Notifications().Create(ctx, &models.Notification{
		ActorID:     actorID,
		RecipientID: recipientID,
		BlogID:      blogID,
		Message:     message,
	})
	if err != nil {
		return errs.NewDatabaseError("create", "notification", err)
	}
	return nil
}
