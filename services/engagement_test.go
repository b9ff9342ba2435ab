package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/models/storetest"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("twice returns to the original state", func(t *testing.T) {
		store := storetest.New()
		author := store.AddUser("bob")
		reader := store.AddUser("alice")
		other := store.AddUser("carol")
		blog := store.AddBlog(author.ID, "Hello")
		e := NewEngagement(store)

		_, err := e.ToggleLike(ctx, blog.ID, other.ID)
		require.NoError(t, err)

		liked, err := e.ToggleLike(ctx, blog.ID, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, ActionLiked, liked.Action)
		assert.True(t, liked.IsLiked)
		require.NotNil(t, liked.LikeID)
		assert.Equal(t, int64(2), liked.TotalLikes)
		assert.Equal(t, author.ID, liked.Blog.AuthorID)

		unliked, err := e.ToggleLike(ctx, blog.ID, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, ActionUnliked, unliked.Action)
		assert.False(t, unliked.IsLiked)
		assert.Nil(t, unliked.LikeID)
		assert.Equal(t, int64(1), unliked.TotalLikes)
	})

	t.Run("notifies the author once per like", func(t *testing.T) {
		store := storetest.New()
		author := store.AddUser("bob")
		reader := store.AddUser("alice")
		blog := store.AddBlog(author.ID, "Hello")
		e := NewEngagement(store)

		for i := 0; i < 3; i++ {
			_, err := e.ToggleLike(ctx, blog.ID, reader.ID)
			require.NoError(t, err)
		}

		notifications := store.NotificationsFor(author.ID)
		require.Len(t, notifications, 2)
		for _, n := range notifications {
			assert.Equal(t, models.LikeNotificationMessage, n.Message)
			assert.Equal(t, reader.ID, n.ActorID)
			assert.Equal(t, blog.ID, n.BlogID)
			assert.False(t, n.Read)
		}
	})

	t.Run("liking your own blog notifies nobody", func(t *testing.T) {
		store := storetest.New()
		author := store.AddUser("bob")
		blog := store.AddBlog(author.ID, "Hello")

		result, err := NewEngagement(store).ToggleLike(ctx, blog.ID, author.ID)
		require.NoError(t, err)
		assert.Equal(t, ActionLiked, result.Action)
		assert.Empty(t, store.NotificationsFor(author.ID))
	})

	t.Run("missing blog", func(t *testing.T) {
		store := storetest.New()
		user := store.AddUser("alice")

		_, err := NewEngagement(store).ToggleLike(ctx, uuid.New(), user.ID)
		assert.True(t, errs.IsNotFound(err))
		assert.Equal(t, "Blog not found", err.Error())
	})
}

func TestListLikes(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	author := store.AddUser("bob")
	first := store.AddUser("alice")
	second := store.AddUser("carol")
	blog := store.AddBlog(author.ID, "Hello")
	e := NewEngagement(store)

	_, err := e.ToggleLike(ctx, blog.ID, first.ID)
	require.NoError(t, err)
	_, err = e.ToggleLike(ctx, blog.ID, second.ID)
	require.NoError(t, err)

	list, err := e.ListLikes(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalLikes)
	require.Len(t, list.Likes, 2)
	assert.Equal(t, "carol", list.Likes[0].User.Username)
	assert.Equal(t, "alice", list.Likes[1].User.Username)

	_, err = e.ListLikes(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("comment on another's blog notifies the author", func(t *testing.T) {
		store := storetest.New()
		a := store.AddUser("alice")
		b := store.AddUser("bob")
		blog := store.AddBlog(b.ID, "Hello")

		result, err := NewEngagement(store).CreateComment(ctx, blog.ID, a.ID, "  nice post  ")
		require.NoError(t, err)
		assert.Equal(t, "nice post", result.Comment.Content)
		assert.Equal(t, int64(1), result.TotalComments)
		require.NotNil(t, result.Comment.Author)
		assert.Equal(t, "alice", result.Comment.Author.Username)

		notifications := store.NotificationsFor(b.ID)
		require.Len(t, notifications, 1)
		assert.Contains(t, notifications[0].Message, "Hello")
		assert.Equal(t, `commented on your blog: "Hello"`, notifications[0].Message)
	})

	t.Run("comment on your own blog notifies nobody", func(t *testing.T) {
		store := storetest.New()
		b := store.AddUser("bob")
		blog := store.AddBlog(b.ID, "Hello")

		_, err := NewEngagement(store).CreateComment(ctx, blog.ID, b.ID, "thanks all")
		require.NoError(t, err)
		assert.Empty(t, store.NotificationsFor(b.ID))
	})

	t.Run("blank content", func(t *testing.T) {
		store := storetest.New()
		b := store.AddUser("bob")
		blog := store.AddBlog(b.ID, "Hello")

		_, err := NewEngagement(store).CreateComment(ctx, blog.ID, b.ID, "   ")
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("missing blog", func(t *testing.T) {
		store := storetest.New()
		a := store.AddUser("alice")

		_, err := NewEngagement(store).CreateComment(ctx, uuid.New(), a.ID, "hello")
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestUpdateAndDeleteComment(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	owner := store.AddUser("alice")
	stranger := store.AddUser("mallory")
	blogAuthor := store.AddUser("bob")
	blog := store.AddBlog(blogAuthor.ID, "Hello")
	e := NewEngagement(store)

	created, err := e.CreateComment(ctx, blog.ID, owner.ID, "first take")
	require.NoError(t, err)
	commentID := created.Comment.ID
	notificationsBefore := len(store.NotificationsFor(blogAuthor.ID))

	t.Run("missing comment is not found even for the owner", func(t *testing.T) {
		_, err := e.UpdateComment(ctx, uuid.New(), owner.ID, "edit")
		assert.True(t, errs.IsNotFound(err))
		_, err = e.DeleteComment(ctx, uuid.New(), owner.ID)
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		_, err := e.UpdateComment(ctx, commentID, stranger.ID, "hijack")
		assert.True(t, errs.IsForbidden(err))
		_, err = e.DeleteComment(ctx, commentID, stranger.ID)
		assert.True(t, errs.IsForbidden(err))
	})

	t.Run("owner edits silently", func(t *testing.T) {
		updated, err := e.UpdateComment(ctx, commentID, owner.ID, " second take ")
		require.NoError(t, err)
		assert.Equal(t, "second take", updated.Content)
		assert.Len(t, store.NotificationsFor(blogAuthor.ID), notificationsBefore)
	})

	t.Run("owner deletes", func(t *testing.T) {
		deleted, err := e.DeleteComment(ctx, commentID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, commentID, deleted.DeletedCommentID)
		assert.Equal(t, blog.ID, deleted.BlogID)
		assert.Equal(t, int64(0), deleted.TotalComments)
	})
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	a := store.AddUser("alice")
	blog := store.AddBlog(a.ID, "Hello")
	e := NewEngagement(store)

	for i := 0; i < 23; i++ {
		_, err := e.CreateComment(ctx, blog.ID, a.ID, "comment")
		require.NoError(t, err)
	}

	page, err := e.ListComments(ctx, blog.ID, pagination.Comments.Parse("2", ""))
	require.NoError(t, err)
	assert.Equal(t, "Hello", page.BlogTitle)
	assert.Len(t, page.Comments, 3)
	assert.Equal(t, pagination.Meta{CurrentPage: 2, TotalPages: 2, TotalCount: 23, Limit: 20, HasNextPage: false, HasPrevPage: true}, page.Pagination)
	assert.True(t, page.Comments[0].CreatedAt.After(page.Comments[1].CreatedAt))

	_, err = e.ListComments(ctx, uuid.New(), pagination.Comments.Parse("", ""))
	assert.True(t, errs.IsNotFound(err))
}
