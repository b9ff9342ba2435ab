package models

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCommentNotificationMessage(t *testing.T) {
	assert.Equal(t, `commented on your blog: "Hello"`, CommentNotificationMessage("Hello"))
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	blog := &Blog{}
	require.NoError(t, blog.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, blog.ID)

	existing := uuid.New()
	like := &Like{ID: existing}
	require.NoError(t, like.BeforeCreate(nil))
	assert.Equal(t, existing, like.ID)
}

func TestSchemaNames(t *testing.T) {
	cache := &sync.Map{}

	blog, err := schema.Parse(&Blog{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Equal(t, "blogs", blog.Table)
	assert.Contains(t, blog.Relationships.Relations, "Tags")
	assert.Equal(t, "blog_tags", blog.Relationships.Relations["Tags"].JoinTable.Name)

	tag, err := schema.Parse(&Tag{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Contains(t, tag.FieldsByDBName, "tag_name")

	author, err := schema.Parse(&Author{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Equal(t, "users", author.Table)
}

func TestFindColumnMismatches(t *testing.T) {
	s, err := schema.Parse(&Comment{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	columns := []string{"id", "content", "author_id", "blog_id", "created_at", "updated_at", "legacy_flag", "archived"}
	assert.Equal(t, []string{"archived", "legacy_flag"}, findColumnMismatches(columns, s))
}

func TestBlogUpdateEmpty(t *testing.T) {
	assert.True(t, BlogUpdate{}.Empty())
	title := "New title"
	assert.False(t, BlogUpdate{Title: &title}.Empty())
}
