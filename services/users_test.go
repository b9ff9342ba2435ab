package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/auth"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUsers(store *storetest.MemStore) (*Users, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUsers(store, tokens).WithBcryptCost(bcrypt.MinCost), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	users, tokens := newUsers(store)

	user, err := users.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Username: "ada", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, user.Password)
	assert.NotEqual(t, "correct horse", *user.Password)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Register(ctx, RegisterInput{Email: "ADA@example.com", Username: "other", Password: "password1"})
		assert.True(t, errs.IsConflict(err))
		assert.Equal(t, "Email is already registered", err.Error())
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.Register(ctx, RegisterInput{Email: "other@example.com", Username: "ada", Password: "password1"})
		assert.True(t, errs.IsConflict(err))
		assert.Equal(t, "Username is already taken", err.Error())
	})

	t.Run("login issues a verifiable token", func(t *testing.T) {
		result, err := users.Login(ctx, "ADA@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)

		principal, err := tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
		assert.Equal(t, "ada@example.com", principal.Email)
		assert.Equal(t, "ada", principal.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := users.Login(ctx, "ada@example.com", "wrong password")
		assert.True(t, errs.IsUnauthorized(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := users.Login(ctx, "nobody@example.com", "correct horse")
		assert.True(t, errs.IsUnauthorized(err))
	})

	t.Run("account without password", func(t *testing.T) {
		oauthOnly := store.AddUser("oauth")
		_, err := users.Login(ctx, oauthOnly.Email, "anything")
		assert.True(t, errs.IsUnauthorized(err))
	})
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	users, _ := newUsers(store)
	alice := store.AddUser("alice")
	bob := store.AddUser("bob")
	e := NewEngagement(store)

	blog := store.AddBlog(alice.ID, "Hello")
	store.AddBlog(alice.ID, "Again")
	_, err := e.ToggleLike(ctx, blog.ID, alice.ID)
	require.NoError(t, err)
	_, err = e.CreateComment(ctx, blog.ID, alice.ID, "self reply")
	require.NoError(t, err)

	t.Run("own profile carries counts", func(t *testing.T) {
		profile, err := users.Profile(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, int64(2), profile.Counts.Blogs)
		assert.Equal(t, int64(1), profile.Counts.Likes)
		assert.Equal(t, int64(1), profile.Counts.Comments)
	})

	t.Run("public profile", func(t *testing.T) {
		profile, err := users.PublicProfile(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, profile.ID)
		assert.Equal(t, int64(2), profile.Counts.Blogs)

		_, err = users.PublicProfile(ctx, uuid.New())
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("update username and image", func(t *testing.T) {
		username := "  alice2  "
		image := "https://example.com/me.png"
		profile, err := users.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &username, Image: &image})
		require.NoError(t, err)
		assert.Equal(t, "alice2", profile.Username)
		require.NotNil(t, profile.Image)
		assert.Equal(t, image, *profile.Image)

		empty := ""
		profile, err = users.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Image: &empty})
		require.NoError(t, err)
		assert.Nil(t, profile.Image)
	})

	t.Run("keeping the same username is fine", func(t *testing.T) {
		username := "alice2"
		_, err := users.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &username})
		require.NoError(t, err)
	})

	t.Run("taken username", func(t *testing.T) {
		username := bob.Username
		_, err := users.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &username})
		assert.True(t, errs.IsConflict(err))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := users.Profile(ctx, uuid.New())
		assert.True(t, errs.IsNotFound(err))
	})
}
