package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/auth"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/models/storetest"
	"github.com/m-im-ha/turbo-blog-practice/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncTags attaches tags before Schedule returns so responses can be checked against the store.
type syncTags struct {
	attacher *services.TagAttacher
}

func (s syncTags) Schedule(ctx context.Context, job services.TagJob) error {
	_, err := s.attacher.Attach(ctx, job)
	return err
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *storetest.MemStore
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T, c map[string]string) *testServer {
	t.Helper()
	store := storetest.New()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	cfg := map[string]string{
		"ACCEPTED_ORIGINS": "http://allowed.test",
		"RATE_LIMIT_RPS":   "1000",
		"RATE_LIMIT_BURST": "1000",
	}
	for k, v := range c {
		cfg[k] = v
	}

	handler := newRouter(Dependencies{
		Store:  store,
		Tokens: tokens,
		Tags:   syncTags{attacher: services.NewTagAttacher(store)},
	}, withConfig(cfg))

	return &testServer{t: t, handler: handler, store: store, tokens: tokens}
}

func (s *testServer) tokenFor(user models.User) string {
	s.t.Helper()
	token, _, err := s.tokens.Issue(auth.Principal{ID: user.ID, Email: user.Email, Name: user.Username})
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return data
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blog server is running..", rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.store.AddUser("alice")

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/protected", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No token provided", decodeBody(t, rec)["error"])
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/protected", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decodeBody(t, rec)["error"])
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ghost := models.User{ID: uuid.New(), Email: "ghost@example.com", Username: "ghost"}
		rec := s.do(http.MethodGet, "/api/protected", s.tokenFor(ghost), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("protected route echoes the caller", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/protected", s.tokenFor(user), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "access granted to protected route", body["message"])
		caller := body["user"].(map[string]any)
		assert.Equal(t, user.ID.String(), caller["id"])
		assert.Equal(t, "alice", caller["dbUser"].(map[string]any)["username"])
		assert.NotEmpty(t, body["timestamp"])
	})
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "username": "ada", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "password", details[0].(map[string]any)["field"])

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "username": "ada", "password": "long enough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	data := dataOf(t, rec)
	assert.Equal(t, "ada", data["username"])
	assert.NotContains(t, data, "password")

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "username": "ada2", "password": "long enough",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "long enough"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := dataOf(t, rec)["token"].(string)

	rec = s.do(http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", dataOf(t, rec)["email"])
}

func TestBlogLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice")
	bob := s.store.AddUser("bob")
	aliceToken, bobToken := s.tokenFor(alice), s.tokenFor(bob)

	rec := s.do(http.MethodPost, "/api/blogs", aliceToken, map[string]any{
		"title":   "Hi",
		"content": "too short",
		"image":   "not a url",
		"tags":    []string{"a"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields []string
	for _, d := range decodeBody(t, rec)["details"].([]any) {
		fields = append(fields, d.(map[string]any)["field"].(string))
	}
	assert.Equal(t, []string{"content", "image", "tags.0", "title"}, fields)

	rec = s.do(http.MethodPost, "/api/blogs", aliceToken, map[string]any{
		"title":   "Only markup",
		"content": "<script>alert('long enough to pass')</script>",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "content", details[0].(map[string]any)["field"])

	rec = s.do(http.MethodPost, "/api/blogs", aliceToken, map[string]any{
		"title":   "Hello world",
		"content": "this content is long enough to pass",
		"tags":    []string{"Go", "go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "blog created successfully", created["message"])
	blog := created["data"].(map[string]any)
	assert.Equal(t, []any{"go"}, blog["tags"])
	assert.Equal(t, "alice", blog["author"].(map[string]any)["username"])
	blogID := uuid.MustParse(blog["id"].(string))
	assert.Equal(t, []string{"go"}, s.store.TagNamesFor(blogID))

	t.Run("get", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/blogs/"+blogID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := dataOf(t, rec)
		assert.Equal(t, float64(0), data["_count"].(map[string]any)["likes"])
		assert.Equal(t, "go", data["tags"].([]any)[0].(map[string]any)["tagName"])

		rec = s.do(http.MethodGet, "/api/blogs/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "invalid id", body["error"])
		assert.Equal(t, "id must be a valid UUID", body["details"])

		rec = s.do(http.MethodGet, "/api/blogs/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/blogs?page=0&limit=999", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Len(t, body["data"], 1)
		page := body["pagination"].(map[string]any)
		assert.Equal(t, float64(1), page["currentPage"])
		assert.Equal(t, float64(10), page["limit"])
		assert.Equal(t, false, page["hasNextPage"])
	})

	t.Run("update by someone else", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/blogs/"+blogID.String(), bobToken, map[string]any{"title": "Hijacked title"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/blogs/"+blogID.String(), aliceToken, map[string]any{"title": "Hello again", "tags": []string{"Web"}})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Blog updated successfully", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "Hello again", data["title"])
		assert.Equal(t, []any{"web"}, data["tags"])
		assert.Equal(t, []string{"web"}, s.store.TagNamesFor(blogID))
	})

	t.Run("search and filter", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/search?q=HELLO", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Len(t, body["data"], 1)
		assert.Equal(t, "HELLO", body["meta"].(map[string]any)["searchQuery"])

		rec = s.do(http.MethodGet, "/api/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Search query is required", decodeBody(t, rec)["error"])

		rec = s.do(http.MethodGet, "/api/search/filter?tag=WEB&author="+alice.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Len(t, body["data"], 1)
		filters := body["meta"].(map[string]any)["filters"].(map[string]any)
		assert.Equal(t, "WEB", filters["tag"])

		rec = s.do(http.MethodGet, "/api/search/filter?author=nope", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodGet, "/api/search/filter?author="+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("user blogs and public profile", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/user/blogs/"+alice.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := dataOf(t, rec)
		assert.Equal(t, "alice", data["user"].(map[string]any)["username"])
		assert.Len(t, data["blogs"], 1)

		rec = s.do(http.MethodGet, "/api/user/profile/"+alice.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data = dataOf(t, rec)
		assert.NotContains(t, data, "email")
		assert.Equal(t, float64(1), data["_count"].(map[string]any)["blogs"])
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/blogs/"+blogID.String(), bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodDelete, "/api/blogs/"+blogID.String(), aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := dataOf(t, rec)
		assert.Equal(t, "Hello again", data["deletedBlogTitle"])

		rec = s.do(http.MethodGet, "/api/blogs/"+blogID.String(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEngagementRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice")
	bob := s.store.AddUser("bob")
	aliceToken, bobToken := s.tokenFor(alice), s.tokenFor(bob)
	blog := s.store.AddBlog(alice.ID, "Alice writes")
	blogPath := blog.ID.String()

	t.Run("like toggle", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/blog/"+blogPath+"/like", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "blog liked successfully.", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, true, data["isLiked"])
		assert.Equal(t, float64(1), data["totalLikes"])

		rec = s.do(http.MethodGet, "/api/blog/"+blogPath+"/likes", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), dataOf(t, rec)["totalLikes"])
	})

	t.Run("comments", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/blog/comment/"+blogPath, bobToken, map[string]string{"content": "   "})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPost, "/api/blog/comment/"+blogPath, bobToken, map[string]string{"content": "  nice post  "})
		require.Equal(t, http.StatusCreated, rec.Code)
		data := dataOf(t, rec)
		assert.Equal(t, float64(1), data["totalComments"])
		comment := data["comment"].(map[string]any)
		assert.Equal(t, "nice post", comment["content"])
		commentPath := comment["id"].(string)

		rec = s.do(http.MethodGet, "/api/blog/comment/"+blogPath+"?limit=500", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data = dataOf(t, rec)
		assert.Equal(t, "Alice writes", data["blogTitle"])
		assert.Equal(t, float64(50), data["pagination"].(map[string]any)["limit"])

		rec = s.do(http.MethodPut, "/api/blog/comment/"+commentPath, aliceToken, map[string]string{"content": "edited"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPut, "/api/blog/comment/"+commentPath, bobToken, map[string]string{"content": "edited"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "edited", dataOf(t, rec)["content"])

		rec = s.do(http.MethodDelete, "/api/blog/comment/"+commentPath, bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), dataOf(t, rec)["totalComments"])
	})

	t.Run("notifications", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/blog/notifications?unreadOnly=true", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		notifications := body["data"].([]any)
		require.Len(t, notifications, 2)
		meta := body["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["unreadCount"])
		assert.Equal(t, true, meta["filter"].(map[string]any)["unreadOnly"])
		assert.Equal(t, float64(2), meta["pagination"].(map[string]any)["totalCount"])

		first := notifications[0].(map[string]any)["id"].(string)
		second := notifications[1].(map[string]any)["id"].(string)

		rec = s.do(http.MethodPatch, "/api/blog/notifications/read/"+first, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPatch, "/api/blog/notifications/read/"+first, aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Equal(t, "Notification marked as read", body["message"])
		assert.Equal(t, float64(1), body["meta"].(map[string]any)["unreadCount"])

		rec = s.do(http.MethodPatch, "/api/blog/notifications/mark-read", aliceToken, map[string]any{"notificationIds": []string{"bad"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		for _, method := range []string{http.MethodPatch, http.MethodDelete} {
			path := "/api/blog/notifications/mark-read"
			if method == http.MethodDelete {
				path = "/api/blog/notifications"
			}
			rec = s.do(method, path, aliceToken, map[string]any{"notificationIds": []string{first, ""}})
			require.Equal(t, http.StatusBadRequest, rec.Code, method)
			details := decodeBody(t, rec)["details"].([]any)
			require.Len(t, details, 1)
			assert.Equal(t, "notificationIds.1", details[0].(map[string]any)["field"])
		}

		rec = s.do(http.MethodPatch, "/api/blog/notifications/mark-read", aliceToken, map[string]any{"notificationIds": []string{first, second}})
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Equal(t, "1 notifications marked as read", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["alreadyRead"])
		assert.Equal(t, float64(0), data["unreadCount"])

		rec = s.do(http.MethodPatch, "/api/blog/notifications/mark-all-read", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "No unread notifications to mark", decodeBody(t, rec)["message"])

		rec = s.do(http.MethodDelete, "/api/blog/notifications/"+first, aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first, dataOf(t, rec)["deletedId"])

		rec = s.do(http.MethodDelete, "/api/blog/notifications/all", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "All 1 notifications deleted successfully", decodeBody(t, rec)["message"])
	})
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.tokenFor(s.store.AddUser("alice"))

	rec := s.do(http.MethodPost, "/api/blogs", token, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeBody(t, rec)["error"])
}
