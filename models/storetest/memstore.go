// Package storetest provides an in-memory models.Store for tests.
package storetest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"gorm.io/gorm"
)

var _ models.Store = (*MemStore)(nil)

// MemStore is an in-memory models.Store. Deleting a blog cascades like the schema does.
type MemStore struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]models.User
	blogs         map[uuid.UUID]models.Blog
	comments      map[uuid.UUID]models.Comment
	likes         map[uuid.UUID]models.Like
	notifications map[uuid.UUID]models.Notification
	tags          map[uuid.UUID]models.Tag
	blogTags      map[uuid.UUID]map[uuid.UUID]struct{}

	// FailTags makes Upsert fail for these names.
	FailTags map[string]bool
	// FailCount makes blog and comment count queries fail.
	FailCount error
}

func New() *MemStore {
	return &MemStore{
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         map[uuid.UUID]models.User{},
		blogs:         map[uuid.UUID]models.Blog{},
		comments:      map[uuid.UUID]models.Comment{},
		likes:         map[uuid.UUID]models.Like{},
		notifications: map[uuid.UUID]models.Notification{},
		tags:          map[uuid.UUID]models.Tag{},
		blogTags:      map[uuid.UUID]map[uuid.UUID]struct{}{},
		FailTags:      map[string]bool{},
	}
}

func (s *MemStore) Users() models.UserRepository                 { return memUsers{s} }
func (s *MemStore) Blogs() models.BlogRepository                 { return memBlogs{s} }
func (s *MemStore) Comments() models.CommentRepository           { return memComments{s} }
func (s *MemStore) Likes() models.LikeRepository                 { return memLikes{s} }
func (s *MemStore) Notifications() models.NotificationRepository { return memNotifications{s} }
func (s *MemStore) Tags() models.TagRepository                   { return memTags{s} }

func (s *MemStore) Transaction(ctx context.Context, fn func(tx models.Store) error) error {
	return fn(s)
}

// now must be called with mu held. Every call moves the clock so creation order is total.
func (s *MemStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *MemStore) author(id uuid.UUID) *models.Author {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &models.Author{ID: u.ID, Username: u.Username, Email: u.Email, Image: u.Image}
}

func (s *MemStore) AddUser(username string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.New(), Email: username + "@example.com", Username: username, CreatedAt: s.now()}
	s.users[u.ID] = u
	return u
}

func (s *MemStore) AddBlog(authorID uuid.UUID, title string) models.Blog {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Blog{ID: uuid.New(), Title: title, Content: "content of " + title, AuthorID: authorID, CreatedAt: s.now()}
	s.blogs[b.ID] = b
	return b
}

// NotificationsFor returns every notification sent to recipient.
func (s *MemStore) NotificationsFor(recipient uuid.UUID) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}

// TagNamesFor returns the names of the tags linked to a blog, sorted.
func (s *MemStore) TagNamesFor(blogID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for _, tag := range s.blogTagsLocked(blogID) {
		names = append(names, tag.TagName)
	}
	return names
}

// TagCount reports how many tag rows exist.
func (s *MemStore) TagCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tags)
}

// Rows reports how many comments, likes and notifications point at blogID.
func (s *MemStore) Rows(blogID uuid.UUID) models.RelatedCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relatedLocked(blogID)
}

// CommentCount reports how many comments exist across all blogs.
func (s *MemStore) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func (s *MemStore) blogTagsLocked(blogID uuid.UUID) []models.Tag {
	tags := []models.Tag{}
	for tagID := range s.blogTags[blogID] {
		tags = append(tags, s.tags[tagID])
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].TagName < tags[j].TagName })
	return tags
}

func (s *MemStore) relatedLocked(blogID uuid.UUID) models.RelatedCounts {
	var counts models.RelatedCounts
	for _, l := range s.likes {
		if l.BlogID == blogID {
			counts.Likes++
		}
	}
	for _, c := range s.comments {
		if c.BlogID == blogID {
			counts.Comments++
		}
	}
	for _, n := range s.notifications {
		if n.BlogID == blogID {
			counts.Notifications++
		}
	}
	return counts
}

func (s *MemStore) hydrateBlog(b models.Blog) models.Blog {
	b.Author = s.author(b.AuthorID)
	b.Tags = s.blogTagsLocked(b.ID)
	b.Comments = nil
	for _, l := range s.likes {
		if l.BlogID == b.ID {
			b.Counts.Likes++
		}
	}
	for _, c := range s.comments {
		if c.BlogID == b.ID {
			b.Counts.Comments++
		}
	}
	return b
}

func (s *MemStore) commentsOf(blogID uuid.UUID) []models.Comment {
	var out []models.Comment
	for _, c := range s.comments {
		if c.BlogID == blogID {
			c.Author = s.author(c.AuthorID)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memUsers struct{ s *MemStore }

func (r memUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username && u.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	u, err := r.FindByEmail(ctx, email)
	return u != nil, err
}

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = user.BeforeCreate(nil)
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Image != nil {
		if *update.Image == "" {
			u.Image = nil
		} else {
			image := *update.Image
			u.Image = &image
		}
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return &u, nil
}

func (r memUsers) Stats(ctx context.Context, id uuid.UUID) (models.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats models.UserStats
	for _, b := range r.s.blogs {
		if b.AuthorID == id {
			stats.Blogs++
		}
	}
	for _, l := range r.s.likes {
		if l.AuthorID == id {
			stats.Likes++
		}
	}
	for _, c := range r.s.comments {
		if c.AuthorID == id {
			stats.Comments++
		}
	}
	return stats, nil
}

type memBlogs struct{ s *MemStore }

func (r memBlogs) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blogs[id]
	if !ok {
		return nil, nil
	}
	b = r.s.hydrateBlog(b)
	return &b, nil
}

func (r memBlogs) FindWithComments(ctx context.Context, id uuid.UUID, comments int) (*models.Blog, error) {
	blog, err := r.FindByID(ctx, id)
	if blog == nil || err != nil {
		return blog, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	blog.Comments = window(r.s.commentsOf(id), 0, comments)
	return blog, nil
}

func (r memBlogs) matching(filter models.BlogFilter) []models.Blog {
	var out []models.Blog
	query := strings.ToLower(filter.Query)
	for _, b := range r.s.blogs {
		if query != "" && !strings.Contains(strings.ToLower(b.Title), query) && !strings.Contains(strings.ToLower(b.Content), query) {
			continue
		}
		if filter.AuthorID != nil && b.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Tag != "" {
			found := false
			for _, t := range r.s.blogTagsLocked(b.ID) {
				if t.TagName == strings.ToLower(filter.Tag) {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, r.s.hydrateBlog(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memBlogs) List(ctx context.Context, filter models.BlogFilter, offset, limit int) ([]models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.matching(filter), offset, limit), nil
}

func (r memBlogs) Count(ctx context.Context, filter models.BlogFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCount != nil {
		return 0, r.s.FailCount
	}
	return int64(len(r.matching(filter))), nil
}

func (r memBlogs) Create(ctx context.Context, blog *models.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_ = blog.BeforeCreate(nil)
	blog.CreatedAt = r.s.now()
	blog.UpdatedAt = blog.CreatedAt
	stored := *blog
	stored.Author, stored.Tags = nil, nil
	r.s.blogs[blog.ID] = stored
	blog.Author = r.s.author(blog.AuthorID)
	blog.Tags = []models.Tag{}
	return nil
}

func (r memBlogs) Update(ctx context.Context, id uuid.UUID, update models.BlogUpdate) (*models.Blog, error) {
	r.s.mu.Lock()
	b, ok := r.s.blogs[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, nil
	}
	if update.Title != nil {
		b.Title = *update.Title
	}
	if update.Content != nil {
		b.Content = *update.Content
	}
	if update.Image != nil {
		if *update.Image == "" {
			b.Image = nil
		} else {
			image := *update.Image
			b.Image = &image
		}
	}
	b.UpdatedAt = r.s.now()
	r.s.blogs[id] = b
	r.s.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r memBlogs) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.blogs, id)
	delete(r.s.blogTags, id)
	for cid, c := range r.s.comments {
		if c.BlogID == id {
			delete(r.s.comments, cid)
		}
	}
	for lid, l := range r.s.likes {
		if l.BlogID == id {
			delete(r.s.likes, lid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.BlogID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

func (r memBlogs) RelatedCounts(ctx context.Context, id uuid.UUID) (models.RelatedCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.relatedLocked(id), nil
}

type memComments struct{ s *MemStore }

func (r memComments) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	c.Author = r.s.author(c.AuthorID)
	return &c, nil
}

func (r memComments) ListByBlog(ctx context.Context, blogID uuid.UUID, offset, limit int) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.s.commentsOf(blogID), offset, limit), nil
}

func (r memComments) CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCount != nil {
		return 0, r.s.FailCount
	}
	return int64(len(r.s.commentsOf(blogID))), nil
}

func (r memComments) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_ = comment.BeforeCreate(nil)
	comment.CreatedAt = r.s.now()
	comment.UpdatedAt = comment.CreatedAt
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	comment.Author = r.s.author(comment.AuthorID)
	return nil
}

func (r memComments) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	r.s.mu.Lock()
	c, ok := r.s.comments[id]
	if ok {
		c.Content = content
		c.UpdatedAt = r.s.now()
		r.s.comments[id] = c
	}
	r.s.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r memComments) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.comments, id)
	return nil
}

type memLikes struct{ s *MemStore }

func (r memLikes) Find(ctx context.Context, authorID, blogID uuid.UUID) (*models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.AuthorID == authorID && l.BlogID == blogID {
			return &l, nil
		}
	}
	return nil, nil
}

func (r memLikes) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Like
	for _, l := range r.s.likes {
		if l.BlogID == blogID {
			l.Author = r.s.author(l.AuthorID)
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memLikes) CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.likes {
		if l.BlogID == blogID {
			n++
		}
	}
	return n, nil
}

func (r memLikes) Create(ctx context.Context, like *models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.AuthorID == like.AuthorID && l.BlogID == like.BlogID {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = like.BeforeCreate(nil)
	like.CreatedAt = r.s.now()
	r.s.likes[like.ID] = *like
	return nil
}

func (r memLikes) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.likes, id)
	return nil
}

type memNotifications struct{ s *MemStore }

func (r memNotifications) hydrate(n models.Notification) models.Notification {
	n.Actor = r.s.author(n.ActorID)
	if b, ok := r.s.blogs[n.BlogID]; ok {
		n.Blog = &models.BlogRef{ID: b.ID, Title: b.Title}
	}
	return n
}

func (r memNotifications) matching(filter models.NotificationFilter) []models.Notification {
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID != filter.RecipientID || (filter.UnreadOnly && n.Read) {
			continue
		}
		out = append(out, r.hydrate(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memNotifications) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	n = r.hydrate(n)
	return &n, nil
}

func (r memNotifications) List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.matching(filter), offset, limit), nil
}

func (r memNotifications) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r memNotifications) FindOwned(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, id := range ids {
		if n, ok := r.s.notifications[id]; ok && n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r memNotifications) Create(ctx context.Context, notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blogs[notification.BlogID]; !ok {
		return errors.New("foreign key violated")
	}
	_ = notification.BeforeCreate(nil)
	notification.CreatedAt = r.s.now()
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r memNotifications) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, id := range ids {
		if n, ok := r.s.notifications[id]; ok && n.RecipientID == recipientID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for id, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r memNotifications) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notifications, id)
	return nil
}

func (r memNotifications) DeleteMany(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if n, ok := r.s.notifications[id]; ok && n.RecipientID == recipientID {
			delete(r.s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r memNotifications) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			delete(r.s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

type memTags struct{ s *MemStore }

func (r memTags) Upsert(ctx context.Context, name string) (*models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailTags[name] {
		return nil, errors.New("upsert failed")
	}
	for _, t := range r.s.tags {
		if t.TagName == name {
			return &t, nil
		}
	}
	t := models.Tag{ID: uuid.New(), TagName: name}
	r.s.tags[t.ID] = t
	return &t, nil
}

func (r memTags) Attach(ctx context.Context, blogID uuid.UUID, tag *models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.blogTags[blogID] == nil {
		r.s.blogTags[blogID] = map[uuid.UUID]struct{}{}
	}
	r.s.blogTags[blogID][tag.ID] = struct{}{}
	return nil
}

func (r memTags) ClearForBlog(ctx context.Context, blogID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.blogTags, blogID)
	return nil
}

func (r memTags) ListForBlog(ctx context.Context, blogID uuid.UUID) ([]models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.blogTagsLocked(blogID), nil
}
