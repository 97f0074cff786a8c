// Package testutil holds in-memory stand-ins for the stores, used by handler
// and router tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

// MemStore mirrors MongoStore's filtering and ordering over plain maps.
// Setting Err makes every call fail with it.
type MemStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	posts    map[string]models.Post
	comments map[string]models.Comment
	seq      time.Time

	Err error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[string]models.User{},
		posts:    map[string]models.Post{},
		comments: map[string]models.Comment{},
		seq:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now returns a strictly increasing clock so orderings are stable in tests.
func (m *MemStore) now() time.Time {
	m.seq = m.seq.Add(time.Second)
	return m.seq
}

func (m *MemStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.ID == u.ID {
			return store.ErrDuplicate
		}
	}
	now := m.now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	return m.updateUser(id, func(u *models.User) {
		if upd.FullName != nil {
			u.Name = *upd.FullName
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
	})
}

func (m *MemStore) SetAvatar(_ context.Context, id, key string) (*models.User, error) {
	return m.updateUser(id, func(u *models.User) { u.Avatar = key })
}

func (m *MemStore) updateUser(id string, apply func(u *models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	apply(&u)
	u.UpdatedAt = m.now()
	m.users[id] = u
	return &u, nil
}

func (m *MemStore) UserNames(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

func (m *MemStore) CreatePost(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.posts[p.ID]; ok {
		return store.ErrDuplicate
	}
	now := m.now()
	p.Status = models.StatusDraft
	p.CreatedAt, p.UpdatedAt = now, now
	p.PublishedAt = nil
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *MemStore) ListPostsByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Post
	for _, p := range m.posts {
		if p.AuthorID == authorID {
			p.Content = nil
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemStore) GetPostForAuthor(_ context.Context, id, authorID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.posts[id]
	if !ok || p.AuthorID != authorID {
		return nil, store.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (m *MemStore) UpdatePostForAuthor(_ context.Context, id, authorID string, upd models.PostUpdate) (*models.Post, error) {
	return m.updatePost(id, authorID, func(p *models.Post, _ time.Time) {
		if upd.Title != nil {
			p.Title = *upd.Title
		}
		if upd.Content != nil {
			p.Content = bytes.Clone(upd.Content)
		}
	})
}

func (m *MemStore) PublishPostForAuthor(_ context.Context, id, authorID string) (*models.Post, error) {
	return m.updatePost(id, authorID, func(p *models.Post, now time.Time) {
		p.Status = models.StatusPublished
		if p.PublishedAt == nil {
			p.PublishedAt = &now
		}
	})
}

func (m *MemStore) UnpublishPostForAuthor(_ context.Context, id, authorID string) (*models.Post, error) {
	return m.updatePost(id, authorID, func(p *models.Post, _ time.Time) {
		p.Status = models.StatusDraft
	})
}

func (m *MemStore) updatePost(id, authorID string, apply func(p *models.Post, now time.Time)) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.posts[id]
	if !ok || p.AuthorID != authorID {
		return nil, store.ErrNotFound
	}
	now := m.now()
	apply(&p, now)
	p.UpdatedAt = now
	m.posts[id] = p
	p = clonePost(p)
	return &p, nil
}

func (m *MemStore) DeletePostForAuthor(_ context.Context, id, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.posts[id]
	if !ok || p.AuthorID != authorID {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *MemStore) GetPublishedPost(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.posts[id]
	if !ok || p.Status != models.StatusPublished {
		return nil, store.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (m *MemStore) ListPublished(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Post
	for _, p := range m.posts {
		if p.Status == models.StatusPublished {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(*out[j].PublishedAt) })
	return out, nil
}

func (m *MemStore) CreateComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.comments[c.ID]; ok {
		return store.ErrDuplicate
	}
	c.CreatedAt = m.now()
	m.comments[c.ID] = *c
	return nil
}

func (m *MemStore) ListCommentsByPost(_ context.Context, postID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetComment(_ context.Context, id, postID string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.comments[id]
	if !ok || c.PostID != postID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) DeleteComment(_ context.Context, id, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.comments[id]
	if !ok || c.PostID != postID {
		return store.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

// CommentCount reports how many comments reference postID.
func (m *MemStore) CommentCount(postID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func clonePost(p models.Post) models.Post {
	p.Content = bytes.Clone(p.Content)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}

// MemObjects stands in for the MinIO avatar bucket.
type MemObjects struct {
	mu      sync.Mutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
}

func NewMemObjects() *MemObjects {
	return &MemObjects{objects: map[string]memObject{}}
}

func (o *MemObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (o *MemObjects) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

func (o *MemObjects) Remove(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, key)
	return nil
}

// Len reports the number of stored objects.
func (o *MemObjects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

// MemAudit records auth events in memory.
type MemAudit struct {
	mu     sync.Mutex
	events []models.AuthEvent
	Err    error
}

func (a *MemAudit) Record(_ context.Context, ev models.AuthEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	ev.ID = int64(len(a.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	a.events = append(a.events, ev)
	return nil
}

// RecentEvents returns the user's events, newest first.
func (a *MemAudit) RecentEvents(_ context.Context, userID string, limit int) ([]models.AuthEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.AuthEvent
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		if a.events[i].UserID == userID {
			out = append(out, a.events[i])
		}
	}
	return out, nil
}

// Events returns a copy of everything recorded.
func (a *MemAudit) Events() []models.AuthEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.AuthEvent(nil), a.events...)
}
