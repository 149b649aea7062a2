package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"newsdesk/models"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUsers is a mutex-guarded user store with the same uniqueness rule as the
// Mongo index.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.User)}
}

func (m *MemoryUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) Insert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryUsers) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type MemoryPosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func NewMemoryPosts() *MemoryPosts {
	return &MemoryPosts{posts: make(map[primitive.ObjectID]models.Post)}
}

func (m *MemoryPosts) Insert(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, ok := m.posts[post.ID]; ok {
		return ErrDuplicate
	}
	m.posts[post.ID] = clonePost(*post)
	return nil
}

func (m *MemoryPosts) List(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemoryPosts) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (m *MemoryPosts) Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = patch.Apply(p)
	m.posts[id] = clonePost(p)
	return &p, nil
}

func (m *MemoryPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func clonePost(p models.Post) models.Post {
	if p.ImageURL != nil {
		url := *p.ImageURL
		p.ImageURL = &url
	}
	return p
}

type MemorySubscriptions struct {
	mu   sync.Mutex
	subs map[string]models.PushSubscription
}

func NewMemorySubscriptions() *MemorySubscriptions {
	return &MemorySubscriptions{subs: make(map[string]models.PushSubscription)}
}

func (m *MemorySubscriptions) Upsert(ctx context.Context, sub webpush.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.subs[sub.Endpoint]
	if !ok {
		existing = models.PushSubscription{ID: primitive.NewObjectID(), CreatedAt: time.Now().UTC()}
	}
	existing.Sub = sub
	m.subs[sub.Endpoint] = existing
	return nil
}

func (m *MemorySubscriptions) List(ctx context.Context) ([]models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.PushSubscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sub.Endpoint < out[j].Sub.Endpoint })
	return out, nil
}

func (m *MemorySubscriptions) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subs, endpoint)
	return nil
}
