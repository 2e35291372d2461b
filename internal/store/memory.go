package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carmine-visuals/carmine-web/internal/shared"
)

// MemoryUsers is an in-memory Users implementation for tests.
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

// NewMemoryUsers constructs an empty in-memory user store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{nextID: 1, users: make(map[int64]*User)}
}

var _ Users = (*MemoryUsers)(nil)

// GetByID implements Users.
func (m *MemoryUsers) GetByID(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// FindByUsername implements Users.
func (m *MemoryUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindByUsernameOrEmail implements Users.
func (m *MemoryUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username || user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

// Create implements Users. It enforces the same uniqueness the backing
// databases do via their unique indexes.
func (m *MemoryUsers) Create(ctx context.Context, user *User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, shared.ErrDuplicateAccount
		}
	}
	clone := *user
	clone.ID = m.nextID
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	m.nextID++
	m.users[clone.ID] = &clone
	user.ID = clone.ID
	user.CreatedAt = clone.CreatedAt
	return clone.ID, nil
}

// SetActive implements Users.
func (m *MemoryUsers) SetActive(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.Active = true
	}
	return nil
}

// SetSuperuser implements Users.
func (m *MemoryUsers) SetSuperuser(ctx context.Context, id int64, superuser bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.Superuser = superuser
	return nil
}

// List implements Users.
func (m *MemoryUsers) List(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// Count implements Users.
func (m *MemoryUsers) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// MemoryPosts is an in-memory Posts implementation for tests.
type MemoryPosts struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*Post
}

// NewMemoryPosts constructs an empty in-memory post store.
func NewMemoryPosts() *MemoryPosts {
	return &MemoryPosts{nextID: 1, posts: make(map[int64]*Post)}
}

var _ Posts = (*MemoryPosts)(nil)

// GetByID implements Posts.
func (m *MemoryPosts) GetByID(ctx context.Context, id int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *post
	return &clone, nil
}

// List implements Posts.
func (m *MemoryPosts) List(ctx context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Create implements Posts.
func (m *MemoryPosts) Create(ctx context.Context, post *Post) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *post
	clone.ID = m.nextID
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	m.nextID++
	m.posts[clone.ID] = &clone
	post.ID = clone.ID
	return clone.ID, nil
}

// Count implements Posts.
func (m *MemoryPosts) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts), nil
}
