// Package store is the persistence boundary for user and post records. It is
// backend-agnostic: the bun repositories run on SQLite or SQL Server, and an
// in-memory implementation backs tests.
package store

import "context"

// Users provides lookup and mutation of user records.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	Create(ctx context.Context, user *User) (int64, error)
	SetActive(ctx context.Context, id int64) error
	SetSuperuser(ctx context.Context, id int64, superuser bool) error
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
}

// Posts provides access to news entries.
type Posts interface {
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	Create(ctx context.Context, post *Post) (int64, error)
	Count(ctx context.Context) (int, error)
}
