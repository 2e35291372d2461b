package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	platformdb "github.com/carmine-visuals/carmine-web/internal/platform/db"
	"github.com/carmine-visuals/carmine-web/internal/shared"
)

// BunUsers implements Users on a bun handle, for either backend.
type BunUsers struct {
	db *bun.DB
}

// NewUsers constructs a user repository.
func NewUsers(db *bun.DB) *BunUsers {
	return &BunUsers{db: db}
}

var _ Users = (*BunUsers)(nil)

// GetByID fetches a user by primary key.
func (r *BunUsers) GetByID(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapSelectErr(err)
	}
	return user, nil
}

// FindByUsername fetches a user by its unique username.
func (r *BunUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("username = ?", username).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapSelectErr(err)
	}
	return user, nil
}

// FindByUsernameOrEmail fetches any user holding either identifier. Used as
// the advisory pre-check before registration.
func (r *BunUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().Model(user).
		Where("username = ?", username).
		WhereOr("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapSelectErr(err)
	}
	return user, nil
}

// Create inserts a new user record. Unique-index collisions surface as
// shared.ErrDuplicateAccount regardless of backend.
func (r *BunUsers) Create(ctx context.Context, user *User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicateAccount
		}
		return 0, err
	}
	return user.ID, nil
}

// SetActive flips the account to active. Updating an already-active or
// missing row is a silent no-op, which keeps activation idempotent.
func (r *BunUsers) SetActive(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// SetSuperuser persists a role flip.
func (r *BunUsers) SetSuperuser(ctx context.Context, id int64, superuser bool) error {
	res, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_superuser = ?", superuser).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns all users, newest first.
func (r *BunUsers) List(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.NewSelect().Model(&users).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of user records.
func (r *BunUsers) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

func mapSelectErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return shared.ErrNotFound
	}
	return err
}
