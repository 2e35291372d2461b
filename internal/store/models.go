package store

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a registered account. Accounts start inactive and flip to active
// exactly once, when an activation token is redeemed.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	Age          *int      `bun:"age"`
	Email        string    `bun:"email,notnull,unique"`
	Phone        string    `bun:"phone"`
	Superuser    bool      `bun:"is_superuser"`
	Active       bool      `bun:"is_active"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// DisplayName returns the name used in activation emails.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Post is a news entry shown on the public news page.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Summary   string    `bun:"summary"`
	Body      string    `bun:"body"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
