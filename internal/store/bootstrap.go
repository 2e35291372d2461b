package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// CreateSchema creates the users and posts tables when they do not exist.
// DDL goes through the dialect so the same call works on both backends.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{(*User)(nil), (*Post)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin inserts the first-run superuser when no users exist. It reports
// whether a seed happened. The password arrives pre-hashed; this package
// never sees plaintext secrets.
func SeedAdmin(ctx context.Context, users Users, username, passwordHash string) (bool, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	_, err = users.Create(ctx, &User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        username + "@carminevisuals.local",
		Superuser:    true,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SeedPosts inserts the default news entries when the posts table is empty.
func SeedPosts(ctx context.Context, posts Posts) (bool, error) {
	count, err := posts.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	defaults := []Post{
		{
			Title:   "Welcome to Carmine Visuals",
			Summary: "Introducing our new media and IT services.",
			Body:    "We are excited to launch Carmine Visuals, offering video production, photography, web development and IT consulting.",
		},
		{
			Title:   "New Portfolio Coming Soon",
			Summary: "We are preparing a showcase of our best work.",
			Body:    "Stay tuned for an updated gallery featuring corporate videos and product photography.",
		},
	}
	for i := range defaults {
		if _, err := posts.Create(ctx, &defaults[i]); err != nil {
			return false, err
		}
	}
	return true, nil
}
