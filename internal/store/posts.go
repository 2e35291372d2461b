package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// BunPosts implements Posts on a bun handle.
type BunPosts struct {
	db *bun.DB
}

// NewPosts constructs a post repository.
func NewPosts(db *bun.DB) *BunPosts {
	return &BunPosts{db: db}
}

var _ Posts = (*BunPosts)(nil)

// GetByID fetches a single post.
func (r *BunPosts) GetByID(ctx context.Context, id int64) (*Post, error) {
	post := new(Post)
	err := r.db.NewSelect().Model(post).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapSelectErr(err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (r *BunPosts) List(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := r.db.NewSelect().Model(&posts).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Create inserts a post.
func (r *BunPosts) Create(ctx context.Context, post *Post) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return 0, err
	}
	return post.ID, nil
}

// Count returns the number of posts.
func (r *BunPosts) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Post)(nil)).Count(ctx)
}
