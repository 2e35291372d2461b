package news

import (
	"context"
	"errors"
	"log/slog"

	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
)

// Service exposes the public news feed.
type Service struct {
	logger *slog.Logger
	posts  store.Posts
}

// NewService constructs the news service.
func NewService(logger *slog.Logger, posts store.Posts) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, posts: posts}
}

// List returns all posts, newest first.
func (s *Service) List(ctx context.Context) ([]store.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		s.logger.Error("post listing failed", slog.Any("error", err))
		return nil, shared.ErrStoreUnavailable
	}
	return posts, nil
}

// Get returns a single post by id.
func (s *Service) Get(ctx context.Context, id int64) (*store.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		s.logger.Error("post lookup failed", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, shared.ErrStoreUnavailable
	}
	return post, nil
}
