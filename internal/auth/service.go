package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
)

// Notifier delivers the activation link out-of-band. Delivery is best-effort:
// failures are logged and never fail the registration transition.
type Notifier interface {
	SendActivation(ctx context.Context, toEmail, recipientName, activationURL string) error
}

// Service owns the account lifecycle: registration, activation, login and
// role changes. Accounts move Pending -> Active exactly once; there is no
// deactivation path.
type Service struct {
	logger   *slog.Logger
	users    store.Users
	tokens   *TokenIssuer
	notifier Notifier
	baseURL  string
}

// NewService constructs the lifecycle service.
func NewService(logger *slog.Logger, users store.Users, tokens *TokenIssuer, notifier Notifier, baseURL string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, users: users, tokens: tokens, notifier: notifier, baseURL: baseURL}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Age       *int
}

// Register validates input, creates a pending account and dispatches the
// activation link. The store's unique indexes are the real duplicate guard;
// the lookup here only produces a friendlier error for the common case.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Username == "" || in.Password == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return shared.ErrValidation
	}

	if _, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email); err == nil {
		return shared.ErrDuplicateAccount
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("registration uniqueness check failed", slog.Any("error", err))
		return shared.ErrStoreUnavailable
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		s.logger.Error("password hash failed", slog.Any("error", err))
		return shared.ErrStoreUnavailable
	}

	user := &store.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		Age:          in.Age,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateAccount) {
			return shared.ErrDuplicateAccount
		}
		s.logger.Error("user insert failed", slog.Any("error", err))
		return shared.ErrStoreUnavailable
	}

	token, err := s.tokens.Issue(id, in.Email)
	if err != nil {
		// The account exists; the user can request a fresh link later.
		s.logger.Error("activation token issue failed", slog.Int64("user_id", id), slog.Any("error", err))
		return nil
	}
	activationURL := s.ActivationURL(token)

	// Operational log is the fallback delivery channel.
	s.logger.Info("activation link issued",
		slog.String("email", in.Email),
		slog.String("url", activationURL))

	if s.notifier != nil {
		if err := s.notifier.SendActivation(ctx, in.Email, in.FirstName, activationURL); err != nil {
			s.logger.Warn("activation email dispatch failed", slog.String("email", in.Email), slog.Any("error", err))
		}
	}
	return nil
}

// ActivationURL builds the link the user must visit.
func (s *Service) ActivationURL(token string) string {
	return s.baseURL + "/activate?token=" + url.QueryEscape(token)
}

// Activate redeems an activation token. Redeeming the same token twice is a
// silent success: there is no consumption ledger, and flipping an active
// account to active changes nothing.
func (s *Service) Activate(ctx context.Context, tokenString string) error {
	userID, _, err := s.tokens.Verify(tokenString)
	if err != nil {
		return shared.ErrActivationToken
	}
	if err := s.users.SetActive(ctx, userID); err != nil {
		s.logger.Error("activation update failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return shared.ErrStoreUnavailable
	}
	return nil
}

// Login verifies credentials and returns the account on success. An unknown
// username and a wrong password share ErrInvalidCredentials; only an
// existing pending account surfaces the distinct not-activated message.
func (s *Service) Login(ctx context.Context, username, password string) (*store.User, error) {
	if username == "" || password == "" {
		return nil, shared.ErrValidation
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", slog.Any("error", err))
		return nil, shared.ErrStoreUnavailable
	}
	if !user.Active {
		return nil, shared.ErrAccountNotActivated
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// ToggleSuperuser flips the target's role flag. Only a superuser actor may
// call it; the actor's flag is the login-time session snapshot.
func (s *Service) ToggleSuperuser(ctx context.Context, actor *shared.CurrentUser, targetID int64) (bool, error) {
	if actor == nil || !actor.Superuser {
		return false, shared.ErrForbidden
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, shared.ErrNotFound
		}
		s.logger.Error("toggle lookup failed", slog.Int64("target_id", targetID), slog.Any("error", err))
		return false, shared.ErrStoreUnavailable
	}
	next := !target.Superuser
	if err := s.users.SetSuperuser(ctx, targetID, next); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, shared.ErrNotFound
		}
		s.logger.Error("toggle update failed", slog.Int64("target_id", targetID), slog.Any("error", err))
		return false, shared.ErrStoreUnavailable
	}
	return next, nil
}

// ListUsers returns every account, newest first, for the admin panel.
func (s *Service) ListUsers(ctx context.Context) ([]store.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("user listing failed", slog.Any("error", err))
		return nil, shared.ErrStoreUnavailable
	}
	return users, nil
}
