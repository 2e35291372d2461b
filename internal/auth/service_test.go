package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carmine-visuals/carmine-web/internal/auth"
	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
	_ "github.com/carmine-visuals/carmine-web/testing"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sends []sentActivation
}

type sentActivation struct {
	Email string
	Name  string
	URL   string
}

func (n *recordingNotifier) SendActivation(ctx context.Context, toEmail, recipientName, activationURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, sentActivation{Email: toEmail, Name: recipientName, URL: activationURL})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentActivation {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sends)
	return n.sends[len(n.sends)-1]
}

func newService(t *testing.T) (*auth.Service, *store.MemoryUsers, *recordingNotifier) {
	t.Helper()
	users := store.NewMemoryUsers()
	notifier := &recordingNotifier{}
	issuer := auth.NewTokenIssuer([]byte("token-secret"), 24*time.Hour)
	svc := auth.NewService(nil, users, issuer, notifier, "http://localhost:3000")
	return svc, users, notifier
}

func registerAlice(t *testing.T, svc *auth.Service) {
	t.Helper()
	err := svc.Register(context.Background(), auth.RegisterInput{
		Username:  "alice",
		Password:  "s3cretpass",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	})
	require.NoError(t, err)
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	svc, users, notifier := newService(t)
	registerAlice(t, svc)

	user, err := users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.False(t, user.Active)
	require.False(t, user.Superuser)
	require.NotEqual(t, "s3cretpass", user.PasswordHash)

	sent := notifier.last(t)
	require.Equal(t, "alice@example.com", sent.Email)
	require.Equal(t, "Alice", sent.Name)
	require.True(t, strings.HasPrefix(sent.URL, "http://localhost:3000/activate?token="))
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Password: "s3cretpass",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newService(t)
	registerAlice(t, svc)

	err := svc.Register(context.Background(), auth.RegisterInput{
		Username:  "alice",
		Password:  "otherpass",
		FirstName: "Other",
		LastName:  "Person",
		Email:     "other@example.com",
	})
	require.ErrorIs(t, err, shared.ErrDuplicateAccount)

	err = svc.Register(context.Background(), auth.RegisterInput{
		Username:  "alice2",
		Password:  "otherpass",
		FirstName: "Other",
		LastName:  "Person",
		Email:     "alice@example.com",
	})
	require.ErrorIs(t, err, shared.ErrDuplicateAccount)
}

func TestConcurrentRegistrationSingleInsert(t *testing.T) {
	svc, users, _ := newService(t)

	input := func(email string) auth.RegisterInput {
		return auth.RegisterInput{
			Username:  "alice",
			Password:  "s3cretpass",
			FirstName: "Alice",
			LastName:  "Smith",
			Email:     email,
		}
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, email := range []string{"alice@example.com", "alice2@example.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			errs <- svc.Register(context.Background(), input(email))
		}(email)
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicated int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, shared.ErrDuplicateAccount)
			duplicated++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, duplicated)

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestLoginBeforeActivation(t *testing.T) {
	svc, _, _ := newService(t)
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), "alice", "s3cretpass")
	require.ErrorIs(t, err, shared.ErrAccountNotActivated)

	// A pending account reports not-activated even with a wrong password.
	_, err = svc.Login(context.Background(), "alice", "wrongpass")
	require.ErrorIs(t, err, shared.ErrAccountNotActivated)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestActivateThenLogin(t *testing.T) {
	svc, _, notifier := newService(t)
	registerAlice(t, svc)

	sent := notifier.last(t)
	token := sent.URL[strings.Index(sent.URL, "token=")+len("token="):]

	require.NoError(t, svc.Activate(context.Background(), token))

	user, err := svc.Login(context.Background(), "alice", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.True(t, user.Active)

	_, err = svc.Login(context.Background(), "alice", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestActivateIsIdempotent(t *testing.T) {
	svc, _, notifier := newService(t)
	registerAlice(t, svc)

	sent := notifier.last(t)
	token := sent.URL[strings.Index(sent.URL, "token=")+len("token="):]

	require.NoError(t, svc.Activate(context.Background(), token))
	require.NoError(t, svc.Activate(context.Background(), token))
}

func TestActivateRejectsBadToken(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.Activate(context.Background(), "bogus")
	require.ErrorIs(t, err, shared.ErrActivationToken)
}

func TestToggleSuperuser(t *testing.T) {
	svc, users, _ := newService(t)
	registerAlice(t, svc)

	target, err := users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	admin := &shared.CurrentUser{ID: 99, Username: "admin", Superuser: true}
	next, err := svc.ToggleSuperuser(context.Background(), admin, target.ID)
	require.NoError(t, err)
	require.True(t, next)

	next, err = svc.ToggleSuperuser(context.Background(), admin, target.ID)
	require.NoError(t, err)
	require.False(t, next)
}

func TestToggleSuperuserForbidden(t *testing.T) {
	svc, users, _ := newService(t)
	registerAlice(t, svc)

	target, err := users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	_, err = svc.ToggleSuperuser(context.Background(), nil, target.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	regular := &shared.CurrentUser{ID: 7, Username: "bob", Superuser: false}
	_, err = svc.ToggleSuperuser(context.Background(), regular, target.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestToggleSuperuserMissingTarget(t *testing.T) {
	svc, _, _ := newService(t)

	admin := &shared.CurrentUser{ID: 99, Username: "admin", Superuser: true}
	_, err := svc.ToggleSuperuser(context.Background(), admin, 12345)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListUsersNewestFirst(t *testing.T) {
	svc, users, _ := newService(t)

	for i, name := range []string{"first", "second", "third"} {
		_, err := users.Create(context.Background(), &store.User{
			Username:     name,
			PasswordHash: "x",
			Email:        name + "@example.com",
			CreatedAt:    time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	listed, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "third", listed[0].Username)
	require.Equal(t, "first", listed[2].Username)
}
