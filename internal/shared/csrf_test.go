package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carmine-visuals/carmine-web/internal/shared"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	sm := newManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	again, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token twice: %v", err)
	}
	if again != token {
		t.Fatalf("expected stable token for session")
	}

	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, "forged"); !errors.Is(err, shared.ErrCSRFTokenMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, ""); !errors.Is(err, shared.ErrCSRFTokenMissing) {
		t.Fatalf("expected missing error, got %v", err)
	}
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	sm := newManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	ctx := context.Background()

	first, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load first session: %v", err)
	}
	stolen, err := csrf.EnsureToken(ctx, first)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}

	second, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load second session: %v", err)
	}
	if _, err := csrf.EnsureToken(ctx, second); err != nil {
		t.Fatalf("ensure second token: %v", err)
	}
	if err := csrf.VerifyToken(ctx, second, stolen); err == nil {
		t.Fatalf("token from another session verified")
	}
}

func TestCSRFTokenFromRequest(t *testing.T) {
	csrf := shared.NewCSRFManager("csrfsecret")

	form := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(shared.CSRFFormField+"=from-form"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if got := csrf.TokenFromRequest(form); got != "from-form" {
		t.Fatalf("expected form token, got %q", got)
	}

	header := httptest.NewRequest(http.MethodPost, "/contact", nil)
	header.Header.Set(shared.CSRFHeader, "from-header")
	if got := csrf.TokenFromRequest(header); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}
}

func TestUserSafeMessageNeverLeaksInternals(t *testing.T) {
	internal := errors.New("dial tcp 127.0.0.1:1433: connection refused")
	if msg := shared.UserSafeMessage(internal); msg != "Something went wrong. Please try again." {
		t.Fatalf("internal error leaked: %q", msg)
	}
	if msg := shared.UserSafeMessage(shared.ErrDuplicateAccount); msg != "Username or email already in use" {
		t.Fatalf("unexpected duplicate message: %q", msg)
	}
}
