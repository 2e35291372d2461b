package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/carmine-visuals/carmine-web/internal/shared"
	_ "github.com/carmine-visuals/carmine-web/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetCurrentUser(shared.CurrentUser{ID: 7, Username: "alice", Superuser: true})
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie to be set")
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	user := loaded.CurrentUser()
	if user == nil {
		t.Fatalf("expected user snapshot to survive commit")
	}
	if user.ID != 7 || user.Username != "alice" || !user.Superuser {
		t.Fatalf("unexpected snapshot: %+v", user)
	}
	if loaded.Get("theme") != "dark" {
		t.Fatalf("expected session value to survive commit")
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetCurrentUser(shared.CurrentUser{ID: 1, Username: "bob"})
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	sm.Destroy(sess)
	res2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, res2, req, sess); err != nil {
		t.Fatalf("commit destroyed session: %v", err)
	}
	var cleared bool
	for _, c := range res2.Result().Cookies() {
		if c.Name == sm.CookieName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected expired cookie after destroy")
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if loaded.CurrentUser() != nil {
		t.Fatalf("expected anonymous session after destroy")
	}
}

func TestFlashSurvivesCommitReload(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	// First request queues a flash right before redirecting.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Registration successful. Check your email for the activation link."})
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	// The redirect target loads the session from the cookie and must still
	// see the flash.
	second := httptest.NewRequest(http.MethodGet, "/login", nil)
	second.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	msg := loaded.PopFlash()
	if msg == nil {
		t.Fatalf("expected flash to survive the redirect")
	}
	if msg.Kind != "success" || msg.Message == "" {
		t.Fatalf("unexpected flash: %+v", msg)
	}
	res2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, res2, second, loaded); err != nil {
		t.Fatalf("commit after pop: %v", err)
	}

	// Once rendered and committed, the flash is gone for good.
	third := httptest.NewRequest(http.MethodGet, "/login", nil)
	third.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	again, err := sm.Load(ctx, third)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if msg := again.PopFlash(); msg != nil {
		t.Fatalf("expected flash to be consumed, got %+v", msg)
	}
}

func TestUnknownCookieGetsFreshSessionID(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "attacker-chosen-id"})
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.ID == "attacker-chosen-id" {
		t.Fatalf("client-supplied ID was adopted for a session the store does not know")
	}
	if sess.ID == "" {
		t.Fatalf("expected a generated session ID")
	}
}

func TestFlashDeliveredOnce(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "done"})

	if msg := sess.PopFlash(); msg == nil || msg.Message != "done" {
		t.Fatalf("expected queued flash, got %+v", msg)
	}
	if msg := sess.PopFlash(); msg != nil {
		t.Fatalf("expected flash to be consumed, got %+v", msg)
	}
}
