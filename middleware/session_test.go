package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/yourusername/ecewo/cookie"
	"github.com/yourusername/ecewo/core"
	"github.com/yourusername/ecewo/session"
)

func newTestSessionStore() *session.Store {
	st := session.New(nil)
	st.Init()
	return st
}

// TestSessionAttachesExistingSession tests that a valid session cookie
// attaches its session to the request context.
func TestSessionAttachesExistingSession(t *testing.T) {
	store := newTestSessionStore()
	sess, err := store.Create(time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	middleware := Session(store)

	var seen *session.Session
	handler := middleware(func(c *core.Context) error {
		seen = c.Session()
		return nil
	})

	ctx := &core.Context{}
	ctx.SetMethod("GET")
	ctx.SetPath("/me")
	ctx.SetRequestHeader("Cookie", "session="+sess.ID())

	if err := handler(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen == nil || seen.ID() != sess.ID() {
		t.Fatalf("expected session %q attached, got %v", sess.ID(), seen)
	}
}

// TestSessionNoCookieLeavesNilSession tests requests without a session
// cookie proceed with no session attached.
func TestSessionNoCookieLeavesNilSession(t *testing.T) {
	store := newTestSessionStore()
	middleware := Session(store)

	called := false
	handler := middleware(func(c *core.Context) error {
		called = true
		if c.Session() != nil {
			t.Error("expected nil session")
		}
		return nil
	})

	ctx := &core.Context{}
	ctx.SetMethod("GET")
	ctx.SetPath("/me")

	_ = handler(ctx)

	if !called {
		t.Error("expected handler to be called")
	}
}

// TestSessionUnknownCookieLeavesNilSession tests an unrecognized or expired
// session id does not attach a session.
func TestSessionUnknownCookieLeavesNilSession(t *testing.T) {
	store := newTestSessionStore()
	middleware := Session(store)

	handler := middleware(func(c *core.Context) error {
		if c.Session() != nil {
			t.Error("expected nil session for unknown id")
		}
		return nil
	})

	ctx := &core.Context{}
	ctx.SetMethod("GET")
	ctx.SetPath("/me")
	ctx.SetRequestHeader("Cookie", "session=does-not-exist")

	_ = handler(ctx)
}

// TestSendSessionCookie tests the Set-Cookie header carries the session id
// and a Max-Age derived from its remaining lifetime.
func TestSendSessionCookie(t *testing.T) {
	store := newTestSessionStore()
	sess, _ := store.Create(time.Hour)

	ctx := &core.Context{}
	ctx.SetMethod("POST")
	ctx.SetPath("/login")

	opts := cookie.DefaultOptions()
	if err := SendSessionCookie(ctx, sess, "", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ctx.GetResponseHeader("Set-Cookie")
	if !strings.HasPrefix(got, "session="+sess.ID()) {
		t.Fatalf("expected cookie for session id, got %q", got)
	}
	if !strings.Contains(got, "Max-Age=") {
		t.Fatalf("expected Max-Age attribute, got %q", got)
	}
}

// TestDestroySessionCookie tests the session is freed from the store and an
// immediately-expiring cookie is sent.
func TestDestroySessionCookie(t *testing.T) {
	store := newTestSessionStore()
	sess, _ := store.Create(time.Hour)
	id := sess.ID()

	ctx := &core.Context{}
	ctx.SetMethod("POST")
	ctx.SetPath("/logout")

	opts := cookie.DefaultOptions()
	if err := DestroySessionCookie(ctx, store, sess, "", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ctx.GetResponseHeader("Set-Cookie")
	if !strings.Contains(got, "Max-Age=0") {
		t.Fatalf("expected Max-Age=0, got %q", got)
	}

	if _, found := store.Find(id); found {
		t.Error("expected session to be freed from store")
	}
}

// BenchmarkSession benchmarks the session-attach middleware overhead.
func BenchmarkSession(b *testing.B) {
	store := newTestSessionStore()
	sess, _ := store.Create(time.Hour)

	middleware := Session(store)
	handler := middleware(func(c *core.Context) error { return nil })

	ctx := &core.Context{}
	ctx.SetMethod("GET")
	ctx.SetPath("/me")
	ctx.SetRequestHeader("Cookie", "session="+sess.ID())

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = handler(ctx)
	}
}
