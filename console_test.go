package goSession

import (
	"context"
	"errors"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/facebookgo/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/internal/stubbackend"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/schema"
	"github.com/MrEthical07/goSession/session"
)

type consoleHarness struct {
	console *Console
	backend *stubbackend.Server
	clock   *clock.Mock
	nav     *session.PathNavigator
	audit   *ChannelSink
	baseURL string
}

func newConsoleHarness(t *testing.T, mutate func(*Builder)) (*consoleHarness, func()) {
	t.Helper()

	backend, err := stubbackend.New(stubbackend.DefaultConfig())
	if err != nil {
		t.Fatalf("stub backend: %v", err)
	}
	if err := backend.SeedDemo(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(backend)

	h := &consoleHarness{
		backend: backend,
		clock:   clock.NewMock(),
		nav:     session.NewPathNavigator("/suppliers"),
		audit:   NewChannelSink(64),
		baseURL: srv.URL,
	}

	cfg := DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	b := New().
		WithConfig(cfg).
		WithClock(h.clock).
		WithNavigator(h.nav).
		WithAuditSink(h.audit).
		WithLogger(zerolog.Nop())
	if mutate != nil {
		mutate(b)
	}

	c, err := b.Build()
	if err != nil {
		srv.Close()
		t.Fatalf("build console: %v", err)
	}
	h.console = c

	return h, func() {
		_ = c.Close()
		srv.Close()
	}
}

func (h *consoleHarness) signIn(t *testing.T) *session.Session {
	t.Helper()
	sess, err := h.console.SignIn(context.Background(), "admin", "admin-password")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return sess
}

func nextAudit(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestConsoleSignInEstablishesSession(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	sess := h.signIn(t)
	if h.console.State() != session.Authenticated {
		t.Fatalf("expected authenticated, got %v", h.console.State())
	}
	// Mock clock starts at epoch; the stub backend sends expires_in=3600.
	if sess.ExpiresAt != time.Hour.Milliseconds() {
		t.Fatalf("expected expiresAt from expires_in, got %d", sess.ExpiresAt)
	}
	if sess.User.Username != "admin" {
		t.Fatalf("unexpected user %+v", sess.User)
	}
	token, err := h.console.Token()
	if err != nil || token != sess.Token {
		t.Fatalf("expected session token, got %q %v", token, err)
	}

	ev := nextAudit(t, h.audit)
	if ev.EventType != AuditSignedIn || ev.Username != "admin" || !ev.Success {
		t.Fatalf("unexpected audit event %+v", ev)
	}
	if got := h.console.Metrics().Value(MetricSignInSuccess); got != 1 {
		t.Fatalf("expected sign-in success metric 1, got %d", got)
	}
}

func TestConsoleSessionExpiresOnVirtualClock(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	var reasons []session.Reason
	h.console.OnTransition(func(tr session.Transition) {
		reasons = append(reasons, tr.Reason)
	})
	h.signIn(t)

	h.clock.Add(time.Hour - time.Millisecond)
	if h.console.State() != session.Authenticated || h.console.Session() == nil {
		t.Fatal("session should still be live 1ms before expiry")
	}

	h.clock.Add(time.Millisecond)
	if h.console.State() != session.Unauthenticated {
		t.Fatal("session should expire at expiresAt")
	}
	if h.console.Session() != nil {
		t.Fatal("expired session must not be exposed")
	}
	if h.nav.Location() != "/login" || len(h.nav.History()) != 1 {
		t.Fatalf("expected one redirect to /login, got %v", h.nav.History())
	}
	if len(reasons) != 2 || reasons[0] != session.ReasonSignIn || reasons[1] != session.ReasonExpired {
		t.Fatalf("unexpected transitions %v", reasons)
	}
	if _, err := h.console.Token(); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error without session, got %v", err)
	}
	if got := h.console.Metrics().Value(MetricSessionExpired); got != 1 {
		t.Fatalf("expected expired metric 1, got %d", got)
	}
}

func TestConsoleSignInRejectsEmptyCredentials(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	if _, err := h.console.SignIn(context.Background(), "  ", "x"); !errors.Is(err, ErrEmptyCredentials) {
		t.Fatalf("expected ErrEmptyCredentials, got %v", err)
	}
	ev := nextAudit(t, h.audit)
	if ev.EventType != AuditSignInFailed || ev.Success {
		t.Fatalf("unexpected audit event %+v", ev)
	}
	if got := h.console.Metrics().Value(MetricSignInFailure); got != 1 {
		t.Fatalf("expected failure metric 1, got %d", got)
	}
}

func TestConsoleBadPasswordKeepsState(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	sess := h.signIn(t)
	_, err := h.console.SignIn(context.Background(), "admin", "not-the-password")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if cur := h.console.Session(); cur == nil || cur.Token != sess.Token {
		t.Fatal("failed sign-in must keep the existing session")
	}
	if len(h.nav.History()) != 0 {
		t.Fatalf("failed sign-in must not navigate, got %v", h.nav.History())
	}
}

func TestConsoleUnauthorizedCallSignsOut(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()
	ctx := context.Background()

	sess := h.signIn(t)
	h.backend.Revoke(sess.Token)

	_, err := Authorized(ctx, h.console, func(ctx context.Context, token string) (api.List[schema.Supplier], error) {
		return h.console.Suppliers().List(ctx, token, api.Page{})
	})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if h.console.State() != session.Unauthenticated {
		t.Fatal("auth error should end the session")
	}
	if h.nav.Location() != "/login" {
		t.Fatalf("expected redirect to /login, got %q", h.nav.Location())
	}
	if got := h.console.Metrics().Value(MetricUnauthorized); got != 1 {
		t.Fatalf("expected unauthorized metric 1, got %d", got)
	}
	if got := h.console.Metrics().Value(MetricRequestAuthError); got != 1 {
		t.Fatalf("expected request auth error metric 1, got %d", got)
	}
}

func TestConsoleContractDriftKeepsSession(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()
	ctx := context.Background()

	h.signIn(t)
	h.backend.SetDrift(true)

	_, err := Authorized(ctx, h.console, func(ctx context.Context, token string) (schema.Supplier, error) {
		return h.console.Suppliers().Get(ctx, token, 1)
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.console.State() != session.Authenticated {
		t.Fatal("validation error must not end the session")
	}
	if got := h.console.Metrics().Value(MetricRequestValidationError); got != 1 {
		t.Fatalf("expected validation metric 1, got %d", got)
	}
}

func TestConsoleMe(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	if _, err := h.console.Me(context.Background()); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error without session, got %v", err)
	}

	h.signIn(t)
	user, err := h.console.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Username != "admin" || user.Role.Role == nil {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestConsoleRestoresFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	useRedis := func(b *Builder) {
		cfg := b.config
		cfg.Storage.Backend = StorageRedis
		cfg.Storage.RedisAddr = mr.Addr()
		b.WithConfig(cfg).WithRedis(rdb)
	}

	first, cleanup := newConsoleHarness(t, useRedis)
	sess := first.signIn(t)
	cleanup()

	if !mr.Exists("console:session") {
		t.Fatal("expected durable entry under console:session")
	}

	second, cleanup := newConsoleHarness(t, useRedis)
	defer cleanup()

	restored, err := second.console.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if restored == nil || restored.Token != sess.Token {
		t.Fatalf("expected restored session, got %+v", restored)
	}
	if second.console.State() != session.Authenticated {
		t.Fatal("expected authenticated after restore")
	}
	if got := second.console.Metrics().Value(MetricSessionRestored); got != 1 {
		t.Fatalf("expected restored metric 1, got %d", got)
	}
}

func TestConsoleResolveExpiry(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()
	h.clock.Add(10 * time.Second)

	tokens, err := jwt.NewManager(jwt.Config{
		TTL:    time.Minute,
		Secret: []byte("0123456789abcdef"),
		Now:    h.clock.Now,
	})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	token, exp, err := tokens.Issue(1, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	at := int64(123456)
	in := int64(30)
	huge := int64(math.MaxInt64)
	hugeNeg := int64(math.MinInt64)
	tests := []struct {
		name string
		data schema.LoginData
		want int64
	}{
		{"expires_at wins", schema.LoginData{Token: token, ExpiresAt: &at, ExpiresIn: &in}, at},
		{"expires_in from now", schema.LoginData{Token: token, ExpiresIn: &in}, 40_000},
		{"expires_in saturates", schema.LoginData{Token: token, ExpiresIn: &huge}, math.MaxInt64},
		{"negative expires_in saturates", schema.LoginData{Token: token, ExpiresIn: &hugeNeg}, math.MinInt64},
		{"token exp claim", schema.LoginData{Token: token}, exp.UnixMilli()},
		{"default ttl", schema.LoginData{Token: "opaque"}, 10_000 + (8 * time.Hour).Milliseconds()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.console.resolveExpiry(tc.data); got != tc.want {
				t.Fatalf("resolveExpiry = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestConsoleSignInExpiredSession(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()

	h.clock.Add(48 * time.Hour)

	past := int64(1000)
	sess := &session.Session{Token: "t", ExpiresAt: past}
	if err := h.console.lifecycle.Establish(context.Background(), sess); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if h.console.State() != session.Unauthenticated {
		t.Fatal("expired session must not be established")
	}
}

func TestConsoleSignOutAndClose(t *testing.T) {
	h, cleanup := newConsoleHarness(t, nil)
	defer cleanup()
	ctx := context.Background()

	h.signIn(t)
	if err := h.console.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := h.console.SignOut(ctx); err != nil {
		t.Fatalf("second sign out should be a no-op: %v", err)
	}
	if got := h.console.Metrics().Value(MetricSignOut); got != 1 {
		t.Fatalf("expected one sign-out, got %d", got)
	}

	if err := h.console.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.console.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := h.console.SignIn(ctx, "admin", "admin-password"); !errors.Is(err, ErrConsoleClosed) {
		t.Fatalf("expected ErrConsoleClosed, got %v", err)
	}
}

func TestBuilderSingleUseAndValidation(t *testing.T) {
	b := New().WithLogger(zerolog.Nop())
	c, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("expected ErrBuilderUsed, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.API.BaseURL = "not a url"
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected invalid config to fail Build")
	}
}

func TestBuilderSQLiteBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = StorageSQLite
	cfg.Storage.SQLitePath = t.TempDir() + "/console.db"

	c, err := New().WithConfig(cfg).WithLogger(zerolog.Nop()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := c.storage.(*session.SQLiteStorage); !ok {
		t.Fatalf("expected sqlite storage, got %T", c.storage)
	}
	if len(c.closers) != 1 {
		t.Fatalf("expected sqlite closer registered, got %d", len(c.closers))
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
