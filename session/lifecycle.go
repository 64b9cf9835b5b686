package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/MrEthical07/goSession/api"
)

// State is the authentication state of a [Lifecycle].
type State int

const (
	// Unauthenticated means no session is held.
	Unauthenticated State = iota
	// Authenticated means a live session is held and its expiry timer is armed.
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Reason names what caused a transition.
type Reason string

const (
	ReasonSignIn       Reason = "sign_in"
	ReasonRestore      Reason = "restore"
	ReasonSignOut      Reason = "sign_out"
	ReasonExpired      Reason = "expired"
	ReasonUnauthorized Reason = "unauthorized"
)

// Transition describes one state change. Session is the session entering
// (for Authenticated) or leaving (for Unauthenticated).
type Transition struct {
	From    State
	To      State
	Reason  Reason
	Session *Session
	At      time.Time
	// Err is set when clearing the durable entry failed on exit.
	Err error
}

// DefaultSignInPath is where the user is sent when a session is lost.
const DefaultSignInPath = "/login"

// Lifecycle enforces the time-boundedness of the session held by a [Store].
//
// Transitions are serialized; navigation and listeners run after the
// internal lock is released, in registration order.
type Lifecycle struct {
	store      *Store
	clock      clock.Clock
	nav        Navigator
	signInPath string
	opTimeout  time.Duration

	mu        sync.Mutex
	state     State
	session   *Session
	timer     *clock.Timer
	gen       uint64
	listeners []func(Transition)
}

// LifecycleOption configures a [Lifecycle].
type LifecycleOption func(*Lifecycle)

// WithNavigator sets the navigator used for sign-in redirects.
func WithNavigator(n Navigator) LifecycleOption {
	return func(l *Lifecycle) { l.nav = n }
}

// WithSignInPath overrides [DefaultSignInPath].
func WithSignInPath(path string) LifecycleOption {
	return func(l *Lifecycle) {
		if path != "" {
			l.signInPath = path
		}
	}
}

// WithStorageTimeout bounds the storage delete performed when the expiry
// timer fires.
func WithStorageTimeout(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d > 0 {
			l.opTimeout = d
		}
	}
}

// NewLifecycle returns an Unauthenticated lifecycle over store, sharing the
// store's clock.
func NewLifecycle(store *Store, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:      store,
		clock:      store.Clock(),
		signInPath: DefaultSignInPath,
		opTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SignInPath returns the redirect target for lost sessions.
func (l *Lifecycle) SignInPath() string { return l.signInPath }

// OnTransition registers fn to observe every transition.
func (l *Lifecycle) OnTransition(fn func(Transition)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Establish adopts a freshly signed-in session. A session that is already
// expired is rejected with [ErrSessionExpired] and the state is unchanged.
func (l *Lifecycle) Establish(ctx context.Context, sess *Session) error {
	l.mu.Lock()
	if err := l.store.Replace(ctx, sess); err != nil {
		l.mu.Unlock()
		return err
	}
	events := l.enterLocked(ctx, sess, ReasonSignIn)
	l.mu.Unlock()

	l.emit(events)
	return nil
}

// Restore rehydrates the session from durable storage. It returns the
// restored session, or nil when storage held none. Restoring while
// Authenticated replaces the held session with the stored one.
func (l *Lifecycle) Restore(ctx context.Context) (*Session, error) {
	l.mu.Lock()
	sess, err := l.store.Load(ctx)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	var events []Transition
	if sess == nil {
		if l.state == Authenticated {
			events = l.exitLocked(ctx, ReasonExpired, nil)
		}
	} else {
		events = l.enterLocked(ctx, sess, ReasonRestore)
	}
	l.mu.Unlock()

	l.emit(events)
	return sess, nil
}

// SignOut clears the session. Calling it while Unauthenticated is a no-op.
// The returned error reports a failed durable delete; the in-memory state is
// cleared regardless.
func (l *Lifecycle) SignOut(ctx context.Context) error {
	return l.exit(ctx, ReasonSignOut)
}

// HandleError signs out when err is an Auth error and reports whether it did
// so (or would have, had a session been held).
func (l *Lifecycle) HandleError(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrAuth) {
		return false
	}
	_ = l.exit(ctx, ReasonUnauthorized)
	return true
}

// Close cancels the pending expiry timer without touching the session or the
// durable entry, so a later [Lifecycle.Restore] can pick the session up again.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelTimerLocked()
}

func (l *Lifecycle) exit(ctx context.Context, reason Reason) error {
	l.mu.Lock()
	if l.state != Authenticated {
		l.mu.Unlock()
		return nil
	}
	events := l.exitLocked(ctx, reason, nil)
	l.mu.Unlock()

	l.emit(events)
	return events[len(events)-1].Err
}

// enterLocked moves to Authenticated with sess and arms its timer. A session
// with no time left exits immediately.
func (l *Lifecycle) enterLocked(ctx context.Context, sess *Session, reason Reason) []Transition {
	l.cancelTimerLocked()
	from := l.state
	l.state = Authenticated
	l.session = sess
	now := l.clock.Now()
	events := []Transition{{From: from, To: Authenticated, Reason: reason, Session: sess, At: now}}

	d := sess.Remaining(now)
	if d <= 0 {
		return l.exitLocked(ctx, ReasonExpired, events)
	}
	gen := l.gen
	l.timer = l.clock.AfterFunc(d, func() { l.expire(gen) })
	return events
}

// exitLocked cancels the timer, then clears the store and moves to
// Unauthenticated.
func (l *Lifecycle) exitLocked(ctx context.Context, reason Reason, events []Transition) []Transition {
	l.cancelTimerLocked()
	prev := l.session
	l.session = nil
	l.state = Unauthenticated
	err := l.store.Replace(ctx, nil)
	return append(events, Transition{
		From:    Authenticated,
		To:      Unauthenticated,
		Reason:  reason,
		Session: prev,
		At:      l.clock.Now(),
		Err:     err,
	})
}

// cancelTimerLocked stops the pending timer and invalidates its generation.
func (l *Lifecycle) cancelTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.gen++
}

func (l *Lifecycle) expire(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || l.state != Authenticated {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.opTimeout)
	defer cancel()
	events := l.exitLocked(ctx, ReasonExpired, nil)
	l.mu.Unlock()

	l.emit(events)
}

func (l *Lifecycle) emit(events []Transition) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, ev := range events {
		if ev.To == Unauthenticated && l.nav != nil && l.nav.Location() != l.signInPath {
			l.nav.Navigate(l.signInPath)
		}
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
