package goSession

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/schema"
	"github.com/MrEthical07/goSession/session"
)

// Console is the administration console core: a validated API client bound
// to a time-bounded session.
//
// Console is safe for concurrent use. Build one with [New].
type Console struct {
	config  Config
	logger  zerolog.Logger
	metrics *Metrics
	audit   *auditDispatcher
	clock   clock.Clock

	storage   session.Storage
	store     *session.Store
	lifecycle *session.Lifecycle

	client    *api.Client
	auth      *api.AuthAPI
	suppliers *api.Resource[schema.Supplier, schema.SupplierInput]
	users     *api.Resource[schema.User, schema.UserInput]
	roles     *api.Resource[schema.Role, schema.RoleInput]

	closers   []func() error
	closed    atomic.Bool
	closeOnce sync.Once
}

/*
====================================
SESSION
====================================
*/

// Start restores a persisted session, if any. Call it once after Build.
func (c *Console) Start(ctx context.Context) (*session.Session, error) {
	if c.closed.Load() {
		return nil, ErrConsoleClosed
	}
	sess, err := c.lifecycle.Restore(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("session restore failed")
		return nil, err
	}
	return sess, nil
}

// SignIn exchanges credentials for a session and establishes it. A failed
// sign-in leaves any held session untouched.
func (c *Console) SignIn(ctx context.Context, username, password string) (*session.Session, error) {
	if c.closed.Load() {
		return nil, ErrConsoleClosed
	}
	if strings.TrimSpace(username) == "" || password == "" {
		c.signInFailed(ctx, username, ErrEmptyCredentials)
		return nil, ErrEmptyCredentials
	}

	data, err := c.auth.SignIn(ctx, schema.LoginRequest{Username: username, Password: password})
	if err != nil {
		c.signInFailed(ctx, username, err)
		return nil, err
	}

	sess := &session.Session{
		Token:     data.Token,
		User:      data.User,
		ExpiresAt: c.resolveExpiry(data),
	}
	if err := c.lifecycle.Establish(ctx, sess); err != nil {
		c.signInFailed(ctx, username, err)
		return nil, err
	}
	return sess, nil
}

// resolveExpiry picks the session expiry in epoch milliseconds: an explicit
// expires_at, then expires_in seconds, then the token's exp claim, then
// Session.DefaultTTL. The first present source wins even if already past.
func (c *Console) resolveExpiry(data schema.LoginData) int64 {
	now := c.clock.Now()
	switch {
	case data.ExpiresAt != nil:
		return *data.ExpiresAt
	case data.ExpiresIn != nil:
		return addSeconds(now.UnixMilli(), *data.ExpiresIn)
	}
	if exp, ok := jwt.ExpiresAt(data.Token); ok {
		return exp.UnixMilli()
	}
	return now.Add(c.config.Session.DefaultTTL).UnixMilli()
}

// addSeconds adds secs to an epoch-millisecond instant, saturating at the
// int64 bounds.
func addSeconds(ms, secs int64) int64 {
	const limit = math.MaxInt64 / 1000
	switch {
	case secs > limit:
		return math.MaxInt64
	case secs < -limit:
		return math.MinInt64
	}
	d := secs * 1000
	sum := ms + d
	switch {
	case d > 0 && sum < ms:
		return math.MaxInt64
	case d < 0 && sum > ms:
		return math.MinInt64
	}
	return sum
}

func (c *Console) signInFailed(ctx context.Context, username string, err error) {
	c.metrics.Inc(MetricSignInFailure)
	c.audit.Emit(ctx, AuditEvent{
		Timestamp: c.clock.Now(),
		EventType: AuditSignInFailed,
		Username:  username,
		Success:   false,
		Error:     err.Error(),
	})
	c.logger.Warn().Err(err).Str("username", username).Str("kind", api.KindOf(err).String()).Msg("sign-in failed")
}

// SignOut ends the session. Signing out without a session is a no-op.
func (c *Console) SignOut(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConsoleClosed
	}
	return c.lifecycle.SignOut(ctx)
}

// Session returns the live session, or nil.
func (c *Console) Session() *session.Session {
	return c.store.Current()
}

// State returns the lifecycle state.
func (c *Console) State() session.State {
	return c.lifecycle.State()
}

// SignInPath returns where lost sessions navigate to.
func (c *Console) SignInPath() string {
	return c.lifecycle.SignInPath()
}

// OnTransition registers fn to observe session transitions.
func (c *Console) OnTransition(fn func(session.Transition)) {
	c.lifecycle.OnTransition(fn)
}

// Token returns the bearer token of the live session or an Auth error.
func (c *Console) Token() (string, error) {
	sess := c.store.Current()
	if sess == nil {
		return "", api.AuthRequired("session.token", "")
	}
	return sess.Token, nil
}

/*
====================================
API
====================================
*/

// Authorized runs fn with the live session token. An Auth error from fn
// ends the session and navigates to the sign-in path.
func Authorized[T any](ctx context.Context, c *Console, fn func(ctx context.Context, token string) (T, error)) (T, error) {
	var zero T
	if c.closed.Load() {
		return zero, ErrConsoleClosed
	}
	token, err := c.Token()
	if err != nil {
		c.lifecycle.HandleError(ctx, err)
		return zero, err
	}
	out, err := fn(ctx, token)
	if err != nil {
		c.lifecycle.HandleError(ctx, err)
		return zero, err
	}
	return out, nil
}

// Me returns the signed-in user as the backend currently sees it.
func (c *Console) Me(ctx context.Context) (schema.User, error) {
	return Authorized(ctx, c, c.auth.Me)
}

// Suppliers returns the supplier resource.
func (c *Console) Suppliers() *api.Resource[schema.Supplier, schema.SupplierInput] {
	return c.suppliers
}

// Users returns the user resource.
func (c *Console) Users() *api.Resource[schema.User, schema.UserInput] {
	return c.users
}

// Roles returns the role resource.
func (c *Console) Roles() *api.Resource[schema.Role, schema.RoleInput] {
	return c.roles
}

// Client returns the underlying API client.
func (c *Console) Client() *api.Client {
	return c.client
}

// ObserveCall implements [api.Observer].
func (c *Console) ObserveCall(op string, elapsed time.Duration, err error) {
	c.metrics.Observe(MetricRequestLatency, elapsed)
	if err == nil {
		c.metrics.Inc(MetricRequestSuccess)
		c.logger.Debug().Str("op", op).Dur("elapsed", elapsed).Msg("api call")
		return
	}

	kind := api.KindOf(err)
	switch kind {
	case api.KindNetwork:
		c.metrics.Inc(MetricRequestNetworkError)
	case api.KindParse:
		c.metrics.Inc(MetricRequestParseError)
	case api.KindAPI:
		c.metrics.Inc(MetricRequestAPIError)
	case api.KindAuth:
		c.metrics.Inc(MetricRequestAuthError)
	case api.KindValidation:
		c.metrics.Inc(MetricRequestValidationError)
	case api.KindInvalidRequest:
		c.metrics.Inc(MetricRequestInvalid)
	}

	if kind == api.KindValidation {
		ev := c.logger.Error().Err(err).Str("op", op).Bool("contract_drift", true)
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			ev = ev.Strs("paths", apiErr.Violations.Paths())
		}
		ev.Msg("response failed schema validation")
		return
	}
	c.logger.Warn().Err(err).Str("op", op).Str("kind", kind.String()).Dur("elapsed", elapsed).Msg("api call failed")
}

/*
====================================
OBSERVABILITY
====================================
*/

func (c *Console) onTransition(t session.Transition) {
	event := AuditEvent{
		Timestamp: t.At,
		Success:   true,
	}
	if t.Session != nil {
		event.UserID = t.Session.User.ID
		event.Username = t.Session.User.Username
		event.ExpiresAt = t.Session.ExpiresAt
	}
	if t.Err != nil {
		event.Error = t.Err.Error()
	}

	switch t.Reason {
	case session.ReasonSignIn:
		c.metrics.Inc(MetricSignInSuccess)
		event.EventType = AuditSignedIn
	case session.ReasonRestore:
		c.metrics.Inc(MetricSessionRestored)
		event.EventType = AuditRestored
	case session.ReasonSignOut:
		c.metrics.Inc(MetricSignOut)
		event.EventType = AuditSignedOut
	case session.ReasonExpired:
		c.metrics.Inc(MetricSessionExpired)
		event.EventType = AuditExpired
	case session.ReasonUnauthorized:
		c.metrics.Inc(MetricUnauthorized)
		event.EventType = AuditUnauthorized
	}
	c.audit.Emit(context.Background(), event)

	log := c.logger.Info()
	if t.Err != nil {
		log = c.logger.Error().Err(t.Err)
	}
	log.Str("from", t.From.String()).
		Str("to", t.To.String()).
		Str("reason", string(t.Reason)).
		Str("username", event.Username).
		Msg("session transition")
}

// Metrics returns the console metrics.
func (c *Console) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot copies the current metric values.
func (c *Console) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (c *Console) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close stops the expiry timer, drains audit events and closes storage the
// console opened. The persisted session survives Close.
func (c *Console) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.lifecycle.Close()
		c.audit.Close()
		for _, closer := range c.closers {
			if err := closer(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
