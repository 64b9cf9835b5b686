package goSession

import (
	"context"
	"fmt"

	"github.com/facebookgo/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/schema"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/transport"
)

// Builder assembles a [Console]. Every collaborator is optional; missing
// ones are derived from the config.
type Builder struct {
	config Config

	storage        session.Storage
	redis          redis.UniversalClient
	transport      transport.Transport
	tracerProvider trace.TracerProvider
	clock          clock.Clock
	navigator      session.Navigator
	auditSink      AuditSink
	logger         *zerolog.Logger

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets the durable storage, overriding Storage.Backend.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis supplies the client for the redis backend. The console does not
// close a client it was given.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTransport replaces the HTTP transport.
func (b *Builder) WithTransport(t transport.Transport) *Builder {
	b.transport = t
	return b
}

// WithTracerProvider sets the provider for transport spans.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithClock sets the clock for expiry checks and timers.
func (b *Builder) WithClock(c clock.Clock) *Builder {
	b.clock = c
	return b
}

// WithNavigator sets the navigator used for sign-in redirects.
func (b *Builder) WithNavigator(n session.Navigator) *Builder {
	b.navigator = n
	return b
}

// WithAuditSink sets the audit sink. Audit.Enabled must also be set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger replaces the logger built from Logging config.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// Build validates the config and wires the console. A builder can be used once.
func (b *Builder) Build() (*Console, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var logger zerolog.Logger
	if b.logger != nil {
		logger = *b.logger
	} else {
		l, err := NewLogger(cfg.Logging, nil)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	c := &Console{
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	// -------- STORAGE --------
	storage, err := b.buildStorage(cfg, c)
	if err != nil {
		c.audit.Close()
		return nil, err
	}
	c.storage = storage

	// -------- TRANSPORT --------
	tr := b.transport
	if tr == nil {
		opts := []transport.Option{
			transport.WithTimeout(cfg.API.Timeout),
			transport.WithUserAgent(cfg.API.UserAgent),
			transport.WithMaxBodyBytes(cfg.API.MaxBodyBytes),
		}
		if b.tracerProvider != nil {
			opts = append(opts, transport.WithTracerProvider(b.tracerProvider))
		}
		tr = transport.NewHTTPTransport(opts...)
	}

	// -------- SESSION --------
	clk := b.clock
	if clk == nil {
		clk = clock.New()
	}
	c.clock = clk
	c.store = session.NewStore(storage,
		session.WithKey(cfg.Session.StorageKey),
		session.WithClock(clk),
	)
	lcOpts := []session.LifecycleOption{
		session.WithSignInPath(cfg.Session.SignInPath),
		session.WithStorageTimeout(cfg.Session.StorageTimeout),
	}
	if b.navigator != nil {
		lcOpts = append(lcOpts, session.WithNavigator(b.navigator))
	}
	c.lifecycle = session.NewLifecycle(c.store, lcOpts...)
	c.lifecycle.OnTransition(c.onTransition)

	// -------- API --------
	c.client = api.NewClient(cfg.API.BaseURL, tr, api.WithObserver(c))
	c.auth = api.NewAuthAPI(c.client)
	c.suppliers = api.NewResource[schema.Supplier, schema.SupplierInput](c.client, "suppliers", "/suppliers", schema.SupplierSchema, schema.SupplierInputSchema)
	c.users = api.NewResource[schema.User, schema.UserInput](c.client, "users", "/users", schema.UserSchema, schema.UserInputSchema)
	c.roles = api.NewResource[schema.Role, schema.RoleInput](c.client, "roles", "/roles", schema.RoleSchema, schema.RoleInputSchema)

	b.built = true

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("storage", storageName(cfg, b.storage)).
		Msg("console built")

	return c, nil
}

func (b *Builder) buildStorage(cfg Config, c *Console) (session.Storage, error) {
	if b.storage != nil {
		return b.storage, nil
	}

	switch cfg.Storage.Backend {
	case StorageSQLite:
		s, err := session.OpenSQLite(context.Background(), cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, s.Close)
		return s, nil
	case StorageRedis:
		rdb := b.redis
		if rdb == nil {
			client := redis.NewClient(&redis.Options{
				Addr: cfg.Storage.RedisAddr,
				DB:   cfg.Storage.RedisDB,
			})
			c.closers = append(c.closers, client.Close)
			rdb = client
		}
		return session.NewRedisStorage(rdb, cfg.Storage.RedisPrefix), nil
	case StorageMemory:
		return session.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported Storage Backend %q", cfg.Storage.Backend)
	}
}

func storageName(cfg Config, custom session.Storage) string {
	if custom != nil {
		return fmt.Sprintf("%T", custom)
	}
	return cfg.Storage.Backend
}
