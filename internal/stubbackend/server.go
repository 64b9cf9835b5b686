package stubbackend

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/schema"
)

// ExpiryMode selects how the sign-in response conveys token lifetime.
type ExpiryMode int

const (
	// ExpiresIn sends expires_in seconds.
	ExpiresIn ExpiryMode = iota
	// ExpiresAt sends expires_at epoch milliseconds.
	ExpiresAt
	// TokenOnly sends neither; the lifetime is only in the token's exp claim.
	TokenOnly
)

// Config configures a [Server].
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	Expiry   ExpiryMode
	Hash     HashParams
	// Now overrides the time source; time.Now when nil.
	Now    func() time.Time
	Logger zerolog.Logger
}

// DefaultConfig returns a config with a fixed development secret and a
// one hour token lifetime.
func DefaultConfig() Config {
	return Config{
		Secret:   []byte("stub-backend-development-secret"),
		TokenTTL: time.Hour,
		Expiry:   ExpiresIn,
		Hash:     DefaultHashParams(),
		Logger:   zerolog.Nop(),
	}
}

var (
	errNotFound  = errors.New("not found")
	errConflict  = errors.New("already exists")
	errBadInput  = errors.New("invalid input")
	errBadCreds  = errors.New("invalid credentials")
	errNoAccount = errors.New("unknown user")
)

type account struct {
	userID int64
	hash   string
}

// Server is an in-memory backend serving the console API.
//
// Server is safe for concurrent use.
type Server struct {
	cfg    Config
	tokens *jwt.Manager
	engine *gin.Engine

	mu        sync.Mutex
	accounts  map[string]account
	revoked   map[string]struct{}
	drift     bool
	roles     *collection[schema.Role]
	users     *collection[schema.User]
	suppliers *collection[schema.Supplier]
}

// New validates cfg and returns a server with no data.
func New(cfg Config) (*Server, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := cfg.Hash.validate(); err != nil {
		return nil, err
	}
	tokens, err := jwt.NewManager(jwt.Config{
		TTL:    cfg.TokenTTL,
		Secret: cfg.Secret,
		Issuer: "stubbackend",
		Now:    cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		tokens:    tokens,
		accounts:  make(map[string]account),
		revoked:   make(map[string]struct{}),
		roles:     newCollection[schema.Role](),
		users:     newCollection[schema.User](),
		suppliers: newCollection[schema.Supplier](),
	}
	s.engine = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Revoke makes token fail authentication from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// SetDrift makes supplier responses send is_active as a string, breaking
// the supplier schema.
func (s *Server) SetDrift(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drift = on
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.POST("/auth/login", s.login)

	authed := r.Group("/", s.requireAuth())
	authed.GET("/auth/me", s.me)

	authed.GET("/suppliers", s.listSuppliers)
	authed.GET("/suppliers/:id", s.getSupplier)
	authed.POST("/suppliers", s.createSupplier)
	authed.PUT("/suppliers/:id", s.updateSupplier)

	authed.GET("/users", s.listUsers)
	authed.GET("/users/:id", s.getUser)
	authed.POST("/users", s.createUser)
	authed.PUT("/users/:id", s.updateUser)

	authed.GET("/roles", s.listRoles)
	authed.GET("/roles/:id", s.getRole)
	authed.POST("/roles", s.createRole)
	authed.PUT("/roles/:id", s.updateRole)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found")
	})
	return r
}

/* ==== MIDDLEWARE ==== */

const userKey = "stubbackend.user"

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		s.mu.Lock()
		_, revoked := s.revoked[token]
		user, found := s.users.get(claims.UserID)
		s.mu.Unlock()
		if revoked || !found || !user.IsActive {
			abortError(c, http.StatusUnauthorized, "session revoked")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.cfg.Logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Dur("latency", time.Since(start)).
			Msg("stub request")
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) <= len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}
	return value[len(bearer):], true
}

/* ==== AUTH ==== */

func (s *Server) login(c *gin.Context) {
	var req schema.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "malformed sign-in request")
		return
	}

	user, err := s.authenticate(req.Username, req.Password)
	if err != nil {
		s.cfg.Logger.Info().Str("username", req.Username).Msg("stub sign-in rejected")
		respondError(c, http.StatusUnauthorized, errBadCreds.Error())
		return
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token issue failed")
		return
	}

	data := gin.H{"token": token, "user": user}
	switch s.cfg.Expiry {
	case ExpiresIn:
		data["expires_in"] = int64(s.tokens.TTL() / time.Second)
	case ExpiresAt:
		data["expires_at"] = exp.UnixMilli()
	}
	respond(c, http.StatusOK, "signed in", data)
}

func (s *Server) authenticate(username, password string) (schema.User, error) {
	s.mu.Lock()
	acct, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok {
		return schema.User{}, errNoAccount
	}

	match, err := verifyPassword(password, acct.hash)
	if err != nil || !match {
		return schema.User{}, errBadCreds
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users.get(acct.userID)
	if !ok || !user.IsActive {
		return schema.User{}, errBadCreds
	}
	return user, nil
}

func (s *Server) me(c *gin.Context) {
	user := c.MustGet(userKey).(schema.User)
	respond(c, http.StatusOK, "ok", user)
}

/* ==== ENVELOPES ==== */

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data":    data,
		"meta":    gin.H{"total_count": total},
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

func abortError(c *gin.Context, status int, message string) {
	respondError(c, status, message)
	c.Abort()
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, errConflict):
		return http.StatusConflict
	case errors.Is(err, errBadInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
