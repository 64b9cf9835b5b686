package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goSession/schema"
)

// Backend paths of the authentication endpoints.
const (
	SignInPath = "/auth/login"
	MePath     = "/auth/me"
)

// AuthAPI performs the sign-in exchange and reads the current user.
type AuthAPI struct {
	client *Client
	login  *schema.ObjectDescriptor
	me     *schema.ObjectDescriptor
}

// NewAuthAPI returns the authentication operations of c.
func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{
		client: c,
		login:  schema.Envelope(schema.LoginDataSchema),
		me:     schema.Envelope(schema.UserSchema),
	}
}

// SignIn exchanges credentials for a bearer token. Rejected credentials
// surface as an Auth error (status 401).
func (a *AuthAPI) SignIn(ctx context.Context, req schema.LoginRequest) (schema.LoginData, error) {
	env, err := Invoke[schema.LoginData](ctx, a.client, Call{
		Op:         "auth.sign_in",
		Method:     http.MethodPost,
		Path:       SignInPath,
		Body:       req,
		BodySchema: schema.LoginRequestSchema,
		Response:   a.login,
	})
	return data(env, err, "auth.sign_in")
}

// Me returns the user owning token.
func (a *AuthAPI) Me(ctx context.Context, token string) (schema.User, error) {
	env, err := Invoke[schema.User](ctx, a.client, Call{
		Op:       "auth.me",
		Method:   http.MethodGet,
		Path:     MePath,
		Token:    token,
		Response: a.me,
	})
	return data(env, err, "auth.me")
}
