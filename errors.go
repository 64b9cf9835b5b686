package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrBuilderUsed is returned by a second call to [Builder.Build].
	ErrBuilderUsed = errors.New("builder already used")
	// ErrConsoleClosed is returned by operations on a closed [Console].
	ErrConsoleClosed = errors.New("console closed")
	// ErrEmptyCredentials is returned by [Console.SignIn] for a blank username or password.
	ErrEmptyCredentials = errors.New("username and password are required")
)

// Classified API errors, re-exported so callers need only this package.
var (
	ErrNetwork        = api.ErrNetwork
	ErrParse          = api.ErrParse
	ErrAPI            = api.ErrAPI
	ErrAuth           = api.ErrAuth
	ErrValidation     = api.ErrValidation
	ErrInvalidRequest = api.ErrInvalidRequest
)

// ErrSessionExpired is returned when a sign-in yields an already expired session.
var ErrSessionExpired = session.ErrSessionExpired
