package api

import (
	"errors"
	"strconv"

	"github.com/MrEthical07/goSession/schema"
)

// Kind classifies an [*Error].
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindParse means the response body was not valid JSON.
	KindParse
	// KindAPI means the backend answered with a non-2xx status.
	KindAPI
	// KindAuth is a KindAPI failure with status 401, or a call attempted without a live session.
	KindAuth
	// KindValidation means a 2xx body did not match its descriptor (contract drift).
	KindValidation
	// KindInvalidRequest means a request body failed its descriptor before sending.
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindAPI:
		return "api"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

var (
	// ErrNetwork matches errors of kind KindNetwork.
	ErrNetwork = errors.New("network error")
	// ErrParse matches errors of kind KindParse.
	ErrParse = errors.New("response is not valid JSON")
	// ErrAPI matches errors of kind KindAPI and KindAuth.
	ErrAPI = errors.New("api request failed")
	// ErrAuth matches errors of kind KindAuth.
	ErrAuth = errors.New("authentication required")
	// ErrValidation matches errors of kind KindValidation.
	ErrValidation = errors.New("response failed schema validation")
	// ErrInvalidRequest matches errors of kind KindInvalidRequest.
	ErrInvalidRequest = errors.New("request failed schema validation")
)

// DefaultFailureMessage is used when a failed response carries no string message.
const DefaultFailureMessage = "API request failed"

// Error is the classified failure of one API operation.
type Error struct {
	Kind       Kind
	Op         string
	Status     int
	Message    string
	Violations schema.Violations
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg += " (status " + strconv.Itoa(e.Status) + ")"
	}
	switch {
	case len(e.Violations) > 0:
		msg += ": " + e.Violations.Error()
	case e.Message != "":
		msg += ": " + e.Message
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps the kind to its sentinel. An Auth error also matches [ErrAPI].
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrParse:
		return e.Kind == KindParse
	case ErrAPI:
		return e.Kind == KindAPI || e.Kind == KindAuth
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrInvalidRequest:
		return e.Kind == KindInvalidRequest
	}
	return false
}

// KindOf returns the kind of the first [*Error] in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// AuthRequired builds the Auth error returned when an operation is attempted
// without a live session.
func AuthRequired(op, message string) *Error {
	if message == "" {
		message = "no active session"
	}
	return &Error{Kind: KindAuth, Op: op, Message: message}
}
