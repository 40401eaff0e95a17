package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/duccv/contact-addin/internal/model/response"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
	KindServer
	KindNetwork
	KindTimeout
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindValidation:     "validation",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindNotFound:       "not_found",
	KindConflict:       "conflict",
	KindRateLimited:    "rate_limited",
	KindServer:         "server",
	KindNetwork:        "network",
	KindTimeout:        "timeout",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Default user-facing messages, used when the server supplies none.
var defaultMessages = map[Kind]string{
	KindUnknown:        "An unexpected error occurred. Please try again.",
	KindValidation:     "Please check your input and try again.",
	KindAuthentication: "Authentication failed. Please log in again.",
	KindAuthorization:  "You do not have permission to access this resource.",
	KindNotFound:       "The requested resource was not found.",
	KindConflict:       "The resource already exists.",
	KindRateLimited:    "Too many requests. Please try again later.",
	KindServer:         "Server error. Please try again later.",
	KindNetwork:        "Network error. Please check your connection and try again.",
	KindTimeout:        "Request timed out. Please try again.",
}

// APIError is the only error type the gateway and session return for
// request failures. Status is zero when no response was received.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Details []response.FieldError
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches another *APIError by kind, and by status and message when the
// target sets them. The bare Err* sentinels therefore match any error of
// their kind.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind &&
		(t.Status == 0 || t.Status == e.Status) &&
		(t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation     = &APIError{Kind: KindValidation}
	ErrAuthentication = &APIError{Kind: KindAuthentication}
	ErrAuthorization  = &APIError{Kind: KindAuthorization}
	ErrNotFound       = &APIError{Kind: KindNotFound}
	ErrConflict       = &APIError{Kind: KindConflict}
	ErrRateLimited    = &APIError{Kind: KindRateLimited}
	ErrServer         = &APIError{Kind: KindServer}
	ErrNetwork        = &APIError{Kind: KindNetwork}
	ErrTimeout        = &APIError{Kind: KindTimeout}

	// ErrTooManyAttempts is the local login lockout. No request is sent.
	ErrTooManyAttempts = &APIError{Kind: KindRateLimited, Message: "Too many login attempts. Please try again later."}
	// ErrAuthRequired rejects a protected call made without a session.
	ErrAuthRequired = &APIError{Kind: KindAuthentication, Message: "Authentication required"}
)

func newError(kind Kind, message string, err error) *APIError {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &APIError{Kind: kind, Message: message, Err: err}
}

func validationError(details []response.FieldError) *APIError {
	msg := defaultMessages[KindValidation]
	if len(details) > 0 {
		msg = details[0].Message
	}
	return &APIError{Kind: KindValidation, Message: msg, Details: details}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout:
		return KindTimeout
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// errorFromResponse classifies a non-2xx response. The server's error text
// wins over the default message.
func errorFromResponse(status int, body []byte) *APIError {
	var payload response.ResponseData
	_ = json.Unmarshal(body, &payload)

	kind := kindForStatus(status)
	msg := payload.Error
	if msg == "" {
		msg = defaultMessages[kind]
	}
	return &APIError{Kind: kind, Status: status, Message: msg, Details: payload.Details}
}

// IsTransient reports whether err may succeed on a later attempt.
func IsTransient(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork, KindTimeout, KindServer, KindRateLimited:
		return apiErr != ErrTooManyAttempts
	}
	return false
}
