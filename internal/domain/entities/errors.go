package entities

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnsupportedResourceType is returned by providers without the requested custom resource type.
var ErrUnsupportedResourceType = errors.New("unsupported resource type")

// ConfigurationError is raised before any network call when the adapter cannot build a valid request
// (unsupported credential, unsupported owner type, missing identifiers).
type ConfigurationError struct {
	Reason string
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ValidationError is raised before any network call when the caller's input combination is invalid.
type ValidationError struct {
	Reason string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "bad request: " + e.Reason
}

// AuthenticationError means the provider answered 401.
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

// ClientError is any other non-2xx answer, or a transport failure reported as status 500.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("provider request failed (status %d): %s", e.Status, e.Message)
}

// NewHTTPError translates an HTTP status and message into the normalized taxonomy.
func NewHTTPError(status int, message string) error {
	if status == http.StatusUnauthorized {
		return &AuthenticationError{Status: status, Message: message}
	}
	return &ClientError{Status: status, Message: message}
}

// NewTransportError reports a failure that never produced an HTTP response.
func NewTransportError(err error) error {
	return &ClientError{Status: http.StatusInternalServerError, Message: err.Error()}
}

// IsNotFound tells whether err is a client failure with status 404.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Status == http.StatusNotFound
}
