package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// ValidationError indicates invalid client input
	ValidationError struct {
		Message string
	}

	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ConfigError indicates missing or invalid server configuration.
	// Distinct from client input errors: the caller did nothing wrong.
	ConfigError struct {
		Message string
	}

	// GatewayError indicates the upstream platform or model failed or
	// produced nothing usable.
	GatewayError struct {
		Message string
	}
)

// Error implementations
func (e *ValidationError) Error() string { return e.Message }
func (e *NotFoundError) Error() string   { return e.Message }
func (e *ConfigError) Error() string     { return e.Message }
func (e *GatewayError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ConfigError) StatusCode() int     { return http.StatusInternalServerError }
func (e *GatewayError) StatusCode() int    { return http.StatusBadGateway }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConfig     = errors.New("server configuration missing")
	ErrGateway    = errors.New("upstream failure")
)

// Is allows errors.Is() matching against the sentinels.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ConfigError) Is(target error) bool     { return target == ErrConfig }
func (e *GatewayError) Is(target error) bool    { return target == ErrGateway }
