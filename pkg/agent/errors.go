package agent

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid runner configuration or run parameters. It is
// raised before any provider call and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ConnectionError reports a transport-level failure reaching the provider.
// Always retryable.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection error: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusError reports a provider response with a non-success HTTP status.
// Retryability depends on the code.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Code, e.Message)
}

// retryableStatusCodes are the provider statuses worth another attempt:
// rate limiting and transient server-side failures.
var retryableStatusCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsRetryable classifies an error against the internal taxonomy. Provider
// adapters are responsible for wrapping SDK errors into ConnectionError or
// StatusError; anything else is treated as permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatusCodes[statusErr.Code]
	}

	return false
}
