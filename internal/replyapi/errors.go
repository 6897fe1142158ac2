package replyapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorKind represents the category of a generation failure.
// Kinds are used for logging and retry decisions only; the form
// controller treats every kind the same way.
type ErrorKind int

const (
	// KindNetwork indicates a network-level error (unreachable host, reset connection)
	KindNetwork ErrorKind = iota
	// KindTimeout indicates the request timed out
	KindTimeout
	// KindConnectionRefused indicates nothing is listening at the endpoint
	KindConnectionRefused
	// KindDNS indicates the endpoint host could not be resolved
	KindDNS
	// KindHTTP indicates a non-2xx response
	KindHTTP
	// KindRequest indicates the request could not be built or encoded
	KindRequest
	// KindCanceled indicates the caller cancelled the request
	KindCanceled
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "Network Error"
	case KindTimeout:
		return "Timeout"
	case KindConnectionRefused:
		return "Connection Refused"
	case KindDNS:
		return "DNS Error"
	case KindHTTP:
		return "HTTP Error"
	case KindRequest:
		return "Request Error"
	case KindCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// GenerationError is returned by Client.Generate for every failure.
type GenerationError struct {
	Kind       ErrorKind // Category of error
	Detail     string    // Internal description, for logs
	StatusCode int       // HTTP status code (KindHTTP only)
	Message    string    // Server-supplied message from the response body, may be empty
	Err        error     // Underlying error (if any)
	RequestID  string    // Value of the X-Request-ID header
	Retryable  bool      // Whether retrying might succeed
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	msg := e.Detail
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Detail, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage returns the server-supplied message. The form controller
// shows it instead of its generic fallback when non-empty.
func (e *GenerationError) UserMessage() string {
	return e.Message
}

// ClassifyNetworkError analyzes a transport error and returns a GenerationError
func ClassifyNetworkError(err error) *GenerationError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &GenerationError{
			Kind:   KindCanceled,
			Detail: "request canceled",
			Err:    err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &GenerationError{
			Kind:      KindTimeout,
			Detail:    "request timed out",
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &GenerationError{
			Kind:   KindDNS,
			Detail: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:    err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &GenerationError{
				Kind:      KindConnectionRefused,
				Detail:    "endpoint refused connection",
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &GenerationError{
				Kind:      KindNetwork,
				Detail:    "host unreachable",
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &GenerationError{
				Kind:      KindNetwork,
				Detail:    "network unreachable",
				Err:       err,
				Retryable: true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		// Recursively classify the underlying error
		classified := ClassifyNetworkError(urlErr.Err)
		classified.Err = err
		return classified
	}

	return &GenerationError{
		Kind:      KindNetwork,
		Detail:    "network error occurred",
		Err:       err,
		Retryable: true,
	}
}

// NewHTTPError creates an error for a non-2xx response.
// 5xx and 429 responses are retryable; other statuses are not.
func NewHTTPError(statusCode int, message string) *GenerationError {
	return &GenerationError{
		Kind:       KindHTTP,
		Detail:     fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)),
		StatusCode: statusCode,
		Message:    message,
		Retryable:  statusCode >= 500 || statusCode == http.StatusTooManyRequests,
	}
}

// NewRequestError creates an error for a request that could not be built
func NewRequestError(detail string, err error) *GenerationError {
	return &GenerationError{
		Kind:   KindRequest,
		Detail: detail,
		Err:    err,
	}
}

// asGenerationError extracts a GenerationError from an error chain
func asGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// IsHTTPError checks if an error is a non-2xx response
func IsHTTPError(err error) bool {
	genErr, ok := asGenerationError(err)
	return ok && genErr.Kind == KindHTTP
}

// IsTimeout checks if an error is a request timeout
func IsTimeout(err error) bool {
	genErr, ok := asGenerationError(err)
	return ok && genErr.Kind == KindTimeout
}

// IsNetworkError checks if an error happened below HTTP
func IsNetworkError(err error) bool {
	genErr, ok := asGenerationError(err)
	if !ok {
		return false
	}
	switch genErr.Kind {
	case KindNetwork, KindTimeout, KindConnectionRefused, KindDNS:
		return true
	default:
		return false
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	genErr, ok := asGenerationError(err)
	return ok && genErr.Retryable
}

// StatusCode returns the HTTP status of err, or 0 when it has none
func StatusCode(err error) int {
	if genErr, ok := asGenerationError(err); ok {
		return genErr.StatusCode
	}
	return 0
}
