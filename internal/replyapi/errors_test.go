package replyapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/emailreply/internal/form"
)

// timeoutError is a net.Error that reports a timeout
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func postError(inner error) error {
	return &url.Error{Op: "Post", URL: "http://localhost:8080/api/email/response", Err: inner}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  ErrorKind
		retryable bool
	}{
		{
			name:      "timeout",
			err:       postError(&net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}),
			wantKind:  KindTimeout,
			retryable: true,
		},
		{
			name:      "deadline exceeded",
			err:       postError(context.DeadlineExceeded),
			wantKind:  KindTimeout,
			retryable: true,
		},
		{
			name:     "canceled",
			err:      postError(context.Canceled),
			wantKind: KindCanceled,
		},
		{
			name:      "connection refused",
			err:       postError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}),
			wantKind:  KindConnectionRefused,
			retryable: true,
		},
		{
			name:      "host unreachable",
			err:       postError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}),
			wantKind:  KindNetwork,
			retryable: true,
		},
		{
			name:     "dns",
			err:      postError(&net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Name: "reply.invalid", Err: "no such host"}}),
			wantKind: KindDNS,
		},
		{
			name:      "unknown",
			err:       errors.New("something odd"),
			wantKind:  KindNetwork,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genErr := ClassifyNetworkError(tt.err)
			if genErr == nil {
				t.Fatal("Expected GenerationError, got nil")
			}
			if genErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", genErr.Kind, tt.wantKind)
			}
			if genErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", genErr.Retryable, tt.retryable)
			}
			if !errors.Is(genErr, tt.err) {
				t.Error("classified error should wrap the original")
			}
			if genErr.UserMessage() != "" {
				t.Errorf("UserMessage() = %q, transport errors carry no server message", genErr.UserMessage())
			}
		})
	}
}

func TestClassifyNetworkError_Nil(t *testing.T) {
	if ClassifyNetworkError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestNewHTTPError(t *testing.T) {
	err := NewHTTPError(400, "Email content required")

	if err.Kind != KindHTTP {
		t.Errorf("Kind = %v, want KindHTTP", err.Kind)
	}
	if err.Retryable {
		t.Error("400 should not be retryable")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "Email content required") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !NewHTTPError(503, "").Retryable {
		t.Error("503 should be retryable")
	}
}

func TestErrorKind_String(t *testing.T) {
	if KindConnectionRefused.String() != "Connection Refused" {
		t.Errorf("String() = %q", KindConnectionRefused.String())
	}
	if ErrorKind(99).String() != "ErrorKind(99)" {
		t.Errorf("String() = %q", ErrorKind(99).String())
	}
}

func TestHelpers(t *testing.T) {
	httpErr := fmt.Errorf("generate: %w", NewHTTPError(502, "upstream down"))
	timeoutErr := ClassifyNetworkError(context.DeadlineExceeded)
	plain := errors.New("plain")

	if !IsHTTPError(httpErr) || IsHTTPError(timeoutErr) || IsHTTPError(plain) {
		t.Error("IsHTTPError misclassified")
	}
	if !IsTimeout(timeoutErr) || IsTimeout(httpErr) {
		t.Error("IsTimeout misclassified")
	}
	if !IsNetworkError(timeoutErr) || IsNetworkError(httpErr) || IsNetworkError(plain) {
		t.Error("IsNetworkError misclassified")
	}
	if !IsRetryable(httpErr) || IsRetryable(plain) {
		t.Error("IsRetryable misclassified")
	}
	if StatusCode(httpErr) != 502 || StatusCode(plain) != 0 {
		t.Error("StatusCode misreported")
	}
}

func TestMessageFor_UsesServerMessage(t *testing.T) {
	if got := form.MessageFor(NewHTTPError(400, "Email content required")); got != "Email content required" {
		t.Errorf("MessageFor() = %q", got)
	}
	if got := form.MessageFor(NewHTTPError(500, "")); got != form.FallbackErrorMessage {
		t.Errorf("MessageFor() = %q, want fallback", got)
	}
}
