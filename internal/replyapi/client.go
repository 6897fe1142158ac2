package replyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/version"
)

const (
	// DefaultBaseURL is where the reply service listens in a local setup
	DefaultBaseURL = "http://localhost:8080"

	// DefaultPath is the reply-generation route
	DefaultPath = "/api/email/response"

	// DefaultTimeout is the default HTTP request timeout. Generation is
	// slow, so this is much longer than a typical API timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts (none)
	DefaultMaxRetries = 0

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second

	// RequestIDHeader carries the submission ID to the service
	RequestIDHeader = "X-Request-ID"

	// maxResponseSize bounds how much of a response body is read
	maxResponseSize = 1 << 20
)

// GenerateRequest is the JSON body posted to the endpoint
type GenerateRequest struct {
	EmailContent string `json:"emailContent"`
	Tone         string `json:"tone"`
}

// Client represents an HTTP client for the reply-generation service.
// It implements form.Generator.
type Client struct {
	// BaseURL is the service base URL (e.g., "http://localhost:8080")
	BaseURL string

	// Path is the route appended to BaseURL (default "/api/email/response")
	Path string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for retryable failures
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

var _ form.Generator = (*Client)(nil)

// NewClient creates a new client for the service at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		Path:                  DefaultPath,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// SetPath sets the request path. A missing leading slash is added.
func (c *Client) SetPath(path string) {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	c.Path = path
}

// Endpoint returns the full URL requests are posted to
func (c *Client) Endpoint() string {
	return c.BaseURL + c.Path
}

// Generate posts the input to the endpoint and returns the generated reply.
// Every failure is a *GenerationError.
func (c *Client) Generate(ctx context.Context, in form.Input) (string, error) {
	requestID := form.SubmissionID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	body, err := json.Marshal(GenerateRequest{
		EmailContent: in.EmailContent,
		Tone:         in.Tone.String(),
	})
	if err != nil {
		return "", NewRequestError("failed to encode request", err)
	}

	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(currentDelay):
			case <-ctx.Done():
				genErr := ClassifyNetworkError(ctx.Err())
				genErr.RequestID = requestID
				return "", genErr
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		reply, err := c.generateAttempt(ctx, body, requestID, in)
		if err == nil {
			return reply, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// generateAttempt performs a single request
func (c *Client) generateAttempt(ctx context.Context, body []byte, requestID string, in form.Input) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		genErr := NewRequestError("failed to create POST request", err)
		genErr.RequestID = requestID
		return "", genErr
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain, application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(RequestIDHeader, requestID)

	logging.LogGenerationRequest(requestID, c.Endpoint(), in.Tone.String(), len(in.EmailContent))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		genErr := ClassifyNetworkError(err)
		genErr.RequestID = requestID
		return "", genErr
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		genErr := ClassifyNetworkError(err)
		genErr.Detail = "failed to read response body"
		genErr.RequestID = requestID
		return "", genErr
	}

	logging.LogGenerationResponse(requestID, resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		genErr := NewHTTPError(resp.StatusCode, ErrorMessageFromBody(respBody))
		genErr.RequestID = requestID
		return "", genErr
	}

	return DecodeReply(respBody), nil
}

// DecodeReply extracts the reply text from a success body. The service
// answers with plain text; a body that is a JSON string literal is
// unquoted.
func DecodeReply(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(body)
}

// errorEnvelope covers the common JSON error shapes
// ({"message": ...} and {"error": ...})
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ErrorMessageFromBody returns the human-readable message carried by an
// error response body, or "" when the body is blank.
func ErrorMessageFromBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return strings.TrimSpace(s)
		}
	case '{':
		var env errorEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
			if msg := strings.TrimSpace(env.Message); msg != "" {
				return msg
			}
			if msg := strings.TrimSpace(env.Error); msg != "" {
				return msg
			}
		}
	}

	return trimmed
}

// String returns a description of the client for logs
func (c *Client) String() string {
	return fmt.Sprintf("reply service at %s (timeout %s)", c.Endpoint(), c.HTTPClient.Timeout)
}
