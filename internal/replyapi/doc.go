// Package replyapi is the HTTP client for the reply-generation service.
//
// The service contract is a single call:
//
//	POST /api/email/response
//	Content-Type: application/json
//
//	{"emailContent": "Hi, can we reschedule?", "tone": "friendly"}
//
// A 2xx response body is the generated reply as plain text. Any other
// status is a failure; its body, when present, is a human-readable message
// (plain text, a JSON string, or a JSON object with "message" or "error").
//
// Client implements form.Generator. All failures are returned as
// *GenerationError; the Kind field distinguishes timeouts, refused
// connections, DNS failures and HTTP errors for logging, while
// UserMessage exposes only what the server said.
//
// # Retries
//
// The client does not retry by default. SetRetry enables retries with
// exponential backoff for retryable failures (network errors, 5xx, 429).
package replyapi
