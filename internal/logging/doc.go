// Package logging provides structured logging for emailreply.
//
// This package wraps a zap logger with convenience functions for common
// logging patterns. Logging is silent unless a level is configured, because
// the interactive form owns the terminal and stray output would corrupt it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Phase transitions, reply previews
//   - Info: Generation requests and responses
//   - Warn: Clipboard failures, discarded submissions
//   - Error: Startup failures
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Endpoint resolved",
//	    zap.String("endpoint", "http://localhost:8080/api/email/response"),
//	    zap.String("source", "mdns"),
//	)
//
// # Specialized Logging
//
//	logging.LogGenerationRequest(requestID, endpoint, "friendly", len(content))
//	logging.LogGenerationResponse(requestID, resp.StatusCode, body)
//	logging.LogPhaseTransition(submissionID, "Idle", "Submitting")
//
// # Configuration
//
// Initialize logging once at startup:
//
//	if err := logging.Initialize("debug", "/tmp/emailreply.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// EMAILREPLY_LOG_LEVEL and EMAILREPLY_LOG_FILE supply the values when the
// arguments are empty.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and
// SetLogger are meant to be called before any goroutines start.
package logging
