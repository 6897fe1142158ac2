package form

import (
	"errors"
	"strings"
)

// FallbackErrorMessage is shown when a failed submission carries no
// server-supplied message.
const FallbackErrorMessage = "Failed to generate email"

var (
	// ErrSubmitInProgress is returned by Submit while another submission is in flight.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrInvalidTone is returned for tone values outside the supported set.
	ErrInvalidTone = errors.New("invalid tone")
)

// userMessager is implemented by generator errors that carry a message
// meant for display (typically the body of an error response).
type userMessager interface {
	UserMessage() string
}

// MessageFor returns the text stored as the form's error info for err.
// A non-blank user message anywhere in the error chain wins; everything
// else collapses to FallbackErrorMessage.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return FallbackErrorMessage
}
