// Package clipboard writes generated replies to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (for example a headless Linux host without xclip, xsel or wl-copy).
var ErrUnsupported = errors.New("system clipboard is not available")

// Package-level hooks so tests can run without a display server.
var (
	clipboardWriteAll    = clipboard.WriteAll
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
)

// System is the OS clipboard. It satisfies form.Clipboard.
type System struct{}

// WriteAll replaces the clipboard contents with text
func (System) WriteAll(text string) error {
	if clipboardUnsupported() {
		return ErrUnsupported
	}
	return clipboardWriteAll(text)
}

// Available reports whether the system clipboard can be used
func Available() bool {
	return !clipboardUnsupported()
}
