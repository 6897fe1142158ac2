// Package tui implements the interactive email reply form.
//
// The TUI is a thin Bubble Tea view over a form.Controller. The controller
// owns the session (input, phase, reply, error, copied indicator); the
// models here forward key presses to it and redraw from the snapshots it
// publishes on Controller.Updates.
//
// # Architecture
//
// Two screens share the RenderApplicationContainer frame:
//   - Discovery: browse mDNS for reply services or enter a URL by hand
//   - Form: email textarea, tone selector, status line and reply viewport
//
// The discovery screen is only shown when Options.Discover is set; the
// chosen service is turned into a controller by Options.Factory.
//
// # Framework Components
//
//   - bubbles/textarea: email content
//   - bubbles/spinner: submitting indicator and scan indicator
//   - bubbles/viewport: scrollable reply
//   - bubbles/list, bubbles/progress, bubbles/textinput: discovery
//   - bubbles/help, bubbles/key: key bindings and footer help
//   - lipgloss: styling and layout
//
// # Keys
//
//	ctrl+s     generate a reply (disabled while blank or submitting)
//	ctrl+y     copy the reply; "Copied!" shows for two seconds
//	ctrl+l     clear the form, abandoning any request in flight
//	tab        cycle focus: email, tone, reply
//	←/→, 1-4   pick a tone while the tone row has focus
//	ctrl+c     quit
//
// # Usage Example
//
//	err := tui.Run(tui.Options{
//	    Controller: ctrl,
//	    Endpoint:   client.Endpoint(),
//	    Ctx:        ctx,
//	})
//
// The program uses the alternate screen, so logs must go to a file
// (--log-file or EMAILREPLY_LOG_FILE).
package tui
