// Package ui provides styled terminal output for the emailreply CLI.
//
// These components render once and exit; the interactive form lives in
// internal/tui and shares this package's palette and tone styles.
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, failure and warning boxes
//   - RenderReply: the generated reply in a bordered box
//   - Confirm: a yes/no prompt behind a warning box
//
// # Usage Pattern
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Generate reply", "emailreply generate",
//	    ui.Detail{Key: "Endpoint", Value: client.Endpoint()},
//	    ui.Detail{Key: "Tone", Value: tone.Label()},
//	)
//	p.PrintReply(reply)
//
// Widths are clamped between MinTerminalWidth and MaxContentWidth.
package ui
