package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/ui"
	"github.com/muurk/emailreply/internal/version"
)

// Application branding constants
const (
	AppName   = "EMAIL REPLY"
	GitHubURL = "github.com/muurk/emailreply"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
	defaultWidth     = 80  // Used until the first WindowSizeMsg arrives
	defaultHeight    = 24
)

// Neutral colors on top of the shared ui palette
var (
	SubtleColor    = ui.MutedColor
	BorderColor    = ui.PrimaryColor
	HighlightColor = ui.SuccessColor
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			Padding(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Bold(true)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(ui.PrimaryColor).
				Bold(true)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ui.WarningColor).
			Bold(true)

	CopiedStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor).
			Bold(true)

	ReplyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedReplyBoxStyle = ReplyBoxStyle.
				BorderForeground(HighlightColor)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderError renders an error message
func RenderError(text string) string {
	return ErrorStyle.Render(ui.FailureMarker + " " + text)
}

// RenderLabel renders a field label, highlighted when focused
func RenderLabel(text string, focused bool) string {
	if focused {
		return FocusedLabelStyle.Render("› " + text)
	}
	return LabelStyle.Render("  " + text)
}

// RenderToneSelector renders the tone chips with selected highlighted
func RenderToneSelector(selected form.Tone) string {
	chips := make([]string, 0, len(form.Tones()))
	for i, t := range form.Tones() {
		label := string(rune('1'+i)) + " " + t.Label()
		if t == selected {
			chips = append(chips, ui.ToneSelectedStyle.Render(label))
		} else {
			chips = append(chips, ui.ToneStyle.Render(label))
		}
	}
	return strings.Join(chips, " ")
}

// BuildHeaderContent creates header content with app name and endpoint
func BuildHeaderContent(subtitle string) string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(subtitle)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps every screen in the same frame: a
// header with the app name, the screen content, and a footer with help
// text, filling the terminal.
func RenderApplicationContainer(content, subtitle, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = defaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = defaultHeight
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(subtitle)),
		contentStyle.Render(content),
		footerStyle.Render(footerText),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// contentWidth returns the usable width inside the container
func contentWidth(terminalWidth int) int {
	if terminalWidth <= 0 {
		terminalWidth = defaultWidth
	}
	w := terminalWidth - 8
	if w < MinTerminalWidth-8 {
		w = MinTerminalWidth - 8
	}
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	return w
}
