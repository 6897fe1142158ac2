package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/ui"
)

// stateMsg carries a controller snapshot into the update loop
type stateMsg struct {
	from  *form.Controller
	state form.State
}

// waitForUpdate blocks on the controller's update channel. It is re-armed
// after every delivered snapshot.
func waitForUpdate(c *form.Controller) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-c.Updates()
		if !ok {
			return nil
		}
		return stateMsg{from: c, state: s}
	}
}

// focusArea identifies which part of the form receives keys
type focusArea int

const (
	focusContent focusArea = iota
	focusTone
	focusReply
)

// formKeyMap defines key bindings for the form screen
type formKeyMap struct {
	Submit    key.Binding
	Copy      key.Binding
	Clear     key.Binding
	NextField key.Binding
	PrevField key.Binding
	ToneLeft  key.Binding
	ToneRight key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Copy, k.Clear, k.NextField, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Copy, k.Clear},
		{k.NextField, k.PrevField, k.ToneLeft, k.ToneRight},
		{k.Back, k.Help, k.Quit},
	}
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "generate")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		ToneLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tone")),
		ToneRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tone")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "services"), key.WithDisabled()),
		Help:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// FormModel is the email reply form. It renders a form.Controller and
// forwards user actions to it; all session state lives in the controller.
type FormModel struct {
	Controller *form.Controller
	Endpoint   string

	Content textarea.Model
	Reply   viewport.Model
	Spinner spinner.Model
	Help    help.Model
	Keys    formKeyMap

	Width  int
	Height int

	state    form.State
	focus    focusArea
	spinning bool
	back     bool
	ctx      context.Context
}

// NewFormModel creates a form screen bound to ctrl. endpoint is only shown
// in the header.
func NewFormModel(ctx context.Context, ctrl *form.Controller, endpoint string) FormModel {
	if ctx == nil {
		ctx = context.Background()
	}

	ta := textarea.New()
	ta.Placeholder = "Paste the email you want to reply to..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	vp := viewport.New(defaultWidth-12, 8)

	state := ctrl.State()
	ta.SetValue(state.Input.EmailContent)

	return FormModel{
		Controller: ctrl,
		Endpoint:   endpoint,
		Content:    ta,
		Reply:      vp,
		Spinner:    s,
		Help:       help.New(),
		Keys:       newFormKeyMap(),
		state:      state,
		ctx:        ctx,
	}
}

// EnableBack lets esc return to the discovery screen
func (m *FormModel) EnableBack() {
	m.Keys.Back.SetEnabled(true)
}

// IsBackRequested reports whether the user asked to leave the form
func (m FormModel) IsBackRequested() bool {
	return m.back
}

// State returns the last controller snapshot the model rendered
func (m FormModel) State() form.State {
	return m.state
}

// Init starts the cursor blink and the controller subscription
func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForUpdate(m.Controller))
}

// Update handles messages and updates the model
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, nil

	case stateMsg:
		if msg.from != m.Controller {
			// left over from a form that was closed
			return m, nil
		}
		cmd := m.applyState(msg.state)
		return m, tea.Batch(cmd, waitForUpdate(m.Controller))

	case spinner.TickMsg:
		if m.state.Phase != form.PhaseSubmitting {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusContent {
		m.Content, cmd = m.Content.Update(msg)
	}
	return m, cmd
}

// updateKeys routes key presses to form actions or the focused widget
func (m FormModel) updateKeys(msg tea.KeyMsg) (FormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Submit):
		return m.submit()

	case key.Matches(msg, m.Keys.Copy):
		m.Controller.CopyResult()
		cmd := m.applyState(m.Controller.State())
		return m, cmd

	case key.Matches(msg, m.Keys.Clear):
		m.Controller.Clear()
		m.Content.Reset()
		m.setFocus(focusContent)
		cmd := m.applyState(m.Controller.State())
		return m, cmd

	case key.Matches(msg, m.Keys.NextField):
		m.setFocus(m.nextFocus(1))
		return m, nil

	case key.Matches(msg, m.Keys.PrevField):
		m.setFocus(m.nextFocus(-1))
		return m, nil

	case key.Matches(msg, m.Keys.Back):
		m.back = true
		return m, nil

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusContent:
		before := m.Content.Value()
		m.Content, cmd = m.Content.Update(msg)
		if after := m.Content.Value(); after != before {
			_ = m.Controller.UpdateField(form.EmailContent(after))
			m.state = m.Controller.State()
		}

	case focusTone:
		m.updateTone(msg)

	case focusReply:
		m.Reply, cmd = m.Reply.Update(msg)
	}
	return m, cmd
}

// submit starts a generation request when the form allows it
func (m FormModel) submit() (FormModel, tea.Cmd) {
	if !canSubmit(m.Controller.State()) {
		return m, nil
	}
	if _, err := m.Controller.Submit(m.ctx); err != nil {
		logging.Debug("Submit ignored", zap.Error(err))
		return m, nil
	}
	cmd := m.applyState(m.Controller.State())
	return m, cmd
}

// updateTone handles the tone selector keys
func (m *FormModel) updateTone(msg tea.KeyMsg) {
	tone := m.state.Input.Tone
	switch {
	case key.Matches(msg, m.Keys.ToneLeft):
		tone = tone.Prev()
	case key.Matches(msg, m.Keys.ToneRight):
		tone = tone.Next()
	default:
		n, err := strconv.Atoi(msg.String())
		tones := form.Tones()
		if err != nil || n < 1 || n > len(tones) {
			return
		}
		tone = tones[n-1]
	}
	if err := m.Controller.UpdateField(form.ToneField(tone)); err != nil {
		logging.Warn("Tone change rejected", zap.Error(err))
		return
	}
	m.state = m.Controller.State()
}

// applyState adopts a controller snapshot and returns any command the
// transition needs
func (m *FormModel) applyState(s form.State) tea.Cmd {
	prev := m.state
	m.state = s

	if s.Result != prev.Result {
		m.Reply.SetContent(lipgloss.NewStyle().Width(m.Reply.Width).Render(s.Result))
		m.Reply.GotoTop()
	}
	if m.focus == focusReply && !s.HasResult() {
		m.setFocus(focusContent)
	}

	if s.Phase == form.PhaseSubmitting && !m.spinning {
		m.spinning = true
		return m.Spinner.Tick
	}
	return nil
}

// canSubmit also treats whitespace-only content as blank
func canSubmit(s form.State) bool {
	return s.CanSubmit() && strings.TrimSpace(s.Input.EmailContent) != ""
}

// nextFocus cycles through the focusable areas; the reply only takes
// focus when there is one
func (m FormModel) nextFocus(step int) focusArea {
	areas := []focusArea{focusContent, focusTone}
	if m.state.HasResult() {
		areas = append(areas, focusReply)
	}
	idx := 0
	for i, a := range areas {
		if a == m.focus {
			idx = i
		}
	}
	idx = (idx + step + len(areas)) % len(areas)
	return areas[idx]
}

func (m *FormModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusContent {
		m.Content.Focus()
	} else {
		m.Content.Blur()
	}
}

// resize fits the widgets to the terminal
func (m *FormModel) resize() {
	w := contentWidth(m.Width)
	m.Content.SetWidth(w)
	m.Reply.Width = w - 4

	// header, footer, labels and tone row take roughly 16 lines
	avail := m.Height - 16
	if avail < 8 {
		avail = 8
	}
	m.Content.SetHeight(avail / 2)
	m.Reply.Height = avail - avail/2
	m.Reply.SetContent(lipgloss.NewStyle().Width(m.Reply.Width).Render(m.state.Result))
}

// View renders the form screen
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString(RenderLabel("Email", m.focus == focusContent))
	b.WriteString("\n")
	b.WriteString(m.Content.View())
	b.WriteString("\n\n")

	b.WriteString(RenderLabel("Tone", m.focus == focusTone))
	b.WriteString("  ")
	b.WriteString(RenderToneSelector(m.state.Input.Tone))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.state.HasResult() {
		b.WriteString(m.renderReply())
	}

	m.Keys.Submit.SetEnabled(canSubmit(m.state))
	m.Keys.Copy.SetEnabled(m.state.HasResult())

	return RenderApplicationContainer(b.String(), m.Endpoint, m.Help.View(m.Keys), m.Width, m.Height)
}

// renderStatus renders the line that reflects the submission phase
func (m FormModel) renderStatus() string {
	switch m.state.Phase {
	case form.PhaseSubmitting:
		return m.Spinner.View() + " " + SubtitleStyle.Render("Generating reply...")
	case form.PhaseFailed:
		return RenderError(m.state.Error)
	case form.PhaseSucceeded:
		status := ui.SuccessTitleStyle.Render(ui.SuccessMarker + " Reply ready")
		if m.state.Copied {
			status += "  " + CopiedStyle.Render("Copied!")
		}
		return status
	default:
		if strings.TrimSpace(m.state.Input.EmailContent) == "" {
			return SubtitleStyle.Render("Paste an email to enable generation")
		}
		return SubtitleStyle.Render("Press ctrl+s to generate a reply")
	}
}

// renderReply renders the reply viewport in a box
func (m FormModel) renderReply() string {
	style := ReplyBoxStyle
	if m.focus == focusReply {
		style = FocusedReplyBoxStyle
	}
	return style.Width(contentWidth(m.Width) - 2).Render(m.Reply.View())
}
