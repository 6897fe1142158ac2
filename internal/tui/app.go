package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/emailreply/internal/form"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenForm      Screen = "form"
)

// ControllerFactory builds a form controller for a chosen endpoint
type ControllerFactory func(baseURL, path string) *form.Controller

// Options configures the application
type Options struct {
	// Controller is used directly when discovery is off
	Controller *form.Controller
	Endpoint   string

	// Discover starts on the service picker; Factory then builds the
	// controller for whatever the user picks
	Discover    bool
	Factory     ControllerFactory
	Scan        ScanFunc
	ScanTimeout time.Duration

	Ctx context.Context
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	FormModel      FormModel

	Width  int
	Height int

	opts Options
}

// NewAppModel creates the application model. It starts on the discovery
// screen when opts.Discover is set, otherwise on the form.
func NewAppModel(opts Options) AppModel {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}

	m := AppModel{opts: opts}
	if opts.Discover && opts.Factory != nil {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(opts.Ctx, opts.Scan, opts.ScanTimeout)
		return m
	}

	m.CurrentScreen = ScreenForm
	m.FormModel = NewFormModel(opts.Ctx, opts.Controller, opts.Endpoint)
	return m
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenForm:
		return m.FormModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var dcmd, fcmd tea.Cmd
		if m.CurrentScreen == ScreenDiscovery {
			m.DiscoveryModel, dcmd = m.DiscoveryModel.Update(msg)
		}
		if m.FormModel.Controller != nil {
			m.FormModel, fcmd = m.FormModel.Update(msg)
		}
		return m, tea.Batch(dcmd, fcmd)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.DiscoveryModel.ManualMode &&
			!m.DiscoveryModel.ServiceList.SettingFilter() {
			if k := keyMsg.String(); k == "q" || k == "esc" {
				return m.quit()
			}
		}

		m.DiscoveryModel, cmd = m.DiscoveryModel.Update(msg)
		if t := m.DiscoveryModel.Chosen; t != nil {
			return m.openForm(*t)
		}

	case ScreenForm:
		m.FormModel, cmd = m.FormModel.Update(msg)
		if m.FormModel.IsBackRequested() {
			return m.backToDiscovery()
		}
	}

	return m, cmd
}

// openForm builds a controller for the chosen endpoint and shows the form
func (m AppModel) openForm(t Target) (tea.Model, tea.Cmd) {
	ctrl := m.opts.Factory(t.BaseURL, t.Path)
	m.opts.Controller = ctrl

	m.FormModel = NewFormModel(m.opts.Ctx, ctrl, t.BaseURL+t.Path)
	m.FormModel.EnableBack()
	m.FormModel, _ = m.FormModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
	m.CurrentScreen = ScreenForm
	return m, m.FormModel.Init()
}

// backToDiscovery abandons the current form and rescans
func (m AppModel) backToDiscovery() (tea.Model, tea.Cmd) {
	m.FormModel.Controller.Reset()
	m.FormModel = FormModel{}

	m.DiscoveryModel = NewDiscoveryModel(m.opts.Ctx, m.opts.Scan, m.opts.ScanTimeout)
	m.DiscoveryModel, _ = m.DiscoveryModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
	m.CurrentScreen = ScreenDiscovery
	return m, m.DiscoveryModel.Init()
}

// quit exits, cancelling any request still in flight
func (m AppModel) quit() (tea.Model, tea.Cmd) {
	if c := m.FormModel.Controller; c != nil && c.Phase() == form.PhaseSubmitting {
		c.Clear()
	}
	return m, tea.Quit
}

// Controller returns the controller of the form currently shown, if any
func (m AppModel) Controller() *form.Controller {
	return m.FormModel.Controller
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenForm:
		return m.FormModel.View()
	default:
		return "Unknown screen"
	}
}

// Run starts the full-screen program and blocks until the user quits
func Run(opts Options) error {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen(), tea.WithContext(opts.Ctx))
	_, err := p.Run()
	return err
}
