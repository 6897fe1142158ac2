package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/emailreply/internal/config"
	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/ui"
)

// ScanFunc browses the network for reply services.
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]*discovery.Service, error)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	services []*discovery.Service
	err      error
}

// Target is the endpoint picked on the discovery screen
type Target struct {
	BaseURL string
	Path    string
	Label   string
}

// discoveryKeyMap defines key bindings for the service list
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// scanningKeyMap defines key bindings while a scan runs
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Manual, k.Quit}}
}

// serviceItem wraps a Service for use with bubbles/list
type serviceItem struct {
	service *discovery.Service
}

// FilterValue implements list.Item
func (s serviceItem) FilterValue() string {
	return s.service.Instance + " " + s.service.IP + " " + s.service.Hostname
}

// Title returns the instance name for list display
func (s serviceItem) Title() string { return s.service.Instance }

// Description returns the endpoint for list display
func (s serviceItem) Description() string { return s.service.Endpoint() }

// serviceDelegate renders services as cards
type serviceDelegate struct {
	width int
}

func (d serviceDelegate) Height() int { return 6 }

func (d serviceDelegate) Spacing() int { return 1 }

func (d serviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d serviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(serviceItem)
	if !ok {
		return
	}
	svc := si.service
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + svc.Instance))
	} else {
		content.WriteString("  " + svc.Instance)
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  Host:     %s\n", strings.TrimSuffix(svc.Hostname, ".")))
	content.WriteString(fmt.Sprintf("  Endpoint: %s", svc.Endpoint()))
	if v := svc.GetMetadata("version"); v != "" {
		content.WriteString(fmt.Sprintf("\n  Version:  %s", v))
	}

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	_, _ = fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel is the service picker shown before the form when
// discovery is enabled
type DiscoveryModel struct {
	Scanning    bool
	ServiceList list.Model
	Err         error

	// Chosen is set once the user picks a service or enters a URL
	Chosen *Target

	ManualMode bool
	URLInput   textinput.Model
	ManualErr  error

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	ScanTimeout   time.Duration
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap

	ctx  context.Context
	scan ScanFunc
}

// NewDiscoveryModel creates the discovery screen. A nil scan uses mDNS.
func NewDiscoveryModel(ctx context.Context, scan ScanFunc, timeout time.Duration) DiscoveryModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if scan == nil {
		scan = discovery.Scan
	}
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = config.DefaultBaseURL + config.DefaultPath
	urlInput.CharLimit = 256
	urlInput.Width = 50

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	serviceList := list.New([]list.Item{}, serviceDelegate{width: MinTerminalWidth}, 0, 0)
	serviceList.Title = "Reply Services"
	serviceList.SetShowStatusBar(false)
	serviceList.SetFilteringEnabled(true)
	serviceList.SetShowHelp(false)
	serviceList.Styles.Title = TitleStyle

	return DiscoveryModel{
		ServiceList:  serviceList,
		URLInput:     urlInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		ScanTimeout:  timeout,
		Help:         help.New(),
		ctx:          ctx,
		scan:         scan,
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use service")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter URL")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		ManualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		ScanningKeys: scanningKeyMap{
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter URL")),
			Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scanServices(),
		m.Spinner.Tick,
	)
}

// scanServices runs the scan off the update loop
func (m DiscoveryModel) scanServices() tea.Cmd {
	ctx, scan, timeout := m.ctx, m.scan, m.ScanTimeout
	return func() tea.Msg {
		services, err := scan(ctx, timeout)
		return scanCompleteMsg{services: services, err: err}
	}
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ServiceList.SetDelegate(serviceDelegate{width: msg.Width})
		m.ServiceList.SetWidth(msg.Width - 4)
		m.ServiceList.SetHeight(msg.Height - 8)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.services))
		for i, svc := range msg.services {
			items[i] = serviceItem{service: svc}
		}
		m.ServiceList.SetItems(items)
		return m, nil

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateNormalMode handles keys on the service list
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.ManualErr = nil
		m.URLInput.SetValue("")
		cmd = m.URLInput.Focus()
		return m, cmd

	case m.Scanning:
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		if item, ok := m.ServiceList.SelectedItem().(serviceItem); ok {
			m.Chosen = &Target{
				BaseURL: item.service.BaseURL(),
				Path:    item.service.Path,
				Label:   item.service.Instance,
			}
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		m.ServiceList.SetItems([]list.Item{})
		m.Err = nil
		return m, m.startScan()
	}

	m.ServiceList, cmd = m.ServiceList.Update(msg)
	return m, cmd
}

// updateManualMode handles keys while entering a URL
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.ManualErr = nil
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		value := strings.TrimSpace(m.URLInput.Value())
		if value == "" {
			return m, nil
		}
		cfg := config.Default()
		if err := cfg.SetEndpoint(value); err != nil {
			m.ManualErr = err
			return m, nil
		}
		m.Chosen = &Target{
			BaseURL: cfg.Endpoint.BaseURL,
			Path:    cfg.Endpoint.Path,
			Label:   "manual",
		}
		m.ManualMode = false
		m.URLInput.Blur()
		return m, nil
	}

	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(contentWidth(m.Width))
		helpText = m.Help.View(m.ScanningKeys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, "service discovery", helpText, m.Width, m.Height)
}

// renderScanning shows the spinner and a progress bar over the scan window
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	fraction := float64(elapsed) / float64(m.ScanTimeout)
	if fraction > 1 {
		fraction = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR REPLY SERVICES"),
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(fraction),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults shows the service list, or a hint when nothing was found
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		writeScanHints(&b)

	case len(m.ServiceList.Items()) == 0:
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render(ui.WarningMarker + " No reply services found on your network"))
		b.WriteString("\n\n")
		writeScanHints(&b)

	default:
		b.WriteString(m.ServiceList.View())
	}

	return b.String()
}

func writeScanHints(b *strings.Builder) {
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    " + ui.BulletMarker + " Ensure the reply service is running and advertising " + discovery.ServiceType + "\n")
	b.WriteString("    " + ui.BulletMarker + " mDNS does not cross subnets or most VPNs\n")
	b.WriteString("    " + ui.BulletMarker + " Press 'm' to enter the endpoint URL by hand\n")
}

// renderManualEntry renders the URL entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter the reply endpoint URL"))
	b.WriteString("\n\n")
	b.WriteString("  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n\n")
	if m.ManualErr != nil {
		b.WriteString(RenderError(m.ManualErr.Error()))
		b.WriteString("\n")
	}

	return b.String()
}
