package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockvis/internal/ipc"
)

// daemonClient is the part of ipc.Client the TUI uses.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetPolicy(panel, policy string) error
	BlockHiding(panel, reason string, d time.Duration) error
	Reload() error
}

type statusLoadedMsg struct {
	status *ipc.StatusData
	err    error
}

type monitorsLoadedMsg struct {
	data *ipc.MonitorsData
	err  error
}

type tickMsg time.Time

// actionDoneMsg is sent after an IPC action completes.
type actionDoneMsg struct {
	text string
	err  error
}

// clearFlashMsg clears the status bar message after a delay.
type clearFlashMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	client   daemonClient
	interval time.Duration

	activeTab Tab
	panels    PanelsTab
	monitors  MonitorsTab
	help      help.Model

	connected bool
	status    *ipc.StatusData
	flash     string

	width  int
	height int
}

func newModel(client daemonClient, interval time.Duration) model {
	return model{
		client:   client,
		interval: interval,
		panels:   NewPanelsTab(client),
		help:     help.New(),
	}
}

func (m model) fetchStatus() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		st, err := c.GetStatus()
		return statusLoadedMsg{status: st, err: err}
	}
}

func (m model) fetchMonitors() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, err := c.GetMonitors()
		return monitorsLoadedMsg{data: data, err: err}
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func setPolicyCmd(c daemonClient, panel, policy string) tea.Cmd {
	return func() tea.Msg {
		err := c.SetPolicy(panel, policy)
		return actionDoneMsg{text: fmt.Sprintf("%s: %s", panel, policy), err: err}
	}
}

func blockCmd(c daemonClient, panel string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		err := c.BlockHiding(panel, "tui", d)
		return actionDoneMsg{text: fmt.Sprintf("%s shown for %s", panel, d), err: err}
	}
}

func reloadCmd(c daemonClient) tea.Cmd {
	return func() tea.Msg {
		err := c.Reload()
		return actionDoneMsg{text: "config reloaded", err: err}
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.fetchMonitors(), tick(m.interval))
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The policy form consumes keys; only ctrl+c escapes to quit.
	if km, ok := msg.(tea.KeyMsg); ok && m.panels.editing {
		if km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.panels, cmd = m.panels.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case key.Matches(msg, keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, keys.Reload):
			return m, reloadCmd(m.client)
		case msg.String() == "1":
			m.activeTab = TabPanels
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabMonitors
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.panels, _ = m.panels.Update(sub)
		m.monitors.SetSize(sub.Width, sub.Height)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), tick(m.interval))

	case statusLoadedMsg:
		if msg.err != nil {
			m.connected = false
			m.status = nil
			return m, m.panels.SetPanels(nil)
		}
		m.connected = true
		m.status = msg.status
		return m, m.panels.SetPanels(msg.status.Panels)

	case monitorsLoadedMsg:
		if msg.err == nil {
			m.monitors.SetMonitors(msg.data.Monitors)
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.flash = errorStyle.Render(msg.err.Error())
		} else {
			m.flash = msg.text
		}
		clearFlash := tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearFlashMsg{} })
		return m, tea.Batch(m.fetchStatus(), m.fetchMonitors(), clearFlash)

	case clearFlashMsg:
		m.flash = ""
		return m, nil
	}

	if m.activeTab == TabPanels {
		var cmd tea.Cmd
		m.panels, cmd = m.panels.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status, m.flash, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(keys))

	var content string
	switch m.activeTab {
	case TabPanels:
		content = m.panels.View()
	case TabMonitors:
		content = m.monitors.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
