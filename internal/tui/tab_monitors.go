package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockvis/internal/ipc"
)

// MonitorsTab shows the displays known to the daemon.
type MonitorsTab struct {
	monitors []ipc.MonitorInfo
	width    int
	height   int
}

func (t *MonitorsTab) SetMonitors(m []ipc.MonitorInfo) { t.monitors = m }

func (t *MonitorsTab) SetSize(w, h int) {
	t.width = w
	t.height = h
}

func (t MonitorsTab) View() string {
	if len(t.monitors) == 0 {
		return lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No monitors reported")
	}
	var lines []string
	for _, m := range t.monitors {
		lines = append(lines, valueStyle.Render(fmt.Sprintf("  %d %s", m.ID, m.Name)))
		lines = append(lines, row("Bounds", fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.X, m.Y)))
		if m.Usable != "" {
			lines = append(lines, row("Usable", m.Usable))
		}
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(t.width).Padding(0, 2).Render(strings.Join(lines, "\n"))
}
