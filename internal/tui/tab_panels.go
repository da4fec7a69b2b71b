package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/dockvis/internal/shell"
	"github.com/1broseidon/dockvis/internal/visibility"
)

// blockDuration is how long the "keep shown" key holds a panel up.
const blockDuration = 5 * time.Second

// panelItem implements list.Item for the panel sidebar.
type panelItem struct {
	st shell.PanelStatus
}

func (i panelItem) Title() string {
	switch {
	case !i.st.Attached:
		return "  " + i.st.Name + " (detached)"
	case i.st.Hidden:
		return "- " + i.st.Name
	default:
		return "* " + i.st.Name
	}
}

func (i panelItem) Description() string { return i.st.Policy }
func (i panelItem) FilterValue() string { return i.st.Name }

// PanelsTab lists configured panels and shows the selected one's state.
type PanelsTab struct {
	list   list.Model
	client daemonClient

	form      *huh.Form
	editing   bool
	editPanel string
	fPolicy   string

	width  int
	height int
}

// NewPanelsTab creates the panel browser.
func NewPanelsTab(client daemonClient) PanelsTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Panels"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return PanelsTab{list: l, client: client}
}

// SetPanels replaces the listed panels, keeping the selection by index.
func (t *PanelsTab) SetPanels(panels []shell.PanelStatus) tea.Cmd {
	items := make([]list.Item, 0, len(panels))
	for _, p := range panels {
		items = append(items, panelItem{st: p})
	}
	return t.list.SetItems(items)
}

func (t PanelsTab) selected() (shell.PanelStatus, bool) {
	item, ok := t.list.SelectedItem().(panelItem)
	if !ok {
		return shell.PanelStatus{}, false
	}
	return item.st, true
}

// Update implements tea.Model.
func (t PanelsTab) Update(msg tea.Msg) (PanelsTab, tea.Cmd) {
	if t.editing {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case tea.KeyMsg:
		st, ok := t.selected()
		switch {
		case key.Matches(msg, keys.Policy) && ok && st.Attached:
			return t, t.startEditing(st)
		case key.Matches(msg, keys.Block) && ok && st.Attached:
			return t, blockCmd(t.client, st.Name, blockDuration)
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t PanelsTab) updateForm(msg tea.Msg) (PanelsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		t.editing = false
		t.form = nil
		return t, nil
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = ws.Width
		t.height = ws.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State == huh.StateCompleted {
		t.editing = false
		t.form = nil
		return t, setPolicyCmd(t.client, t.editPanel, t.fPolicy)
	}
	return t, cmd
}

func (t *PanelsTab) startEditing(st shell.PanelStatus) tea.Cmd {
	opts := make([]huh.Option[string], 0, len(visibility.Policies()))
	for _, p := range visibility.Policies() {
		opts = append(opts, huh.NewOption(p.String(), p.String()))
	}

	t.editPanel = st.Name
	t.fPolicy = st.Policy
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("policy").
				Title("Visibility for " + st.Name).
				Description("Applies until the next config reload").
				Options(opts...).
				Value(&t.fPolicy),
		),
	).WithWidth(max(t.width-4, 40)).WithShowHelp(true)
	t.editing = true
	return t.form.Init()
}

func (t PanelsTab) listWidth() int {
	w := t.width / 3
	if w < 20 {
		w = 20
	}
	return w
}

// View implements tea.Model.
func (t PanelsTab) View() string {
	if t.editing && t.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(t.form.View())
	}
	if len(t.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No panels configured")
	}

	left := lipgloss.NewStyle().Width(t.listWidth()).Render(t.list.View())
	detail := ""
	if st, ok := t.selected(); ok {
		detail = renderPanelDetail(st)
	}
	right := lipgloss.NewStyle().
		Width(max(t.width-t.listWidth()-2, 20)).
		PaddingLeft(2).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func renderPanelDetail(st shell.PanelStatus) string {
	if !st.Attached {
		lines := []string{
			row("Policy", st.Policy),
			row("Edge", st.Edge),
			"",
			errorStyle.Render("  " + st.Error),
		}
		return strings.Join(lines, "\n")
	}

	blocks := "none"
	if len(st.Blocks) > 0 {
		blocks = strings.Join(st.Blocks, ", ")
	}
	strip := "none"
	if st.RevealStrip != "" {
		strip = st.RevealStrip
	}
	lines := []string{
		row("Window", fmt.Sprintf("0x%x", st.Window)),
		row("Policy", st.Policy),
		row("Edge", st.Edge),
		row("Geometry", st.Geometry),
		"",
		row("Hidden", yesNo(st.Hidden)),
		row("Hovered", yesNo(st.Hovered)),
		row("Hide pending", yesNo(st.HidePending)),
		row("Blocks", blocks),
		row("Reveal strip", strip),
		row("Raises/Lowers", fmt.Sprintf("%d/%d", st.Raises, st.Lowers)),
		"",
		row("Active overlaps", yesNo(st.ActiveIntersects)),
		row("Active maximized", yesNo(st.ActiveMaximized)),
		row("Any overlapping", yesNo(st.AnyIntersecting)),
		row("Any touching", yesNo(st.AnyTouching)),
		row("Attention", yesNo(st.Attention)),
	}
	if st.ActiveScheme != "" {
		lines = append(lines, row("Active scheme", st.ActiveScheme))
	}
	lines = append(lines, "", dimStyle.Render("  p: change policy  b: keep shown 5s"))
	return strings.Join(lines, "\n")
}
