// Package tui is a live terminal view of a running dockvis daemon.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/dockvis/internal/ipc"
)

// DefaultRefresh is how often the view polls the daemon.
const DefaultRefresh = 500 * time.Millisecond

// Run opens the TUI against client until the user quits.
func Run(client *ipc.Client, refresh time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	p := tea.NewProgram(newModel(client, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
