package shell

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/tracker"
	"github.com/1broseidon/dockvis/internal/visibility"
)

// Options wires a Manager to its window system.
type Options struct {
	System  platform.WindowSystem
	Host    platform.PanelHost
	Strips  platform.StripFactory
	Clock   eventloop.Clock
	Post    eventloop.Poster
	Logger  *slog.Logger
	Schemes tracker.SchemeResolver
}

// Manager owns the window tracker and every configured panel. All methods
// must be called on the control loop.
type Manager struct {
	deps    panelDeps
	tracker *tracker.Tracker
	logger  *slog.Logger

	specs   []PanelSpec
	panels  map[string]*Panel
	pending map[string]string // name -> last attach error
	blocks  map[string][]*heldBlock
	closed  bool
}

type heldBlock struct {
	block *visibility.HidingBlock
	timer *eventloop.Timer
}

// NewManager creates the tracker and an empty panel set.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = eventloop.SystemClock
	}
	post := opts.Post
	if post == nil {
		post = eventloop.Immediate
	}
	t := tracker.New(opts.System, tracker.Config{Logger: logger, Schemes: opts.Schemes})
	return &Manager{
		deps: panelDeps{
			host:    opts.Host,
			strips:  opts.Strips,
			tracker: t,
			caps:    opts.System.Capabilities(),
			clock:   clock,
			post:    post,
			logger:  logger,
		},
		tracker: t,
		logger:  logger,
		panels:  make(map[string]*Panel),
		pending: make(map[string]string),
		blocks:  make(map[string][]*heldBlock),
	}
}

// Tracker exposes the shared window tracker.
func (m *Manager) Tracker() *tracker.Tracker { return m.tracker }

// Panel returns an attached panel by name.
func (m *Manager) Panel(name string) (*Panel, bool) {
	p, ok := m.panels[name]
	return p, ok
}

// Apply makes the managed panel set match specs. Panels whose window
// matching changed are re-attached; others keep their engine and only
// receive the new tunables.
func (m *Manager) Apply(specs []PanelSpec) {
	if m.closed {
		return
	}
	wanted := make(map[string]PanelSpec, len(specs))
	for _, s := range specs {
		wanted[s.Name] = s
	}

	for name, p := range m.panels {
		s, ok := wanted[name]
		if ok && p.spec.sameWindow(s) {
			continue
		}
		m.detach(name)
	}
	for name := range m.pending {
		if _, ok := wanted[name]; !ok {
			delete(m.pending, name)
		}
	}

	m.specs = append([]PanelSpec(nil), specs...)
	for _, s := range m.specs {
		if p, ok := m.panels[s.Name]; ok {
			if p.spec != s {
				p.update(s)
				m.logger.Info("shell: panel updated", "panel", s.Name)
			}
			continue
		}
		m.tryAttach(s)
	}
}

// Reconcile evicts garbage tracker records, retries unattached panels and
// converges the stacking of attached ones. It returns the number of evicted
// records.
func (m *Manager) Reconcile() int {
	if m.closed {
		return 0
	}
	evicted := m.tracker.Sweep()
	for _, s := range m.specs {
		if _, ok := m.panels[s.Name]; ok {
			continue
		}
		m.tryAttach(s)
	}
	for _, s := range m.specs {
		if p, ok := m.panels[s.Name]; ok {
			p.Converge()
		}
	}
	return evicted
}

// DisplaysChanged reloads display geometry and relocates every panel.
func (m *Manager) DisplaysChanged() {
	if m.closed {
		return
	}
	m.tracker.RefreshDisplays()
	for _, p := range m.panels {
		p.Relocate()
	}
}

// SetPolicy switches one panel's policy until the next config reload.
func (m *Manager) SetPolicy(name string, policy visibility.Policy) error {
	p, ok := m.panels[name]
	if !ok {
		return m.unknown(name)
	}
	m.releaseBlocks(name)
	p.SetPolicy(policy)
	return nil
}

// BlockHiding keeps a panel shown for d, or until the next policy switch.
func (m *Manager) BlockHiding(name, reason string, d time.Duration) error {
	p, ok := m.panels[name]
	if !ok {
		return m.unknown(name)
	}
	if d <= 0 {
		return fmt.Errorf("block duration must be > 0")
	}
	held := &heldBlock{block: p.engine.BlockHiding(reason)}
	held.timer = eventloop.NewTimer(m.deps.clock, m.deps.post, d, func() {
		held.block.Release()
		m.forgetBlock(name, held)
	})
	held.timer.Start()
	m.blocks[name] = append(m.blocks[name], held)
	return nil
}

// Close detaches every panel and the tracker.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	for name := range m.panels {
		m.detach(name)
	}
	m.tracker.Close()
	m.closed = true
}

func (m *Manager) tryAttach(s PanelSpec) {
	p, err := attach(s, m.deps, func() { m.onPanelGone(s.Name) })
	if err != nil {
		if m.pending[s.Name] != err.Error() {
			m.logger.Warn("shell: panel not attached, will retry", "panel", s.Name, "error", err)
		}
		m.pending[s.Name] = err.Error()
		return
	}
	delete(m.pending, s.Name)
	m.panels[s.Name] = p
}

func (m *Manager) detach(name string) {
	p, ok := m.panels[name]
	if !ok {
		return
	}
	m.releaseBlocks(name)
	p.Close()
	delete(m.panels, name)
}

func (m *Manager) onPanelGone(name string) {
	m.releaseBlocks(name)
	delete(m.panels, name)
	m.pending[name] = "panel window closed"
}

func (m *Manager) releaseBlocks(name string) {
	for _, held := range m.blocks[name] {
		held.timer.Stop()
		held.block.Release()
	}
	delete(m.blocks, name)
}

func (m *Manager) forgetBlock(name string, held *heldBlock) {
	list := m.blocks[name]
	for i, h := range list {
		if h == held {
			m.blocks[name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(m.blocks[name]) == 0 {
		delete(m.blocks, name)
	}
}

func (m *Manager) unknown(name string) error {
	if _, ok := m.pending[name]; ok {
		return fmt.Errorf("panel %q is not attached: %s", name, m.pending[name])
	}
	return fmt.Errorf("unknown panel %q", name)
}
