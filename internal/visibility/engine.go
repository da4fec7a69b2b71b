package visibility

import (
	"log/slog"
	"time"

	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/tracker"
)

const (
	DefaultShowDelay       = 0
	DefaultHideDelay       = 700 * time.Millisecond
	DefaultRecheckInterval = 900 * time.Millisecond

	minTemporaryRaise = 1800 * time.Millisecond
	maxTemporaryRaise = 3000 * time.Millisecond

	minRevealGrace = 500 * time.Millisecond
)

// Signals receives the engine's decisions. Each method fires only on a
// transition.
type Signals interface {
	MustBeRaised()
	MustBeLowered()
	MustBeRaisedImmediately()
	PanelVisibilityChanged(p Policy)
	IsHoveredChanged(hovered bool)
}

// RevealWindow is the screen-edge strip shown while the panel is hidden.
type RevealWindow interface {
	Show()
	Hide()
}

// Options are the per-panel tunables.
type Options struct {
	Policy                Policy
	ShowDelay             time.Duration
	HideDelay             time.Duration
	RecheckInterval       time.Duration
	RaiseOnDesktopChange  bool
	RaiseOnActivityChange bool
	DockWindowType        bool
}

// Deps are the engine's collaborators besides the panel itself.
type Deps struct {
	Clock        eventloop.Clock
	Post         eventloop.Poster
	Logger       *slog.Logger
	Capabilities platform.Capabilities
	Reveal       RevealWindow
}

// Decision is the outcome of one evaluation.
type Decision int

const (
	DecisionKeep Decision = iota
	DecisionRaise
	DecisionLower
)

func (d Decision) String() string {
	switch d {
	case DecisionRaise:
		return "raise"
	case DecisionLower:
		return "lower"
	default:
		return "keep"
	}
}

// Engine is the per-panel visibility state machine. It must only be used
// from the control loop.
type Engine struct {
	dock    platform.DockInterface
	view    *tracker.View
	signals Signals
	reveal  RevealWindow
	logger  *slog.Logger
	caps    platform.Capabilities
	opts    Options
	policy  Policy

	hidden           bool
	hovered          bool
	dragEnter        bool
	raiseTemporarily bool
	hideNow          bool
	// edgeRevealed holds the panel up after a strip raise until the pointer
	// either enters the panel or is found elsewhere.
	edgeRevealed     bool

	blocks     map[uint64]string
	nextBlock  uint64
	blockEpoch uint64

	showTimer    *eventloop.Timer
	hideTimer    *eventloop.Timer
	recheckTimer *eventloop.Timer
	tempTimer    *eventloop.Timer
	revealTimer  *eventloop.Timer

	cancelView  func()
	initialized bool
	closed      bool
}

// New creates an engine for one panel and applies opts.Policy.
func New(dock platform.DockInterface, view *tracker.View, signals Signals, opts Options, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HideDelay < 0 {
		opts.HideDelay = 0
	}
	if opts.ShowDelay < 0 {
		opts.ShowDelay = 0
	}
	if opts.RecheckInterval <= 0 {
		opts.RecheckInterval = DefaultRecheckInterval
	}
	e := &Engine{
		dock:    dock,
		view:    view,
		signals: signals,
		reveal:  deps.Reveal,
		logger:  logger,
		caps:    deps.Capabilities,
		opts:    opts,
		policy:  opts.Policy,
		blocks:  make(map[uint64]string),
	}
	e.showTimer = eventloop.NewTimer(deps.Clock, deps.Post, opts.ShowDelay, e.onShowTimeout)
	e.hideTimer = eventloop.NewTimer(deps.Clock, deps.Post, opts.HideDelay, e.onHideTimeout)
	e.recheckTimer = eventloop.NewTimer(deps.Clock, deps.Post, opts.RecheckInterval, e.onRecheck)
	e.tempTimer = eventloop.NewTimer(deps.Clock, deps.Post, temporaryRaiseDuration(opts.HideDelay), e.onTemporaryRaiseEnd)
	e.revealTimer = eventloop.NewTimer(deps.Clock, deps.Post, revealGrace(opts.HideDelay), e.onRevealTimeout)
	e.cancelView = view.OnChange(e.onViewChange)

	e.SetPolicy(opts.Policy)
	return e
}

// Close stops every timer and detaches from the tracker view. Later calls on
// the engine are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.stopTimers()
	e.recheckTimer.Stop()
	e.tempTimer.Stop()
	e.revealTimer.Stop()
	if e.cancelView != nil {
		e.cancelView()
		e.cancelView = nil
	}
	if e.reveal != nil {
		e.reveal.Hide()
	}
	e.blocks = map[uint64]string{}
}

func (e *Engine) Policy() Policy          { return e.policy }
func (e *Engine) Options() Options        { return e.opts }
func (e *Engine) Hidden() bool            { return e.hidden }
func (e *Engine) ContainsMouse() bool     { return e.hovered }
func (e *Engine) DragEntered() bool       { return e.dragEnter }
func (e *Engine) RaisedTemporarily() bool { return e.raiseTemporarily }
func (e *Engine) EdgeRevealed() bool      { return e.edgeRevealed }
func (e *Engine) HidingBlocked() bool     { return len(e.blocks) > 0 }
func (e *Engine) Closed() bool            { return e.closed }

// HidePending reports whether a lower is scheduled.
func (e *Engine) HidePending() bool { return e.hideTimer.Active() }

// BlockReasons returns the reasons of held blocks.
func (e *Engine) BlockReasons() []string {
	out := make([]string, 0, len(e.blocks))
	for id := uint64(1); id <= e.nextBlock; id++ {
		if reason, ok := e.blocks[id]; ok {
			out = append(out, reason)
		}
	}
	return out
}

// SetPolicy switches the policy. Unknown values fall back to
// WindowsGoBelow. Switching clears hover, drag and block state.
func (e *Engine) SetPolicy(p Policy) {
	if e.closed {
		return
	}
	if !p.Valid() {
		e.logger.Warn("visibility: unknown policy, falling back", "policy", int(p), "fallback", WindowsGoBelow.String())
		p = WindowsGoBelow
	}
	if e.initialized && p == e.policy {
		return
	}
	e.initialized = true

	e.stopTimers()
	e.recheckTimer.Stop()
	e.tempTimer.Stop()
	e.dragEnter = false
	e.raiseTemporarily = false
	e.hideNow = false
	e.endEdgeReveal()
	e.blocks = make(map[uint64]string)
	e.blockEpoch++
	if e.hovered {
		e.hovered = false
		e.signals.IsHoveredChanged(false)
	}

	prev := e.policy
	e.policy = p
	e.opts.Policy = p
	if e.hidden {
		e.doRaise(false)
	}
	if e.reveal != nil && !p.HideCapable() {
		e.reveal.Hide()
	}
	if !e.opts.DockWindowType {
		if p.onBottomLayer() {
			e.dock.ShowDockOnBottom()
		} else {
			e.dock.ShowDockOnTop()
		}
		// Windows may cover the panel from the start; it rests lowered.
		if p == WindowsCanCover {
			e.hidden = true
			if e.reveal != nil {
				e.reveal.Show()
			}
		}
	}
	e.logger.Debug("visibility: policy set", "from", prev.String(), "to", p.String())
	e.signals.PanelVisibilityChanged(p)
	e.reconsider(true)
}

// SetDelays changes the show and hide delays for future timers.
func (e *Engine) SetDelays(show, hide time.Duration) {
	if show < 0 {
		show = 0
	}
	if hide < 0 {
		hide = 0
	}
	e.opts.ShowDelay = show
	e.opts.HideDelay = hide
	e.showTimer.SetInterval(show)
	e.hideTimer.SetInterval(hide)
	e.tempTimer.SetInterval(temporaryRaiseDuration(hide))
	e.revealTimer.SetInterval(revealGrace(hide))
}

// SetRaiseOnChange toggles temporary raises on desktop and activity switches.
func (e *Engine) SetRaiseOnChange(desktop, activity bool) {
	e.opts.RaiseOnDesktopChange = desktop
	e.opts.RaiseOnActivityChange = activity
}

// Reconsider evaluates the policy and applies the outcome.
func (e *Engine) Reconsider() { e.reconsider(true) }

// Evaluate returns the decision the current inputs produce without applying it.
func (e *Engine) Evaluate() Decision { return e.evaluate() }

// SetContainsMouse records pointer enter/leave on the panel. Either event
// ends a pending strip reveal.
func (e *Engine) SetContainsMouse(inside bool) {
	if e.closed {
		return
	}
	revealed := e.edgeRevealed
	e.endEdgeReveal()
	if e.hovered == inside && !revealed {
		return
	}
	if e.hovered != inside {
		e.hovered = inside
		e.signals.IsHoveredChanged(inside)
	}
	if inside {
		e.hideTimer.Stop()
	} else if e.policy == AlwaysVisible || e.policy == WindowsGoBelow {
		return
	}
	e.reconsider(true)
}

// OnEdgeEntered handles the pointer reaching the reveal strip while hidden.
// The panel is raised at once but not marked hovered: its own enter event
// does that. Until then a grace timer keeps it up.
func (e *Engine) OnEdgeEntered() {
	if e.closed {
		return
	}
	if !e.hidden {
		if e.reveal != nil {
			e.reveal.Hide()
		}
		return
	}
	e.stopTimers()
	e.edgeRevealed = true
	e.revealTimer.Start()
	e.doRaise(true)
}

// SetDragEntered records a drag entering or leaving the panel. A drop counts
// as leaving.
func (e *Engine) SetDragEntered(entered bool) {
	if e.closed || e.dragEnter == entered {
		return
	}
	e.dragEnter = entered
	if entered {
		e.hideTimer.Stop()
	}
	e.reconsider(true)
}

// RaiseTemporarily shows the panel and hides it again without delay once
// the temporary period ends.
func (e *Engine) RaiseTemporarily() {
	if e.closed || !e.policy.HideCapable() {
		return
	}
	e.raiseTemporarily = true
	e.tempTimer.Start()
	e.reconsider(true)
}

func (e *Engine) onViewChange(c tracker.Change) {
	if e.closed {
		return
	}
	if c.Has(tracker.ChangeDesktop) && e.opts.RaiseOnDesktopChange {
		e.RaiseTemporarily()
		return
	}
	if c.Has(tracker.ChangeActivity) && e.opts.RaiseOnActivityChange {
		e.RaiseTemporarily()
		return
	}
	if e.policy.reactsTo(c) {
		e.reconsider(true)
	}
}

func (e *Engine) reconsider(restart bool) {
	if e.closed {
		return
	}
	e.apply(e.evaluate(), restart)
	if e.policy == WindowsCanCover && !e.opts.DockWindowType && !e.recheckTimer.Active() {
		e.recheckTimer.Start()
	}
}

func (e *Engine) evaluate() Decision {
	if e.closed || e.view == nil || e.view.Closed() {
		return DecisionRaise
	}
	switch e.policy {
	case AlwaysVisible, WindowsGoBelow:
		return DecisionRaise
	case None, WindowsAlwaysCover:
		return DecisionKeep
	case AutoHide:
		return e.evaluateAutoHide()
	case DodgeActive:
		covering := e.view.ActiveWindowIntersects() && !e.dock.DesktopIsActive() && !e.dock.ActiveIsDialog()
		return e.evaluateDodge(covering)
	case DodgeMaximized:
		covering := e.view.ActiveWindowMaximized() && e.view.ActiveWindowIntersects() && !e.dock.DesktopIsActive()
		return e.evaluateDodge(covering)
	case DodgeAllWindows:
		return e.evaluateDodge(e.view.ExistsWindowIntersecting())
	case WindowsCanCover:
		return e.evaluateWindowsCanCover()
	default:
		return DecisionRaise
	}
}

func (e *Engine) interacting() bool {
	return e.hovered || e.dragEnter || e.raiseTemporarily || e.edgeRevealed
}

func (e *Engine) evaluateAutoHide() Decision {
	if e.interacting() || e.view.WindowInAttention() {
		return DecisionRaise
	}
	if e.HidingBlocked() {
		return DecisionKeep
	}
	return DecisionLower
}

func (e *Engine) evaluateDodge(covering bool) Decision {
	if e.interacting() || !covering {
		return DecisionRaise
	}
	if e.view.WindowInAttention() {
		// A shown dock-typed panel is left alone rather than restacked.
		if e.opts.DockWindowType && !e.hidden {
			return DecisionKeep
		}
		return DecisionRaise
	}
	if e.HidingBlocked() {
		return DecisionKeep
	}
	if !e.dock.DockIsOnTop() && !(e.opts.DockWindowType && !e.hidden) {
		return DecisionKeep
	}
	return DecisionLower
}

func (e *Engine) evaluateWindowsCanCover() Decision {
	if e.opts.DockWindowType {
		return DecisionKeep
	}
	if e.interacting() {
		return DecisionRaise
	}
	if e.view.WindowInAttention() && !e.dock.DockIsOnTop() {
		return DecisionRaise
	}
	if e.dock.DockIsOnTop() && e.dock.DockIsCovering() && !e.HidingBlocked() {
		return DecisionLower
	}
	return DecisionKeep
}

func (e *Engine) apply(d Decision, restart bool) {
	switch d {
	case DecisionRaise:
		e.hideTimer.Stop()
		if !e.hidden {
			e.showTimer.Stop()
			return
		}
		if e.opts.ShowDelay <= 0 {
			e.showTimer.Stop()
			e.doRaise(false)
			return
		}
		if !e.showTimer.Active() {
			e.showTimer.Start()
		}
	case DecisionLower:
		e.showTimer.Stop()
		if e.hidden || e.HidingBlocked() {
			e.hideTimer.Stop()
			return
		}
		if e.hideNow || e.opts.HideDelay <= 0 {
			e.hideTimer.Stop()
			e.doLower()
			return
		}
		if restart || !e.hideTimer.Active() {
			e.hideTimer.Start()
		}
	default:
		e.stopTimers()
	}
}

func (e *Engine) onShowTimeout() {
	if e.closed || !e.hidden {
		return
	}
	if e.evaluate() == DecisionRaise {
		e.doRaise(false)
	}
}

func (e *Engine) onHideTimeout() {
	if e.closed || e.hidden || e.HidingBlocked() || e.dragEnter || e.hovered {
		return
	}
	if e.caps.PointerPolling && e.dock.PointerInside() {
		e.hideTimer.Start()
		return
	}
	if e.evaluate() != DecisionLower {
		return
	}
	e.doLower()
}

// onRevealTimeout ends a strip reveal the panel never confirmed with an
// enter event. With pointer polling a pointer still over the panel extends it.
func (e *Engine) onRevealTimeout() {
	if e.closed || !e.edgeRevealed {
		return
	}
	if e.caps.PointerPolling && e.dock.PointerInside() {
		e.revealTimer.Start()
		return
	}
	e.edgeRevealed = false
	e.reconsider(true)
}

func (e *Engine) endEdgeReveal() {
	e.edgeRevealed = false
	e.revealTimer.Stop()
}

func (e *Engine) onRecheck() {
	if e.closed || e.policy != WindowsCanCover {
		return
	}
	e.reconsider(false)
}

func (e *Engine) onTemporaryRaiseEnd() {
	if e.closed {
		return
	}
	e.raiseTemporarily = false
	e.hideNow = true
	e.reconsider(true)
	e.hideNow = false
}

func (e *Engine) doRaise(immediate bool) {
	e.hidden = false
	e.hideNow = false
	if e.reveal != nil {
		e.reveal.Hide()
	}
	e.logger.Debug("visibility: raise", "policy", e.policy.String(), "immediate", immediate)
	if immediate {
		e.signals.MustBeRaisedImmediately()
		return
	}
	e.signals.MustBeRaised()
}

func (e *Engine) doLower() {
	e.hidden = true
	e.logger.Debug("visibility: lower", "policy", e.policy.String())
	e.signals.MustBeLowered()
	if e.reveal != nil && e.policy.HideCapable() {
		e.reveal.Show()
	}
}

func (e *Engine) stopTimers() {
	e.showTimer.Stop()
	e.hideTimer.Stop()
}

func revealGrace(hide time.Duration) time.Duration {
	return max(hide, minRevealGrace)
}

func temporaryRaiseDuration(hide time.Duration) time.Duration {
	d := 2 * hide
	if d < minTemporaryRaise {
		return minTemporaryRaise
	}
	if d > maxTemporaryRaise {
		return maxTemporaryRaise
	}
	return d
}
