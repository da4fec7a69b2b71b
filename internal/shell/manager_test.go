package shell

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/dockvis/internal/config"
	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/platform/platformtest"
	"github.com/1broseidon/dockvis/internal/visibility"
)

const panelID platform.WindowID = 50

var (
	bottomBar = platform.Rect{X: 0, Y: 1040, Width: 1920, Height: 40}
	topBar    = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 30}
	covering  = platform.Rect{X: 100, Y: 900, Width: 800, Height: 600}
)

type fixture struct {
	wm     *platformtest.WM
	dock   *platformtest.Dock
	strips *platformtest.Strips
	clock  *eventloop.ManualClock
	mgr    *Manager
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	wm := platformtest.New(platformtest.SingleScreen())
	f := &fixture{
		wm:     wm,
		dock:   wm.AddDock(panelID, bottomBar).Name("Polybar", "polybar-main"),
		strips: &platformtest.Strips{},
		clock:  eventloop.NewManualClock(),
	}
	f.mgr = NewManager(Options{
		System: wm,
		Host:   wm,
		Strips: f.strips,
		Clock:  f.clock,
		Post:   eventloop.Immediate,
		Logger: quietLogger(),
	})
	t.Cleanup(f.mgr.Close)
	return f
}

func spec(name string, p visibility.Policy) PanelSpec {
	return PanelSpec{
		Name:            name,
		MatchClass:      "polybar",
		Edge:            platform.EdgeBottom,
		Policy:          p,
		HideDelay:       visibility.DefaultHideDelay,
		RecheckInterval: visibility.DefaultRecheckInterval,
		EdgeReveal:      true,
		AllDesktops:     true,
	}
}

func TestAttachAppliesInitialFlags(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.WindowsGoBelow)})

	p, ok := f.mgr.Panel("main")
	require.True(t, ok)
	assert.Equal(t, panelID, p.Window())
	assert.Equal(t, []string{"default-flags", "all-desktops", "top"}, f.dock.Commands)
	assert.True(t, f.dock.Sticky())
	assert.True(t, f.dock.Watched())

	assert.False(t, p.View().ExistsWindowIntersecting(), "the panel never counts against itself")
}

func TestDodgeActiveLowersAndRevealStripRaises(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.DodgeActive)})
	p, _ := f.mgr.Panel("main")

	f.wm.Add(platform.WindowInfo{ID: 1, Geometry: covering})
	f.wm.Activate(1)
	f.clock.Advance(visibility.DefaultHideDelay)

	require.True(t, p.Engine().Hidden())
	assert.Equal(t, "bottom", f.dock.LastCommand())
	live := f.strips.Live()
	require.Len(t, live, 1)
	assert.Equal(t, platform.Rect{X: 1, Y: 1078, Width: 1919, Height: 2}, live[0].Geom)

	live[0].Enter()
	assert.False(t, p.Engine().Hidden())
	assert.Equal(t, "top", f.dock.LastCommand())
	assert.Empty(t, f.strips.Live())
	assert.False(t, p.Status().Hovered, "only the panel's own enter marks it hovered")

	f.dock.Enter()
	assert.True(t, p.Status().Hovered)
	f.clock.Advance(5 * time.Second)
	assert.False(t, p.Engine().Hidden())
}

func TestHoverOnPanelCancelsHide(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AutoHide)})
	p, _ := f.mgr.Panel("main")
	require.True(t, p.Engine().HidePending())

	f.dock.Enter()
	f.clock.Advance(5 * time.Second)
	assert.False(t, p.Engine().Hidden())

	f.dock.Leave()
	f.clock.Advance(visibility.DefaultHideDelay)
	assert.True(t, p.Engine().Hidden())
	assert.Equal(t, 1, p.Status().Lowers)
}

func TestUnmatchedPanelIsRetriedOnReconcile(t *testing.T) {
	f := newFixture(t)
	s := spec("side", visibility.AlwaysVisible)
	s.MatchClass = "tint2"
	f.mgr.Apply([]PanelSpec{s})

	st := f.mgr.Status()
	require.Len(t, st.Panels, 1)
	assert.False(t, st.Panels[0].Attached)
	assert.Contains(t, st.Panels[0].Error, "tint2")
	assert.Error(t, f.mgr.SetPolicy("side", visibility.AutoHide))

	f.wm.AddDock(60, topBar).Name("Tint2", "tint2")
	f.mgr.Reconcile()

	p, ok := f.mgr.Panel("side")
	require.True(t, ok)
	assert.Equal(t, platform.WindowID(60), p.Window())
	assert.True(t, f.mgr.Status().Panels[0].Attached)
}

func TestApplyUpdatesTunablesInPlace(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.WindowsGoBelow)})
	before, _ := f.mgr.Panel("main")

	changed := spec("main", visibility.AutoHide)
	changed.HideDelay = 2 * time.Second
	f.mgr.Apply([]PanelSpec{changed})

	after, _ := f.mgr.Panel("main")
	assert.Same(t, before, after)
	assert.Equal(t, visibility.AutoHide, after.Engine().Policy())
	assert.Equal(t, 2*time.Second, after.Engine().Options().HideDelay)

	f.clock.Advance(visibility.DefaultHideDelay)
	assert.False(t, after.Engine().Hidden())
	f.clock.Advance(2*time.Second - visibility.DefaultHideDelay)
	assert.True(t, after.Engine().Hidden())
}

func TestApplyReattachesWhenMatchChanges(t *testing.T) {
	f := newFixture(t)
	other := f.wm.AddDock(60, topBar).Name("Tint2", "tint2")
	f.mgr.Apply([]PanelSpec{spec("main", visibility.WindowsGoBelow)})

	moved := spec("main", visibility.WindowsGoBelow)
	moved.MatchClass = "tint2"
	moved.Edge = platform.EdgeTop
	f.mgr.Apply([]PanelSpec{moved})

	p, ok := f.mgr.Panel("main")
	require.True(t, ok)
	assert.Equal(t, platform.WindowID(60), p.Window())
	assert.Equal(t, "normal", f.dock.LastCommand(), "the old window is handed back")
	assert.Equal(t, "top", other.LastCommand())
	assert.False(t, f.dock.Watched(), "the old window is no longer watched")
	assert.True(t, other.Watched())
}

func TestApplyRemovesPanels(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AutoHide)})
	f.clock.Advance(visibility.DefaultHideDelay)
	require.Len(t, f.strips.Live(), 1)

	f.mgr.Apply(nil)
	_, ok := f.mgr.Panel("main")
	assert.False(t, ok)
	assert.Empty(t, f.strips.Live())
	assert.Equal(t, "normal", f.dock.LastCommand())
	assert.Zero(t, f.clock.Pending())
}

func TestReconcileConvergesStacking(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AlwaysVisible)})

	// Something else pushed the panel down behind our back.
	f.dock.ShowDockOnBottom()
	f.mgr.Reconcile()
	assert.Equal(t, "top", f.dock.LastCommand())
	assert.True(t, f.dock.DockIsOnTop())

	n := len(f.dock.Commands)
	f.mgr.Reconcile()
	assert.Len(t, f.dock.Commands, n, "a converged panel is left alone")
}

func TestReconcileKeepsCoverPanelsBelow(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.WindowsAlwaysCover)})
	require.True(t, f.dock.DockIsBelow())

	f.dock.ShowDockOnTop()
	f.mgr.Reconcile()
	assert.Equal(t, "bottom", f.dock.LastCommand())
}

func TestPanelScanEvictsDegenerateWindows(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.DodgeAllWindows)})
	f.wm.Add(platform.WindowInfo{ID: 1, Geometry: covering})
	f.wm.Move(1, platform.Rect{})

	_, tracked := f.mgr.Tracker().Window(1)
	assert.False(t, tracked)
	assert.Zero(t, f.mgr.Reconcile(), "nothing left for the sweep")
}

func TestBlockHidingExpires(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AutoHide)})
	p, _ := f.mgr.Panel("main")
	f.clock.Advance(visibility.DefaultHideDelay)
	require.True(t, p.Engine().Hidden())

	require.NoError(t, f.mgr.BlockHiding("main", "menu", 2*time.Second))
	assert.False(t, p.Engine().Hidden())
	assert.Equal(t, []string{"menu"}, p.Status().Blocks)

	f.clock.Advance(2 * time.Second)
	assert.Empty(t, p.Status().Blocks)
	f.clock.Advance(visibility.DefaultHideDelay)
	assert.True(t, p.Engine().Hidden())

	assert.Error(t, f.mgr.BlockHiding("main", "menu", 0))
	assert.Error(t, f.mgr.BlockHiding("nope", "menu", time.Second))
}

func TestSetPolicyAtRuntime(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AlwaysVisible)})

	require.NoError(t, f.mgr.SetPolicy("main", visibility.WindowsCanCover))
	p, _ := f.mgr.Panel("main")
	assert.Equal(t, visibility.WindowsCanCover, p.Spec().Policy)
	assert.Equal(t, "bottom", f.dock.LastCommand())

	assert.Error(t, f.mgr.SetPolicy("nope", visibility.AutoHide))
}

func TestPanelWindowClosedGoesPending(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.AutoHide)})

	f.dock.Destroy()
	_, ok := f.mgr.Panel("main")
	assert.False(t, ok)
	assert.Zero(t, f.clock.Pending(), "timers of a closed panel are stopped")

	st := f.mgr.Status()
	require.Len(t, st.Panels, 1)
	assert.Equal(t, "panel window closed", st.Panels[0].Error)
}

func TestPanelMoveRelocatesView(t *testing.T) {
	f := newFixture(t)
	s := spec("main", visibility.DodgeActive)
	f.mgr.Apply([]PanelSpec{s})
	p, _ := f.mgr.Panel("main")

	f.wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 100, Y: 10, Width: 400, Height: 300}})
	f.wm.Activate(1)
	assert.False(t, p.View().ActiveWindowIntersects())

	f.dock.MoveTo(topBar)
	assert.Equal(t, topBar, p.View().Panel().Panel)
	assert.True(t, p.View().ActiveWindowIntersects())
}

func TestStatusIsJSONFriendly(t *testing.T) {
	f := newFixture(t)
	f.mgr.Apply([]PanelSpec{spec("main", visibility.DodgeMaximized)})
	f.wm.Add(platform.WindowInfo{ID: 1, Maximized: true, Geometry: platform.Rect{Width: 1920, Height: 1080}})
	f.wm.Activate(1)

	st := f.mgr.Status()
	assert.Equal(t, uint32(1), st.ActiveWindow)
	require.Len(t, st.Panels, 1)
	assert.True(t, st.Panels[0].ActiveMaximized)
	assert.True(t, st.Panels[0].HidePending)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"policy":"dodge-maximized"`)
}

func TestSpecsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	p := config.DefaultPanel("main")
	p.MatchClass = "polybar"
	p.Location = "left"
	p.Visibility = "sometimes"
	p.HideDelay = config.Duration(time.Second)
	cfg.Panels = []config.Panel{p}

	specs := SpecsFromConfig(cfg, quietLogger())
	require.Len(t, specs, 1)
	assert.Equal(t, visibility.WindowsGoBelow, specs[0].Policy)
	assert.Equal(t, platform.EdgeLeft, specs[0].Edge)
	assert.Equal(t, time.Second, specs[0].HideDelay)
	assert.True(t, specs[0].EdgeReveal)

	assert.True(t, KnownPolicy("dodge_active"))
	assert.False(t, KnownPolicy("sometimes"))
}
