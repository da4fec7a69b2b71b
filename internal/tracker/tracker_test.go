package tracker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/platform/platformtest"
)

var (
	screen = platform.Rect{Width: 1920, Height: 1080}
	panel  = platform.Rect{X: 0, Y: 1040, Width: 1920, Height: 40}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bottomPanel() PanelGeometry {
	return PanelGeometry{Screen: screen, Available: platform.Rect{Width: 1920, Height: 1040}, Panel: panel, Edge: platform.EdgeBottom}
}

func newTracker(t *testing.T, wm *platformtest.WM, cfg Config) *Tracker {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	tr := New(wm, cfg)
	t.Cleanup(tr.Close)
	return tr
}

func TestTrackerSeedsExistingWindows(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	wm.AddSilently(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	wm.AddSilently(platform.WindowInfo{ID: 2, Geometry: platform.Rect{X: 50, Y: 50, Width: 100, Height: 100}})

	tr := newTracker(t, wm, Config{})
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 1, wm.Subscribers())
	require.Len(t, tr.Displays(), 1)
}

func TestTrackerFollowsAddRemoveAndChange(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()

	var changes []Change
	view.OnChange(func(c Change) { changes = append(changes, c) })

	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 0, Width: 400, Height: 400}})
	assert.Equal(t, 1, tr.Len())
	assert.False(t, view.ExistsWindowIntersecting())

	wm.Move(1, platform.Rect{X: 0, Y: 900, Width: 400, Height: 400})
	assert.True(t, view.ExistsWindowIntersecting())
	require.NotEmpty(t, changes)
	assert.True(t, changes[len(changes)-1].Has(ChangeIntersecting))

	wm.Update(1, platform.FieldMinimized, func(i *platform.WindowInfo) { i.Minimized = true })
	assert.False(t, view.ExistsWindowIntersecting())

	wm.Remove(1)
	assert.Zero(t, tr.Len())
	_, ok := tr.Window(1)
	assert.False(t, ok)
}

func TestActiveWindowSummary(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{Schemes: func(id platform.WindowID) string {
		if id == 2 {
			return "breeze-dark"
		}
		return ""
	}})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()

	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 0, Width: 400, Height: 400}})
	wm.Add(platform.WindowInfo{ID: 2, Maximized: true, Geometry: platform.Rect{Width: 1920, Height: 1040}})

	wm.Activate(1)
	s := view.Summary()
	assert.Equal(t, platform.WindowID(1), s.ActiveWindow)
	assert.True(t, s.ExistsActive)
	assert.False(t, s.ActiveMaximized)
	assert.True(t, view.ExistsWindowMaximized())

	wm.Activate(2)
	s = view.Summary()
	assert.True(t, s.ActiveMaximized)
	assert.True(t, s.ActiveTouching)
	assert.False(t, s.ActiveIntersecting)
	assert.Equal(t, "breeze-dark", view.ActiveWindowScheme())
	assert.Equal(t, "breeze-dark", view.TouchingWindowScheme())
	assert.Equal(t, platform.WindowID(2), tr.ActiveWindow())
}

func TestIgnoredWindowsDoNotCount(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	wm.AddDock(99, panel)
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()

	require.True(t, view.ExistsWindowIntersecting())
	tr.Ignore(99)
	assert.False(t, view.ExistsWindowIntersecting())
	tr.Unignore(99)
	assert.True(t, view.ExistsWindowIntersecting())
}

func TestInvalidInfoIsExcluded(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 1000, Width: 100, Height: 100}})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()
	require.True(t, view.ExistsWindowIntersecting())

	wm.Break(1)
	wm.Move(1, platform.Rect{X: 0, Y: 1000, Width: 200, Height: 100})
	assert.Zero(t, tr.Len())
	assert.False(t, view.ExistsWindowIntersecting())
}

func TestSweepEvictsVanishedWindows(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	wm.Add(platform.WindowInfo{ID: 2, Geometry: platform.Rect{X: 10, Y: 10, Width: 100, Height: 100}})

	wm.Update(2, platform.FieldGeometry, func(i *platform.WindowInfo) { i.Geometry = platform.Rect{} })
	wm.Vanish(2)
	require.Equal(t, 2, tr.Len())

	assert.Equal(t, 1, tr.Sweep())
	assert.Equal(t, 1, tr.Len())
	assert.Zero(t, tr.Sweep())
}

func TestAttentionIsClearedWhenWindowGoes(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.AllScreens()
	wm.Add(platform.WindowInfo{ID: 3, Geometry: platform.Rect{Width: 100, Height: 100}})

	var got []Change
	view.OnChange(func(c Change) { got = append(got, c) })

	wm.Attention(3, true)
	assert.True(t, view.WindowInAttention())
	assert.Equal(t, platform.WindowID(3), tr.AttentionWindow())

	wm.Remove(3)
	assert.False(t, view.WindowInAttention())
	require.NotEmpty(t, got)
	assert.True(t, got[0].Has(ChangeAttention))
}

func TestAttentionSurvivesWhileAnotherWindowStillDemandsIt(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.AllScreens()
	wm.Add(platform.WindowInfo{ID: 3, Geometry: platform.Rect{Width: 100, Height: 100}})
	wm.Add(platform.WindowInfo{ID: 4, Geometry: platform.Rect{X: 200, Width: 100, Height: 100}})

	wm.Attention(3, true)
	wm.Attention(4, true)
	assert.Equal(t, platform.WindowID(4), tr.AttentionWindow())

	wm.Attention(4, false)
	assert.True(t, view.WindowInAttention(), "window 3 still demands attention")
	assert.Equal(t, platform.WindowID(3), tr.AttentionWindow())

	wm.Attention(4, true)
	wm.Remove(3)
	assert.True(t, view.WindowInAttention())

	wm.Attention(0, false)
	assert.False(t, view.WindowInAttention())
	assert.Zero(t, tr.AttentionWindow())
}

func TestScreenScanEvictsFaultyWindows(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()
	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 1000, Width: 100, Height: 100}})
	wm.Add(platform.WindowInfo{ID: 2, Geometry: platform.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	wm.Attention(2, true)
	require.Equal(t, 2, tr.Len())

	wm.Move(2, platform.Rect{})
	assert.Equal(t, 1, tr.Len(), "evicted without waiting for the sweep")
	assert.False(t, view.WindowInAttention())
	assert.True(t, view.ExistsWindowIntersecting())
	assert.Zero(t, tr.Sweep())
}

func TestDesktopSwitchReloadsWindows(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()
	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 1000, Width: 100, Height: 100}})
	wm.Add(platform.WindowInfo{ID: 2, Geometry: platform.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	require.True(t, view.ExistsWindowIntersecting())

	var got Change
	view.OnChange(func(c Change) { got |= c })
	wm.SwitchDesktop(2)

	assert.False(t, view.ExistsWindowIntersecting())
	assert.True(t, got.Has(ChangeDesktop))
	assert.True(t, got.Has(ChangeIntersecting))
}

func TestScreenViewOnlyCountsItsScreen(t *testing.T) {
	left := platform.Display{ID: 0, Name: "DP-1", Bounds: screen, Usable: screen}
	rightBounds := platform.Rect{X: 1920, Width: 1920, Height: 1080}
	right := platform.Display{ID: 1, Name: "DP-2", Bounds: rightBounds, Usable: rightBounds}
	wm := platformtest.New(left, right)
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()

	wm.Add(platform.WindowInfo{ID: 1, Maximized: true, Geometry: rightBounds})
	assert.False(t, view.ExistsWindowMaximized())
	assert.True(t, tr.AllScreens().ExistsWindowMaximized())
}

func TestClosedViewStopsNotifying(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())

	calls := 0
	view.OnChange(func(Change) { calls++ })
	view.Close()
	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 0, Y: 1000, Width: 100, Height: 100}})

	assert.Zero(t, calls)
	assert.True(t, view.Closed())
	assert.Equal(t, Summary{}, view.Summary())

	tr.Close()
	assert.Zero(t, wm.Subscribers())
	assert.True(t, tr.AllScreens().Closed())
}

func TestExistsWindowTouchingEdge(t *testing.T) {
	wm := platformtest.New(platformtest.SingleScreen())
	tr := newTracker(t, wm, Config{})
	view := tr.NewScreenView(bottomPanel())
	defer view.Close()

	wm.Add(platform.WindowInfo{ID: 1, Geometry: platform.Rect{X: 100, Y: 640, Width: 400, Height: 400}})
	assert.True(t, view.ExistsWindowTouchingEdge(platform.EdgeBottom))
	assert.False(t, view.ExistsWindowTouchingEdge(platform.EdgeTop))

	wm.Add(platform.WindowInfo{ID: 2, Geometry: platform.Rect{X: 0, Y: 0, Width: 300, Height: 300}})
	assert.True(t, view.ExistsWindowTouchingEdge(platform.EdgeTop))
	assert.True(t, view.ExistsWindowTouchingEdge(platform.EdgeLeft))
	assert.False(t, view.ExistsWindowTouchingEdge(platform.EdgeRight))
}

func TestIntersectsIsSymmetric(t *testing.T) {
	rects := []platform.Rect{
		{X: 0, Y: 0, Width: 100, Height: 100},
		{X: 99, Y: 99, Width: 10, Height: 10},
		{X: 100, Y: 0, Width: 10, Height: 10},
		{X: -50, Y: -50, Width: 60, Height: 60},
		{X: 20, Y: 20, Width: 0, Height: 40},
	}
	for _, a := range rects {
		for _, b := range rects {
			assert.Equal(t, a.Intersects(b), b.Intersects(a), "%s vs %s", a, b)
		}
	}
	assert.False(t, rects[0].Intersects(rects[2]), "shared edges do not overlap")
}

func TestIntersectsWindowFlags(t *testing.T) {
	far := platform.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, Intersects(platform.WindowInfo{Fullscreen: true, Geometry: far}, panel))
	assert.False(t, Intersects(platform.WindowInfo{Shaded: true, Geometry: screen}, panel))
	assert.False(t, Intersects(platform.WindowInfo{Minimized: true, Geometry: screen}, panel))
	assert.True(t, Intersects(platform.WindowInfo{Geometry: screen}, panel))
}

func TestIsMaximizedInFallsBackToGeometry(t *testing.T) {
	area := platform.Rect{Width: 1920, Height: 1040}
	assert.True(t, IsMaximizedIn(platform.WindowInfo{Geometry: area}, area))
	assert.True(t, IsMaximizedIn(platform.WindowInfo{MaxVertical: true, MaxHorizontal: true, Geometry: platform.Rect{Width: 800, Height: 600}}, area))
	assert.False(t, IsMaximizedIn(platform.WindowInfo{MaxVertical: true, Geometry: platform.Rect{Width: 800, Height: 1040}}, area))
	assert.False(t, IsMaximizedIn(platform.WindowInfo{Maximized: true, Minimized: true, Geometry: area}, area))
}

func TestTouchesPanelEdge(t *testing.T) {
	tests := []struct {
		name   string
		window platform.Rect
		panel  platform.Rect
		edge   platform.Edge
		want   bool
	}{
		{"bottom flush", platform.Rect{X: 0, Y: 640, Width: 100, Height: 400}, panel, platform.EdgeBottom, true},
		{"bottom gap", platform.Rect{X: 0, Y: 630, Width: 100, Height: 400}, panel, platform.EdgeBottom, false},
		{"bottom no overlap on x", platform.Rect{X: 2000, Y: 640, Width: 100, Height: 400}, panel, platform.EdgeBottom, false},
		{"top flush", platform.Rect{X: 0, Y: 40, Width: 100, Height: 100}, platform.Rect{Width: 1920, Height: 40}, platform.EdgeTop, true},
		{"left flush", platform.Rect{X: 48, Y: 10, Width: 100, Height: 100}, platform.Rect{Width: 48, Height: 1080}, platform.EdgeLeft, true},
		{"right flush", platform.Rect{X: 1772, Y: 10, Width: 100, Height: 100}, platform.Rect{X: 1872, Width: 48, Height: 1080}, platform.EdgeRight, true},
		{"empty window", platform.Rect{}, panel, platform.EdgeBottom, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TouchesPanelEdge(tt.window, tt.panel, tt.edge))
		})
	}
}
