package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/platform/platformtest"
)

var screen = platform.Rect{Width: 1920, Height: 1080}

func TestGeometryPerEdge(t *testing.T) {
	tests := []struct {
		name  string
		panel platform.Rect
		edge  platform.Edge
		want  platform.Rect
	}{
		{
			name:  "bottom full width",
			panel: platform.Rect{Y: 1040, Width: 1920, Height: 40},
			edge:  platform.EdgeBottom,
			want:  platform.Rect{X: 1, Y: 1078, Width: 1919, Height: 2},
		},
		{
			name:  "top short panel widened to a quarter",
			panel: platform.Rect{X: 860, Width: 200, Height: 30},
			edge:  platform.EdgeTop,
			want:  platform.Rect{X: 720, Y: 0, Width: 480, Height: 2},
		},
		{
			name:  "left",
			panel: platform.Rect{Y: 240, Width: 48, Height: 600},
			edge:  platform.EdgeLeft,
			want:  platform.Rect{X: 0, Y: 240, Width: 2, Height: 600},
		},
		{
			name:  "right clamped into screen",
			panel: platform.Rect{X: 1872, Y: 900, Width: 48, Height: 180},
			edge:  platform.EdgeRight,
			want:  platform.Rect{X: 1918, Y: 810, Width: 2, Height: 270},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Geometry(screen, tt.panel, tt.edge, Thickness(false)))
		})
	}
}

func TestGeometryOnSecondScreen(t *testing.T) {
	right := platform.Rect{X: 1920, Width: 2560, Height: 1440}
	got := Geometry(right, platform.Rect{X: 1920, Y: 1400, Width: 2560, Height: 40}, platform.EdgeBottom, Thickness(true))
	assert.Equal(t, platform.Rect{X: 1921, Y: 1434, Width: 2559, Height: 6}, got)
	assert.True(t, right.ContainsRect(got))
}

func TestGeometryEmptyScreen(t *testing.T) {
	assert.True(t, Geometry(platform.Rect{}, screen, platform.EdgeBottom, 2).Empty())
}

func newReveal(strips *platformtest.Strips, entered *int) *RevealWindow {
	r := New(Config{Factory: strips, OnEnter: func() { *entered++ }})
	r.SetPanel(screen, platform.Rect{Y: 1040, Width: 1920, Height: 40}, platform.EdgeBottom)
	return r
}

func TestShowIsIdempotent(t *testing.T) {
	strips := &platformtest.Strips{}
	var entered int
	r := newReveal(strips, &entered)

	r.Show()
	r.Show()
	require.Len(t, strips.Created, 1)
	assert.True(t, r.Visible())

	r.Hide()
	r.Hide()
	assert.False(t, r.Visible())
	assert.Empty(t, strips.Live())

	r.Show()
	assert.Len(t, strips.Created, 2)
}

func TestEnterForwardsOnlyForLiveStrip(t *testing.T) {
	strips := &platformtest.Strips{}
	var entered int
	r := newReveal(strips, &entered)

	r.Show()
	first := strips.Created[0]
	first.Enter()
	assert.Equal(t, 1, entered)

	r.Hide()
	first.Enter()
	assert.Equal(t, 1, entered, "destroyed strip must not forward")
}

func TestSetPanelMovesLiveStrip(t *testing.T) {
	strips := &platformtest.Strips{Composited: true}
	var entered int
	r := newReveal(strips, &entered)
	r.Show()

	r.SetPanel(screen, platform.Rect{Width: 1920, Height: 40}, platform.EdgeTop)
	require.Len(t, strips.Created, 1)
	assert.Equal(t, platform.Rect{X: 1, Y: 0, Width: 1919, Height: 6}, strips.Created[0].Geom)
	assert.Equal(t, strips.Created[0].Geom, r.Geometry())
}

func TestDisabledRevealCreatesNothing(t *testing.T) {
	strips := &platformtest.Strips{}
	var entered int
	r := newReveal(strips, &entered)
	r.Show()

	r.SetEnabled(false)
	assert.False(t, r.Visible())
	r.Show()
	assert.Len(t, strips.Created, 1)
}

func TestCreateFailureIsRetried(t *testing.T) {
	strips := &platformtest.Strips{Fail: true}
	var entered int
	r := newReveal(strips, &entered)

	r.Show()
	assert.False(t, r.Visible())

	strips.Fail = false
	r.Show()
	assert.True(t, r.Visible())
}
