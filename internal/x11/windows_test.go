package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestParseState(t *testing.T) {
	st := ParseState([]string{
		"_NET_WM_STATE_MAXIMIZED_VERT",
		"_NET_WM_STATE_MAXIMIZED_HORZ",
		"_NET_WM_STATE_DEMANDS_ATTENTION",
		"_NET_WM_STATE_SOMETHING_ELSE",
	})
	if !st.MaximizedVert || !st.MaximizedHorz {
		t.Fatalf("expected both maximized flags, got %+v", st)
	}
	if !st.DemandsAttention {
		t.Fatalf("expected attention flag")
	}
	if st.Hidden || st.Above || st.Below || st.Fullscreen {
		t.Fatalf("unexpected flags: %+v", st)
	}

	if got := ParseState(nil); got != (WindowState{}) {
		t.Fatalf("empty state = %+v", got)
	}
}

func TestParseWindowType(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  WindowType
	}{
		{name: "untyped", names: nil, want: WindowType{Normal: true}},
		{name: "dialog", names: []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, want: WindowType{Dialog: true}},
		{name: "dock", names: []string{"_NET_WM_WINDOW_TYPE_DOCK"}, want: WindowType{Dock: true}},
		{name: "desktop", names: []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, want: WindowType{Desktop: true}},
		{name: "tooltip", names: []string{"_NET_WM_WINDOW_TYPE_TOOLTIP"}, want: WindowType{Other: true}},
		{
			name:  "fallback list",
			names: []string{"_KDE_NET_WM_WINDOW_TYPE_OVERRIDE", "_NET_WM_WINDOW_TYPE_NORMAL"},
			want:  WindowType{Normal: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseWindowType(tt.names); got != tt.want {
				t.Fatalf("ParseWindowType(%v) = %+v, want %+v", tt.names, got, tt.want)
			}
		})
	}
}

func TestMatchWindow(t *testing.T) {
	tests := []struct {
		name         string
		cls, inst    string
		title        string
		class, query string
		want         bool
	}{
		{name: "class", cls: "Polybar", inst: "polybar", class: "polybar", want: true},
		{name: "instance", cls: "Tint2", inst: "tint2-bottom", class: "TINT2-BOTTOM", want: true},
		{name: "title only", title: "main bar", query: "bar", want: true},
		{name: "class and title", cls: "Polybar", title: "polybar-top", class: "polybar", query: "top", want: true},
		{name: "title mismatch", cls: "Polybar", title: "polybar-top", class: "polybar", query: "bottom", want: false},
		{name: "class mismatch", cls: "Firefox", inst: "Navigator", class: "polybar", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchWindow(tt.cls, tt.inst, tt.title, tt.class, tt.query); got != tt.want {
				t.Fatalf("matchWindow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateStrutsForMonitor(t *testing.T) {
	left := &Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := &Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}

	// Bottom bar spanning only the left monitor.
	sp := &ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919}

	var accLeft, accRight dockStruts
	updateStrutsForMonitor(left, 3840, 1080, sp, &accLeft)
	updateStrutsForMonitor(right, 3840, 1080, sp, &accRight)

	if accLeft.bottom != 40 {
		t.Fatalf("left monitor bottom strut = %d, want 40", accLeft.bottom)
	}
	if accRight.bottom != 0 {
		t.Fatalf("right monitor bottom strut = %d, want 0", accRight.bottom)
	}
}

func TestIntersectionSize(t *testing.T) {
	got := intersectionSize(0, 0, 100, 100, 50, 80, 200, 300)
	if got.w != 50 || got.h != 20 {
		t.Fatalf("intersectionSize = %+v, want 50x20", got)
	}
	if intersects(0, 0, 10, 10, 10, 0, 20, 10) {
		t.Fatalf("touching rectangles must not intersect")
	}
}

func TestSchemeName(t *testing.T) {
	tests := []struct{ raw, want string }{
		{"", ""},
		{"  ", ""},
		{"/usr/share/color-schemes/BreezeDark.colors", "BreezeDark"},
		{"/home/u/.local/share/color-schemes/Nord.colors", "Nord"},
		{"Solarized", "Solarized"},
	}
	for _, tt := range tests {
		if got := SchemeName(tt.raw); got != tt.want {
			t.Fatalf("SchemeName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
