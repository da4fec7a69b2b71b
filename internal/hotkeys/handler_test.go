package hotkeys

import (
	"testing"
	"time"

	"github.com/1broseidon/dockvis/internal/config"
)

func TestPeekBindings(t *testing.T) {
	cfg := config.DefaultConfig()
	primary := config.DefaultPanel("main")
	primary.MatchClass = "polybar"
	primary.PeekHotkey = "Mod4-grave"
	primary.PeekDuration = config.Duration(3 * time.Second)
	side := config.DefaultPanel("side")
	side.MatchClass = "tint2"
	cfg.Panels = []config.Panel{primary, side}

	var gotPanel string
	var gotDuration time.Duration
	bindings := PeekBindings(cfg, func(panel string, d time.Duration) {
		gotPanel, gotDuration = panel, d
	})

	if len(bindings) != 1 {
		t.Fatalf("bindings = %d, want 1 (only panels with peek_hotkey)", len(bindings))
	}
	b := bindings[0]
	if b.Name != "main" || b.Keys != "Mod4-grave" {
		t.Fatalf("binding = %+v", b)
	}
	b.Action()
	if gotPanel != "main" || gotDuration != 3*time.Second {
		t.Fatalf("peek(%q, %v), want (main, 3s)", gotPanel, gotDuration)
	}
}

func TestPeekBindingsEmpty(t *testing.T) {
	if got := PeekBindings(config.DefaultConfig(), func(string, time.Duration) {}); len(got) != 0 {
		t.Fatalf("bindings = %v, want none", got)
	}
}
