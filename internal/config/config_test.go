package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.GCInterval.Std() != 5*time.Second {
		t.Fatalf("expected gc_interval 5s, got %s", cfg.GCInterval)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != DefaultLogLevel {
		t.Fatalf("expected log_level %q, got %q", DefaultLogLevel, res.Config.LogLevel)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_PanelDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"panels:",
		"  - name: main",
		"    match_class: polybar",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Panels) != 1 {
		t.Fatalf("expected 1 panel, got %d", len(res.Config.Panels))
	}
	p := res.Config.Panels[0]
	if p.Location != "bottom" || p.Visibility != "windows-go-below" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.HideDelay.Std() != 700*time.Millisecond || p.ShowDelay != 0 {
		t.Fatalf("unexpected delays: show=%s hide=%s", p.ShowDelay, p.HideDelay)
	}
	if p.RecheckInterval.Std() != 900*time.Millisecond {
		t.Fatalf("unexpected recheck interval %s", p.RecheckInterval)
	}
	if !p.EdgeReveal || !p.AllDesktops {
		t.Fatalf("expected edge_reveal and all_desktops on by default")
	}
}

func TestLoadFromPath_Durations(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"gc_interval: 10s",
		"panels:",
		"  - name: dock",
		"    match_name: Plank",
		"    visibility: auto-hide",
		"    show_delay: 150ms",
		"    hide_delay: 1.5s",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.GCInterval.Std() != 10*time.Second {
		t.Fatalf("gc_interval = %s", res.Config.GCInterval)
	}
	p := res.Config.Panels[0]
	if p.ShowDelay.Std() != 150*time.Millisecond || p.HideDelay.Std() != 1500*time.Millisecond {
		t.Fatalf("unexpected delays: show=%s hide=%s", p.ShowDelay, p.HideDelay)
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "panels:\n  - name: a\n    match_class: x\n    colour: red\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected strict decoding to reject unknown key")
	}
}

func TestLoadFromPath_BadDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "gc_interval: soon\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected invalid duration error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorCarriesSource(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"panels:",
		"  - name: main",
		"    match_class: polybar",
		"    location: middle",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "panels[0].location" {
		t.Fatalf("expected path panels[0].location, got %q", verr.Path)
	}
	if verr.Source.Line != 4 {
		t.Fatalf("expected line 4, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:4:") {
		t.Fatalf("expected file position in message, got %q", err.Error())
	}
}

func TestValidate_Panels(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{
			name:   "missing name",
			mutate: func(c *Config) { c.Panels = []Panel{DefaultPanel("")} },
			path:   "panels[0].name",
		},
		{
			name: "duplicate name",
			mutate: func(c *Config) {
				a := DefaultPanel("a")
				a.MatchClass = "x"
				c.Panels = []Panel{a, a}
			},
			path: "panels[1].name",
		},
		{
			name:   "no match criteria",
			mutate: func(c *Config) { c.Panels = []Panel{DefaultPanel("a")} },
			path:   "panels[0]",
		},
		{
			name: "negative hide delay",
			mutate: func(c *Config) {
				a := DefaultPanel("a")
				a.MatchClass = "x"
				a.HideDelay = Duration(-time.Second)
				c.Panels = []Panel{a}
			},
			path: "panels[0].hide_delay",
		},
		{
			name: "peek hotkey without duration",
			mutate: func(c *Config) {
				a := DefaultPanel("a")
				a.MatchClass = "x"
				a.PeekHotkey = "Mod4-grave"
				a.PeekDuration = 0
				c.Panels = []Panel{a}
			},
			path: "panels[0].peek_duration",
		},
		{
			name:   "log level",
			mutate: func(c *Config) { c.LogLevel = "loud" },
			path:   "log_level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestUnknownVisibilityIsAWarningNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultPanel("main")
	p.MatchClass = "polybar"
	p.Visibility = "sometimes"
	cfg.Panels = []Panel{p}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unknown policy must validate, got %v", err)
	}
	warnings := cfg.Warnings(func(s string) bool { return s != "sometimes" })
	if len(warnings) != 1 || !strings.Contains(warnings[0], "windows-go-below") {
		t.Fatalf("expected fallback warning, got %v", warnings)
	}
}

func TestRaiseOnActivityChangeIsReportedInert(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultPanel("main")
	p.MatchClass = "polybar"
	p.RaiseOnActivityChange = true
	cfg.Panels = []Panel{p}

	warnings := cfg.Warnings(nil)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "raise_on_activity_change") {
		t.Fatalf("expected inert setting warning, got %v", warnings)
	}
}

func TestIncludeMergesPanelsByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", strings.Join([]string{
		"log_level: debug",
		"panels:",
		"  - name: main",
		"    match_class: polybar",
		"    visibility: dodge-active",
		"  - name: side",
		"    match_class: tint2",
		"",
	}, "\n"))
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include: base.yaml",
		"panels:",
		"  - name: main",
		"    hide_delay: 2s",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "debug" {
		t.Fatalf("expected included log_level, got %q", res.Config.LogLevel)
	}
	if len(res.Config.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(res.Config.Panels))
	}
	main := res.Config.Panels[0]
	if main.MatchClass != "polybar" || main.Visibility != "dodge-active" || main.HideDelay.Std() != 2*time.Second {
		t.Fatalf("expected merged panel, got %+v", main)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 loaded files, got %v", res.Files)
	}
}

func TestIncludeCycleIsReported(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"panels:",
		"  - name: main",
		"    match_class: polybar",
		"    hide_delay: 1s",
		"",
	}, "\n"))
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "panels[0].hide_delay")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "1s" || src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("unexpected explain result %v %+v", value, src)
	}

	value, src, err = Explain(res, "panels[0].visibility")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "windows-go-below" || src.Kind != SourceDefault {
		t.Fatalf("expected default visibility, got %v %+v", value, src)
	}

	if _, _, err := Explain(res, "panels[3].name"); err == nil {
		t.Fatalf("expected error for missing panel")
	}
}

func TestMarshalRoundTripKeepsDurationsReadable(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultPanel("main")
	p.MatchClass = "polybar"
	cfg.Panels = []Panel{p}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "hide_delay: 700ms") {
		t.Fatalf("expected duration string in output:\n%s", data)
	}

	path := writeConfig(t, t.TempDir(), "config.yaml", string(data))
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Panels[0] != p {
		t.Fatalf("round trip changed panel: %+v", res.Config.Panels[0])
	}
}

func TestSchemaDescribesPanels(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, want := range []string{`"panels"`, `"hide_delay"`, `"match_class"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("schema missing %s", want)
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "log_level: info\n")

	changed := make(chan struct{}, 4)
	w := NewWatcher(path, func() { changed <- struct{}{} }, nil)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, dir, "other.yaml", "ignored: true\n")
	writeConfig(t, dir, "config.yaml", "log_level: debug\n")

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected change notification")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("run: %v", err)
	}
}
