package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/dockvis/internal/config"
)

func TestRunConfigInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dockvis", "config.yaml")

	if rc := runConfig([]string{"init", "--path", path, "--visibility", "auto-hide", "main", "Polybar"}); rc != 0 {
		t.Fatalf("config init rc=%d, want 0", rc)
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	p, ok := res.Config.Panel("main")
	if !ok {
		t.Fatal("panel main missing")
	}
	if p.MatchClass != "Polybar" || p.Visibility != "auto-hide" {
		t.Fatalf("panel = %+v", p)
	}

	if rc := runConfig([]string{"init", "--path", path, "main", "Polybar"}); rc != 1 {
		t.Fatalf("second init rc=%d, want 1 without --force", rc)
	}
	if rc := runConfig([]string{"init", "--path", path, "--force", "main", "Polybar"}); rc != 0 {
		t.Fatalf("forced init rc=%d, want 0", rc)
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("panels:\n  - name: main\n    match_class: polybar\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("panels:\n  - name: main\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
}

func TestRunConfigUsage(t *testing.T) {
	if rc := runConfig(nil); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if rc := runConfig([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
}

func TestFormatSource(t *testing.T) {
	got := formatSource(config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml", Line: 4, Column: 7})
	if !strings.HasPrefix(got, "file:/tmp/c.yaml:4:7") {
		t.Fatalf("formatSource = %q", got)
	}
	if got := formatSource(config.Source{Kind: config.SourceDefault}); got != "default" {
		t.Fatalf("formatSource default = %q", got)
	}
}
