package config

import (
	"fmt"
	"strings"
)

// ValidationError points at the YAML path (and, once loaded from a file, the
// source position) of an invalid setting.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig. Panels missing a
// name are kept with an empty name so Validate can report them.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.GCInterval != nil {
		cfg.GCInterval = *raw.GCInterval
	}

	cfg.Panels = make([]Panel, 0, len(raw.Panels))
	for _, rp := range raw.Panels {
		name := ""
		if rp.Name != nil {
			name = strings.TrimSpace(*rp.Name)
		}
		p := DefaultPanel(name)
		if rp.MatchClass != nil {
			p.MatchClass = strings.TrimSpace(*rp.MatchClass)
		}
		if rp.MatchName != nil {
			p.MatchName = *rp.MatchName
		}
		if rp.Location != nil {
			p.Location = strings.ToLower(strings.TrimSpace(*rp.Location))
		}
		if rp.Visibility != nil {
			p.Visibility = strings.TrimSpace(*rp.Visibility)
		}
		if rp.ShowDelay != nil {
			p.ShowDelay = *rp.ShowDelay
		}
		if rp.HideDelay != nil {
			p.HideDelay = *rp.HideDelay
		}
		if rp.RecheckInterval != nil {
			p.RecheckInterval = *rp.RecheckInterval
		}
		if rp.RaiseOnDesktopChange != nil {
			p.RaiseOnDesktopChange = *rp.RaiseOnDesktopChange
		}
		if rp.RaiseOnActivityChange != nil {
			p.RaiseOnActivityChange = *rp.RaiseOnActivityChange
		}
		if rp.DockWindowType != nil {
			p.DockWindowType = *rp.DockWindowType
		}
		if rp.EdgeReveal != nil {
			p.EdgeReveal = *rp.EdgeReveal
		}
		if rp.AllDesktops != nil {
			p.AllDesktops = *rp.AllDesktops
		}
		if rp.PeekHotkey != nil {
			p.PeekHotkey = strings.TrimSpace(*rp.PeekHotkey)
		}
		if rp.PeekDuration != nil {
			p.PeekDuration = *rp.PeekDuration
		}
		cfg.Panels = append(cfg.Panels, p)
	}
	return cfg, nil
}
