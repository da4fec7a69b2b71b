package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawPanel is a panel entry as written in one file. Nil means "not set".
type RawPanel struct {
	Name       *string `yaml:"name"`
	MatchClass *string `yaml:"match_class"`
	MatchName  *string `yaml:"match_name"`
	Location   *string `yaml:"location"`
	Visibility *string `yaml:"visibility"`

	ShowDelay       *Duration `yaml:"show_delay"`
	HideDelay       *Duration `yaml:"hide_delay"`
	RecheckInterval *Duration `yaml:"recheck_interval"`

	RaiseOnDesktopChange  *bool `yaml:"raise_on_desktop_change"`
	RaiseOnActivityChange *bool `yaml:"raise_on_activity_change"`
	DockWindowType        *bool `yaml:"dock_window_type"`
	EdgeReveal            *bool `yaml:"edge_reveal"`
	AllDesktops           *bool `yaml:"all_desktops"`

	PeekHotkey   *string   `yaml:"peek_hotkey"`
	PeekDuration *Duration `yaml:"peek_duration"`
}

// RawConfig is one config file before defaults are applied.
type RawConfig struct {
	Include    IncludeList `yaml:"include"`
	LogLevel   *string     `yaml:"log_level"`
	GCInterval *Duration   `yaml:"gc_interval"`
	Panels     []RawPanel  `yaml:"panels"`
}

// merge layers overlay on top of c. Panels with the same name are merged
// field by field; new names are appended in order.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.GCInterval != nil {
		out.GCInterval = overlay.GCInterval
	}

	out.Panels = append([]RawPanel(nil), c.Panels...)
	for _, p := range overlay.Panels {
		idx := -1
		if p.Name != nil {
			for i, existing := range out.Panels {
				if existing.Name != nil && *existing.Name == *p.Name {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			out.Panels = append(out.Panels, p)
			continue
		}
		out.Panels[idx] = mergeRawPanel(out.Panels[idx], p)
	}
	return out
}

func mergeRawPanel(base RawPanel, overlay RawPanel) RawPanel {
	out := base
	if overlay.MatchClass != nil {
		out.MatchClass = overlay.MatchClass
	}
	if overlay.MatchName != nil {
		out.MatchName = overlay.MatchName
	}
	if overlay.Location != nil {
		out.Location = overlay.Location
	}
	if overlay.Visibility != nil {
		out.Visibility = overlay.Visibility
	}
	if overlay.ShowDelay != nil {
		out.ShowDelay = overlay.ShowDelay
	}
	if overlay.HideDelay != nil {
		out.HideDelay = overlay.HideDelay
	}
	if overlay.RecheckInterval != nil {
		out.RecheckInterval = overlay.RecheckInterval
	}
	if overlay.RaiseOnDesktopChange != nil {
		out.RaiseOnDesktopChange = overlay.RaiseOnDesktopChange
	}
	if overlay.RaiseOnActivityChange != nil {
		out.RaiseOnActivityChange = overlay.RaiseOnActivityChange
	}
	if overlay.DockWindowType != nil {
		out.DockWindowType = overlay.DockWindowType
	}
	if overlay.EdgeReveal != nil {
		out.EdgeReveal = overlay.EdgeReveal
	}
	if overlay.AllDesktops != nil {
		out.AllDesktops = overlay.AllDesktops
	}
	if overlay.PeekHotkey != nil {
		out.PeekHotkey = overlay.PeekHotkey
	}
	if overlay.PeekDuration != nil {
		out.PeekDuration = overlay.PeekDuration
	}
	return out
}
