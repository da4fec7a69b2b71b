package config

import (
	"fmt"
	"regexp"
	"strconv"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	log_level
//	gc_interval
//	panels
//	panels[<i>]
//	panels[<i>].<field>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

var panelPath = regexp.MustCompile(`^panels\[(\d+)\](?:\.([a-z_]+))?$`)

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "log_level":
		return cfg.LogLevel, nil
	case "gc_interval":
		return cfg.GCInterval.String(), nil
	case "panels":
		names := make([]string, 0, len(cfg.Panels))
		for _, p := range cfg.Panels {
			names = append(names, p.Name)
		}
		return names, nil
	}

	m := panelPath.FindStringSubmatch(path)
	if m == nil {
		return nil, fmt.Errorf("unknown config path %q", path)
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil || idx >= len(cfg.Panels) {
		return nil, fmt.Errorf("no panel at index %s", m[1])
	}
	p := cfg.Panels[idx]
	if m[2] == "" {
		return p, nil
	}
	return panelField(p, m[2])
}

func panelField(p Panel, field string) (any, error) {
	switch field {
	case "name":
		return p.Name, nil
	case "match_class":
		return p.MatchClass, nil
	case "match_name":
		return p.MatchName, nil
	case "location":
		return p.Location, nil
	case "visibility":
		return p.Visibility, nil
	case "show_delay":
		return p.ShowDelay.String(), nil
	case "hide_delay":
		return p.HideDelay.String(), nil
	case "recheck_interval":
		return p.RecheckInterval.String(), nil
	case "raise_on_desktop_change":
		return p.RaiseOnDesktopChange, nil
	case "raise_on_activity_change":
		return p.RaiseOnActivityChange, nil
	case "dock_window_type":
		return p.DockWindowType, nil
	case "edge_reveal":
		return p.EdgeReveal, nil
	case "all_desktops":
		return p.AllDesktops, nil
	case "peek_hotkey":
		return p.PeekHotkey, nil
	case "peek_duration":
		return p.PeekDuration.String(), nil
	default:
		return nil, fmt.Errorf("unknown panel field %q", field)
	}
}
