package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("700ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string like \"700ms\"")
	}
	if value.Tag == "!!int" && value.Value == "0" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

const (
	DefaultLogLevel        = "info"
	DefaultGCInterval      = Duration(5 * time.Second)
	DefaultLocation        = "bottom"
	DefaultVisibility      = "windows-go-below"
	DefaultShowDelay       = Duration(0)
	DefaultHideDelay       = Duration(700 * time.Millisecond)
	DefaultRecheckInterval = Duration(900 * time.Millisecond)
	DefaultPeekDuration    = Duration(2 * time.Second)
)

// Panel describes one panel window to manage.
type Panel struct {
	// Name identifies the panel in status output and IPC commands.
	Name string `yaml:"name" jsonschema:"required"`
	// MatchClass is compared case-insensitively against WM_CLASS class and instance.
	MatchClass string `yaml:"match_class,omitempty"`
	// MatchName must be contained in the window title.
	MatchName string `yaml:"match_name,omitempty"`

	Location   string `yaml:"location" jsonschema:"enum=bottom,enum=top,enum=left,enum=right"`
	Visibility string `yaml:"visibility"`

	ShowDelay       Duration `yaml:"show_delay"`
	HideDelay       Duration `yaml:"hide_delay"`
	RecheckInterval Duration `yaml:"recheck_interval"`

	RaiseOnDesktopChange  bool `yaml:"raise_on_desktop_change"`
	RaiseOnActivityChange bool `yaml:"raise_on_activity_change"`
	DockWindowType        bool `yaml:"dock_window_type"`
	EdgeReveal            bool `yaml:"edge_reveal"`
	AllDesktops           bool `yaml:"all_desktops"`

	// PeekHotkey is an xgbutil key sequence such as "Mod4-grave" that keeps
	// the panel shown for PeekDuration.
	PeekHotkey   string   `yaml:"peek_hotkey,omitempty"`
	PeekDuration Duration `yaml:"peek_duration"`
}

// Config is the daemon configuration.
type Config struct {
	LogLevel   string   `yaml:"log_level" jsonschema:"enum=debug,enum=info,enum=warning,enum=error"`
	GCInterval Duration `yaml:"gc_interval"`
	Panels     []Panel  `yaml:"panels"`
}

// DefaultPanel returns a panel with every optional field at its default.
func DefaultPanel(name string) Panel {
	return Panel{
		Name:            name,
		Location:        DefaultLocation,
		Visibility:      DefaultVisibility,
		ShowDelay:       DefaultShowDelay,
		HideDelay:       DefaultHideDelay,
		RecheckInterval: DefaultRecheckInterval,
		EdgeReveal:      true,
		AllDesktops:     true,
		PeekDuration:    DefaultPeekDuration,
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   DefaultLogLevel,
		GCInterval: DefaultGCInterval,
	}
}

// Panel looks up a panel by name.
func (c *Config) Panel(name string) (Panel, bool) {
	for _, p := range c.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return Panel{}, false
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks the merged configuration. Unknown visibility names are
// not errors; see Warnings.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.GCInterval <= 0 {
		return &ValidationError{Path: "gc_interval", Err: fmt.Errorf("gc_interval must be > 0")}
	}

	seen := make(map[string]int, len(c.Panels))
	for i, p := range c.Panels {
		path := fmt.Sprintf("panels[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name is required")}
		}
		if prev, ok := seen[p.Name]; ok {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate panel name %q (also panels[%d])", p.Name, prev)}
		}
		seen[p.Name] = i
		if strings.TrimSpace(p.MatchClass) == "" && strings.TrimSpace(p.MatchName) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("one of match_class or match_name is required")}
		}
		switch strings.ToLower(p.Location) {
		case "bottom", "top", "left", "right":
		default:
			return &ValidationError{Path: path + ".location", Err: fmt.Errorf("location must be one of: bottom, top, left, right")}
		}
		if p.ShowDelay < 0 {
			return &ValidationError{Path: path + ".show_delay", Err: fmt.Errorf("show_delay must be >= 0")}
		}
		if p.HideDelay < 0 {
			return &ValidationError{Path: path + ".hide_delay", Err: fmt.Errorf("hide_delay must be >= 0")}
		}
		if p.RecheckInterval <= 0 {
			return &ValidationError{Path: path + ".recheck_interval", Err: fmt.Errorf("recheck_interval must be > 0")}
		}
		if p.PeekHotkey != "" && p.PeekDuration <= 0 {
			return &ValidationError{Path: path + ".peek_duration", Err: fmt.Errorf("peek_duration must be > 0 when peek_hotkey is set")}
		}
	}
	return nil
}

// Warnings reports settings that load but will be adjusted at runtime.
func (c *Config) Warnings(knownPolicy func(string) bool) []string {
	var out []string
	for i, p := range c.Panels {
		if knownPolicy != nil && !knownPolicy(p.Visibility) {
			out = append(out, fmt.Sprintf("panels[%d].visibility: unknown policy %q, windows-go-below will be used", i, p.Visibility))
		}
		if p.DockWindowType && p.Visibility == "windows-can-cover" {
			out = append(out, fmt.Sprintf("panels[%d]: windows-can-cover has no effect with dock_window_type", i))
		}
		if p.RaiseOnActivityChange {
			out = append(out, fmt.Sprintf("panels[%d].raise_on_activity_change: the X11 backend does not report activity switches, the setting has no effect", i))
		}
	}
	return out
}
