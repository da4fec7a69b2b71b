// Package visibility decides when a panel is raised above other windows,
// lowered behind them, or auto-hidden.
package visibility

import (
	"fmt"
	"strings"

	"github.com/1broseidon/dockvis/internal/tracker"
)

// Policy is a panel's visibility mode.
type Policy int

const (
	None Policy = iota - 1
	AlwaysVisible
	AutoHide
	DodgeActive
	DodgeMaximized
	DodgeAllWindows
	WindowsGoBelow
	WindowsCanCover
	WindowsAlwaysCover
)

var policyNames = map[Policy]string{
	None:               "none",
	AlwaysVisible:      "always-visible",
	AutoHide:           "auto-hide",
	DodgeActive:        "dodge-active",
	DodgeMaximized:     "dodge-maximized",
	DodgeAllWindows:    "dodge-all-windows",
	WindowsGoBelow:     "windows-go-below",
	WindowsCanCover:    "windows-can-cover",
	WindowsAlwaysCover: "windows-always-cover",
}

// Policies lists every valid policy in declaration order.
func Policies() []Policy {
	return []Policy{None, AlwaysVisible, AutoHide, DodgeActive, DodgeMaximized,
		DodgeAllWindows, WindowsGoBelow, WindowsCanCover, WindowsAlwaysCover}
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParsePolicy resolves a config name. Underscores and case are ignored.
func ParsePolicy(s string) (Policy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for p, name := range policyNames {
		if name == norm {
			return p, nil
		}
	}
	return WindowsGoBelow, fmt.Errorf("unknown visibility policy %q", s)
}

// HideCapable reports whether the policy can put the panel into Hidden
// through the hide timer.
func (p Policy) HideCapable() bool {
	switch p {
	case AutoHide, DodgeActive, DodgeMaximized, DodgeAllWindows, WindowsCanCover:
		return true
	}
	return false
}

// Inactive policies never evaluate.
func (p Policy) Inactive() bool {
	return p == None || p == WindowsAlwaysCover
}

// onBottomLayer reports whether the panel's resting layer is below windows.
func (p Policy) onBottomLayer() bool {
	return p == WindowsCanCover || p == WindowsAlwaysCover
}

// reactsTo reports whether tracker changes c can alter the policy's verdict.
func (p Policy) reactsTo(c tracker.Change) bool {
	switch p {
	case AutoHide:
		return c.Has(tracker.ChangeAttention)
	case DodgeActive, DodgeMaximized:
		return c.Has(tracker.ChangeActive | tracker.ChangeAttention | tracker.ChangeDesktop | tracker.ChangeActivity)
	case DodgeAllWindows:
		return c.Has(tracker.ChangeIntersecting | tracker.ChangeAttention | tracker.ChangeDesktop | tracker.ChangeActivity)
	case WindowsCanCover:
		return c.Has(tracker.ChangeActive | tracker.ChangeIntersecting | tracker.ChangeAttention)
	}
	return false
}
