package shell

import (
	"log/slog"

	"github.com/1broseidon/dockvis/internal/config"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/visibility"
)

// SpecsFromConfig resolves config panels. Unknown policies are logged and
// fall back to windows-go-below.
func SpecsFromConfig(cfg *config.Config, logger *slog.Logger) []PanelSpec {
	if logger == nil {
		logger = slog.Default()
	}
	specs := make([]PanelSpec, 0, len(cfg.Panels))
	for _, p := range cfg.Panels {
		policy, err := visibility.ParsePolicy(p.Visibility)
		if err != nil {
			logger.Warn("shell: unknown visibility policy, falling back", "panel", p.Name, "visibility", p.Visibility, "fallback", policy.String())
		}
		e, err := platform.ParseEdge(p.Location)
		if err != nil {
			logger.Warn("shell: unknown location, using bottom", "panel", p.Name, "location", p.Location)
		}
		specs = append(specs, PanelSpec{
			Name:                  p.Name,
			MatchClass:            p.MatchClass,
			MatchName:             p.MatchName,
			Edge:                  e,
			Policy:                policy,
			ShowDelay:             p.ShowDelay.Std(),
			HideDelay:             p.HideDelay.Std(),
			RecheckInterval:       p.RecheckInterval.Std(),
			RaiseOnDesktopChange:  p.RaiseOnDesktopChange,
			RaiseOnActivityChange: p.RaiseOnActivityChange,
			DockWindowType:        p.DockWindowType,
			EdgeReveal:            p.EdgeReveal,
			AllDesktops:           p.AllDesktops,
		})
	}
	return specs
}

// KnownPolicy reports whether name parses as a visibility policy.
func KnownPolicy(name string) bool {
	_, err := visibility.ParsePolicy(name)
	return err == nil
}
