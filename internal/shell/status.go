package shell

import "sort"

// PanelStatus is a snapshot of one configured panel.
type PanelStatus struct {
	Name        string   `json:"name"`
	Attached    bool     `json:"attached"`
	Error       string   `json:"error,omitempty"`
	Window      uint32   `json:"window,omitempty"`
	Policy      string   `json:"policy"`
	Edge        string   `json:"edge"`
	Geometry    string   `json:"geometry,omitempty"`
	Hidden      bool     `json:"hidden"`
	Hovered     bool     `json:"hovered"`
	HidePending bool     `json:"hide_pending"`
	Blocks      []string `json:"blocks,omitempty"`
	RevealStrip string   `json:"reveal_strip,omitempty"`
	Raises      int      `json:"raises"`
	Lowers      int      `json:"lowers"`

	ActiveIntersects bool   `json:"active_intersects"`
	ActiveMaximized  bool   `json:"active_maximized"`
	AnyIntersecting  bool   `json:"any_intersecting"`
	AnyTouching      bool   `json:"any_touching"`
	Attention        bool   `json:"attention"`
	ActiveScheme     string `json:"active_scheme,omitempty"`
}

// Status is the daemon-wide snapshot served over IPC.
type Status struct {
	Windows      int           `json:"windows"`
	ActiveWindow uint32        `json:"active_window"`
	Panels       []PanelStatus `json:"panels"`
}

// Status reports every configured panel in config order.
func (m *Manager) Status() Status {
	st := Status{
		Windows:      m.tracker.Len(),
		ActiveWindow: uint32(m.tracker.ActiveWindow()),
	}
	for _, s := range m.specs {
		p, ok := m.panels[s.Name]
		if !ok {
			st.Panels = append(st.Panels, PanelStatus{
				Name:   s.Name,
				Error:  m.pending[s.Name],
				Policy: s.Policy.String(),
				Edge:   s.Edge.String(),
			})
			continue
		}
		st.Panels = append(st.Panels, p.Status())
	}
	return st
}

// Status reports the panel's engine and view state.
func (p *Panel) Status() PanelStatus {
	e := p.engine
	sum := p.view.Summary()
	blocks := e.BlockReasons()
	sort.Strings(blocks)
	st := PanelStatus{
		Name:        p.spec.Name,
		Attached:    !p.closed,
		Window:      uint32(p.id),
		Policy:      e.Policy().String(),
		Edge:        p.spec.Edge.String(),
		Geometry:    p.view.Panel().Panel.String(),
		Hidden:      e.Hidden(),
		Hovered:     p.hovered,
		HidePending: e.HidePending(),
		Blocks:      blocks,
		Raises:      p.raises,
		Lowers:      p.lowers,

		ActiveIntersects: sum.ActiveIntersecting,
		ActiveMaximized:  sum.ActiveMaximized,
		AnyIntersecting:  sum.ExistsIntersecting,
		AnyTouching:      sum.ExistsTouching,
		Attention:        p.view.WindowInAttention(),
		ActiveScheme:     sum.ActiveScheme,
	}
	if p.reveal.Visible() {
		st.RevealStrip = p.reveal.Geometry().String()
	}
	return st
}
