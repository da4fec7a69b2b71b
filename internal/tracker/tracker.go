// Package tracker maintains the set of application windows relevant to the
// managed panels and derives cheap summaries from it.
package tracker

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/1broseidon/dockvis/internal/platform"
)

// SchemeResolver maps a window to the name of its color scheme.
type SchemeResolver func(id platform.WindowID) string

// Config configures a Tracker.
type Config struct {
	Logger  *slog.Logger
	Schemes SchemeResolver
}

// Tracker owns the tracked window set. All methods must be called on the
// control loop.
type Tracker struct {
	ws      platform.WindowSystem
	logger  *slog.Logger
	schemes SchemeResolver

	windows   map[platform.WindowID]platform.WindowInfo
	ignored   map[platform.WindowID]struct{}
	active    platform.WindowID
	attention []platform.WindowID // oldest first
	displays  []platform.Display

	all    *View
	views  []*View
	cancel func()
	closed bool
}

// New subscribes to ws and seeds the window set from its current state.
func New(ws platform.WindowSystem, cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		ws:      ws,
		logger:  logger,
		schemes: cfg.Schemes,
		windows: make(map[platform.WindowID]platform.WindowInfo),
		ignored: make(map[platform.WindowID]struct{}),
	}
	t.all = &View{tracker: t, scope: ScopeAllScreens}
	t.views = append(t.views, t.all)

	t.refreshDisplays()
	t.active = ws.ActiveWindow()
	for _, id := range ws.Windows() {
		t.load(id)
	}
	t.cancel = ws.Subscribe(t.handle)
	t.recompute(groupAll)
	return t
}

// Close unsubscribes from the window system and detaches every view. No
// callbacks fire afterwards.
func (t *Tracker) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	for _, v := range t.views {
		v.detach()
	}
	t.views = nil
	t.windows = map[platform.WindowID]platform.WindowInfo{}
}

// AllScreens returns the aggregate view shared by every panel.
func (t *Tracker) AllScreens() *View { return t.all }

// NewScreenView creates a view scoped to one panel's screen. The caller owns
// it and must Close it before the tracker is closed.
func (t *Tracker) NewScreenView(geom PanelGeometry) *View {
	v := &View{tracker: t, scope: ScopeCurrentScreen, panel: geom}
	if t.closed {
		v.closed = true
		return v
	}
	t.views = append(t.views, v)
	v.summary = t.summarize(v, groupAll, Summary{})
	return v
}

// Ignore excludes id (a panel or reveal strip) from every summary.
func (t *Tracker) Ignore(id platform.WindowID) {
	if _, ok := t.ignored[id]; ok {
		return
	}
	t.ignored[id] = struct{}{}
	if _, tracked := t.windows[id]; tracked {
		t.recompute(groupAll)
	}
}

// Unignore reverses Ignore.
func (t *Tracker) Unignore(id platform.WindowID) {
	if _, ok := t.ignored[id]; !ok {
		return
	}
	delete(t.ignored, id)
	if _, tracked := t.windows[id]; tracked {
		t.recompute(groupAll)
	}
}

// Window returns the tracked record for id.
func (t *Tracker) Window(id platform.WindowID) (platform.WindowInfo, bool) {
	info, ok := t.windows[id]
	return info, ok
}

// Windows returns all tracked records ordered by id.
func (t *Tracker) Windows() []platform.WindowInfo {
	out := make([]platform.WindowInfo, 0, len(t.windows))
	for _, info := range t.windows {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked windows.
func (t *Tracker) Len() int { return len(t.windows) }

// ActiveWindow returns the id last reported active.
func (t *Tracker) ActiveWindow() platform.WindowID { return t.active }

// AttentionWindow returns the latest window still demanding attention, or 0.
func (t *Tracker) AttentionWindow() platform.WindowID {
	if len(t.attention) == 0 {
		return 0
	}
	return t.attention[len(t.attention)-1]
}

// Displays returns the last known display list.
func (t *Tracker) Displays() []platform.Display {
	return append([]platform.Display(nil), t.displays...)
}

// OnWindowAdded starts tracking id.
func (t *Tracker) OnWindowAdded(id platform.WindowID) {
	if t.closed {
		return
	}
	if t.load(id) {
		t.recompute(groupAll)
	}
}

// OnWindowRemoved stops tracking id.
func (t *Tracker) OnWindowRemoved(id platform.WindowID) {
	if t.closed {
		return
	}
	_, tracked := t.windows[id]
	delete(t.windows, id)
	var changes Change
	if t.dropAttention(id) {
		changes |= ChangeAttention
	}
	if tracked {
		t.recompute(groupAll)
	}
	t.notifyAll(changes)
}

// OnWindowPropertyChanged refreshes id and recomputes the summaries the
// changed fields can influence.
func (t *Tracker) OnWindowPropertyChanged(id platform.WindowID, fields platform.Field) {
	if t.closed {
		return
	}
	_, wasTracked := t.windows[id]
	present := t.load(id)
	if !present && !wasTracked {
		return
	}
	if present != wasTracked {
		t.recompute(groupAll)
		return
	}
	t.recompute(groupsFor(fields))
}

// Sweep evicts records left with degenerate geometry by windows that never
// reported their removal. It returns the number of evicted records.
func (t *Tracker) Sweep() int {
	if t.closed {
		return 0
	}
	evicted := 0
	for id, info := range t.windows {
		if faulty(info) {
			t.evict(id)
			evicted++
		}
	}
	if evicted > 0 {
		t.recompute(groupAll)
	}
	return evicted
}

// RefreshDisplays reloads the display list and recomputes every summary.
func (t *Tracker) RefreshDisplays() {
	if t.closed {
		return
	}
	t.refreshDisplays()
	t.recompute(groupAll)
}

func (t *Tracker) handle(ev platform.Event) {
	if t.closed {
		return
	}
	switch ev.Kind {
	case platform.EventWindowAdded:
		t.OnWindowAdded(ev.Window)
	case platform.EventWindowRemoved:
		t.OnWindowRemoved(ev.Window)
	case platform.EventWindowChanged:
		t.OnWindowPropertyChanged(ev.Window, ev.Fields)
	case platform.EventActiveWindowChanged:
		t.onActiveWindowChanged(ev.Window)
	case platform.EventWindowInAttention:
		t.onAttention(ev.Window, ev.Attention)
	case platform.EventDesktopChanged:
		t.reloadAll()
		t.notifyAll(ChangeDesktop)
	case platform.EventActivityChanged:
		t.reloadAll()
		t.notifyAll(ChangeActivity)
	}
}

func (t *Tracker) onActiveWindowChanged(id platform.WindowID) {
	prev := t.active
	t.active = id
	if prev != 0 && prev != id {
		t.load(prev)
	}
	if id != 0 {
		t.load(id)
	}
	t.recompute(groupActive)
}

// onAttention adds or clears one window's demand. Clearing window 0 clears
// every demand.
func (t *Tracker) onAttention(id platform.WindowID, on bool) {
	switch {
	case on:
		if id == 0 || slices.Contains(t.attention, id) {
			return
		}
		t.attention = append(t.attention, id)
	case id == 0:
		if len(t.attention) == 0 {
			return
		}
		t.attention = nil
	default:
		if !t.dropAttention(id) {
			return
		}
	}
	t.notifyAll(ChangeAttention)
}

func (t *Tracker) dropAttention(id platform.WindowID) bool {
	i := slices.Index(t.attention, id)
	if i < 0 {
		return false
	}
	t.attention = slices.Delete(t.attention, i, i+1)
	return true
}

// faulty reports records left behind by windows that vanished without a
// removal notification.
func faulty(info platform.WindowInfo) bool {
	return info.Geometry.Degenerate() || !info.Valid
}

func (t *Tracker) evict(id platform.WindowID) {
	delete(t.windows, id)
	if t.dropAttention(id) {
		t.notifyAll(ChangeAttention)
	}
	t.logger.Debug("tracker: evicted faulty window", "window", id)
}

func (t *Tracker) reloadAll() {
	t.active = t.ws.ActiveWindow()
	for _, id := range t.ws.Windows() {
		t.load(id)
	}
	for id := range t.windows {
		if info := t.ws.RequestInfo(id); !info.Valid {
			delete(t.windows, id)
			t.dropAttention(id)
		}
	}
	t.recompute(groupAll)
}

// load refreshes one record from the window system and reports whether the
// window is tracked afterwards.
func (t *Tracker) load(id platform.WindowID) bool {
	if id == 0 {
		return false
	}
	info := t.ws.RequestInfo(id)
	if !info.Valid {
		if _, ok := t.windows[id]; ok {
			t.logger.Debug("tracker: window info unavailable, dropping record", "window", id)
		}
		delete(t.windows, id)
		return false
	}
	info.ID = id
	if info.Active {
		t.active = id
	}
	t.windows[id] = info
	return true
}

func (t *Tracker) refreshDisplays() {
	displays, err := t.ws.Displays()
	if err != nil {
		t.logger.Debug("tracker: display query failed", "error", err)
		return
	}
	t.displays = displays
}

func (t *Tracker) recompute(groups group) {
	for _, v := range append([]*View(nil), t.views...) {
		if v.closed {
			continue
		}
		prev := v.summary
		v.summary = t.summarize(v, groups, prev)
		v.notify(diff(prev, v.summary))
	}
}

func (t *Tracker) notifyAll(c Change) {
	if c == 0 {
		return
	}
	for _, v := range append([]*View(nil), t.views...) {
		if !v.closed {
			v.notify(c)
		}
	}
}

func (t *Tracker) removeView(v *View) {
	for i, existing := range t.views {
		if existing == v {
			t.views = append(t.views[:i], t.views[i+1:]...)
			return
		}
	}
}

func (t *Tracker) scheme(id platform.WindowID) string {
	if t.schemes == nil || id == 0 {
		return ""
	}
	return t.schemes(id)
}

func (t *Tracker) sortedIDs() []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(t.windows))
	for id := range t.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// displayFor returns the display containing the center of r, falling back
// to the display r overlaps the most.
func (t *Tracker) displayFor(r platform.Rect) (platform.Display, bool) {
	cx, cy := r.Center()
	for _, d := range t.displays {
		if d.Bounds.Contains(cx, cy) {
			return d, true
		}
	}
	best, bestArea := -1, 0
	for i, d := range t.displays {
		o := d.Bounds.Intersect(r)
		if a := o.Width * o.Height; a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return platform.Display{}, false
	}
	return t.displays[best], true
}
