package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/dockvis/internal/config"
	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/x11"
)

// Binding is one global key sequence and the action it triggers.
type Binding struct {
	Name   string
	Keys   string
	Action func()
}

// PeekBindings returns one binding per panel that sets peek_hotkey. peek
// receives the panel name and its peek duration.
func PeekBindings(cfg *config.Config, peek func(panel string, d time.Duration)) []Binding {
	var out []Binding
	for _, p := range cfg.Panels {
		if p.PeekHotkey == "" {
			continue
		}
		name, d := p.Name, p.PeekDuration.Std()
		out = append(out, Binding{
			Name:   name,
			Keys:   p.PeekHotkey,
			Action: func() { peek(name, d) },
		})
	}
	return out
}

// Handler manages global keyboard shortcuts on the root window. Callbacks
// are posted to the control loop.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	post   eventloop.Poster
	logger *slog.Logger

	mu    sync.Mutex
	bound []string
}

var initOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(conn *x11.Connection, post eventloop.Poster, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	initOnce.Do(func() {
		keybind.Initialize(conn.XUtil)
		configureIgnoreMods(conn.XUtil)
	})
	return &Handler{
		xu:     conn.XUtil,
		root:   conn.Root,
		post:   post,
		logger: logger,
	}
}

// Apply replaces every registered binding. Bindings that fail to grab are
// skipped and reported together.
func (h *Handler) Apply(bindings []Binding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindAll()
	var errs []error
	for _, b := range bindings {
		action := b.Action
		if err := h.register(b.Keys, func() { h.post(action) }); err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s for %s: %w", b.Keys, b.Name, err))
			continue
		}
		h.bound = append(h.bound, b.Keys)
		h.logger.Info("hotkey registered", "panel", b.Name, "keys", b.Keys)
	}
	return errors.Join(errs...)
}

// Close releases every grab.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unbindAll()
}

func (h *Handler) register(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func (h *Handler) unbindAll() {
	if len(h.bound) == 0 {
		return
	}
	for _, seq := range h.bound {
		mods, codes, err := keybind.ParseString(h.xu, seq)
		if err != nil {
			continue
		}
		for _, code := range codes {
			keybind.Ungrab(h.xu, h.root, mods, code)
		}
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
