package platformtest

import (
	"errors"

	"github.com/1broseidon/dockvis/internal/platform"
)

// Strips is a StripFactory recording every strip it creates.
type Strips struct {
	Composited bool
	Fail       bool
	Created    []*FakeStrip
}

var _ platform.StripFactory = (*Strips)(nil)

// FakeStrip is a strip whose pointer entry is triggered by Enter.
type FakeStrip struct {
	Geom      platform.Rect
	Destroyed bool
	onEnter   func()
}

func (s *Strips) CreateStrip(geom platform.Rect, onEnter func()) (platform.Strip, error) {
	if s.Fail {
		return nil, errors.New("strip creation failed")
	}
	st := &FakeStrip{Geom: geom, onEnter: onEnter}
	s.Created = append(s.Created, st)
	return st, nil
}

func (s *Strips) Compositing() bool { return s.Composited }

// Live returns the strips not yet destroyed.
func (s *Strips) Live() []*FakeStrip {
	var out []*FakeStrip
	for _, st := range s.Created {
		if !st.Destroyed {
			out = append(out, st)
		}
	}
	return out
}

func (st *FakeStrip) Move(r platform.Rect) { st.Geom = r }
func (st *FakeStrip) Destroy()             { st.Destroyed = true }

// Enter simulates the pointer crossing into the strip.
func (st *FakeStrip) Enter() {
	if st.onEnter != nil {
		st.onEnter()
	}
}
