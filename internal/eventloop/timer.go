package eventloop

import (
	"sort"
	"sync"
	"time"
)

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Clock schedules callbacks. Callbacks run on an arbitrary goroutine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Stopper
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Timer is a single-shot timer whose callback runs on the control loop.
// Start while pending restarts the countdown. All methods must be called on
// the control loop.
type Timer struct {
	clock    Clock
	post     Poster
	interval time.Duration
	fn       func()

	pending Stopper
	gen     uint64
	active  bool
}

// NewTimer returns a stopped timer.
func NewTimer(clock Clock, post Poster, interval time.Duration, fn func()) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	if post == nil {
		post = Immediate
	}
	return &Timer{clock: clock, post: post, interval: interval, fn: fn}
}

// Start (re)arms the timer for the configured interval.
func (t *Timer) Start() {
	t.Stop()
	gen := t.gen
	t.active = true
	t.pending = t.clock.AfterFunc(t.interval, func() {
		t.post(func() { t.fire(gen) })
	})
}

// Stop cancels a pending firing. Firings already queued on the loop are
// discarded as stale.
func (t *Timer) Stop() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.active = false
	t.gen++
}

// Active reports whether the timer is armed.
func (t *Timer) Active() bool { return t.active }

// Interval returns the configured duration.
func (t *Timer) Interval() time.Duration { return t.interval }

// SetInterval changes the duration used by the next Start.
func (t *Timer) SetInterval(d time.Duration) { t.interval = d }

func (t *Timer) fire(gen uint64) {
	if gen != t.gen || !t.active {
		return
	}
	t.active = false
	t.pending = nil
	t.fn()
}

// ManualClock is a Clock driven by Advance. Callbacks run on the goroutine
// calling Advance.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	started int
	entries []*manualEntry
}

type manualEntry struct {
	clock   *ManualClock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

func (e *manualEntry) Stop() bool {
	e.clock.mu.Lock()
	defer e.clock.mu.Unlock()
	if e.stopped {
		return false
	}
	e.stopped = true
	return true
}

// NewManualClock starts at an arbitrary fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.started++
	e := &manualEntry{clock: c, at: c.now.Add(d), seq: c.seq, fn: fn}
	c.entries = append(c.entries, e)
	return e
}

// Advance moves time forward, firing due callbacks in deadline order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.stopped = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

// Pending counts armed callbacks.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if !e.stopped {
			n++
		}
	}
	return n
}

// Started counts every AfterFunc call since creation.
func (c *ManualClock) Started() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualEntry {
	live := c.entries[:0]
	for _, e := range c.entries {
		if !e.stopped {
			live = append(live, e)
		}
	}
	c.entries = live
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].at.Equal(c.entries[j].at) {
			return c.entries[i].seq < c.entries[j].seq
		}
		return c.entries[i].at.Before(c.entries[j].at)
	})
	if len(c.entries) == 0 || c.entries[0].at.After(target) {
		return nil
	}
	return c.entries[0]
}
