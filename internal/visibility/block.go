package visibility

// HidingBlock is a held request to keep the panel shown, e.g. while a context
// menu is open. Release is idempotent.
type HidingBlock struct {
	engine   *Engine
	id       uint64
	epoch    uint64
	reason   string
	released bool
}

// BlockHiding suppresses every lower decision until the returned block is
// released. A hidden panel is raised right away.
func (e *Engine) BlockHiding(reason string) *HidingBlock {
	b := &HidingBlock{engine: e, epoch: e.blockEpoch, reason: reason}
	if e.closed {
		b.released = true
		return b
	}
	e.nextBlock++
	b.id = e.nextBlock
	wasBlocked := e.HidingBlocked()
	e.blocks[b.id] = reason
	if !wasBlocked {
		e.logger.Debug("visibility: hiding blocked", "reason", reason)
		e.hideTimer.Stop()
		if e.hidden {
			e.showTimer.Stop()
			e.doRaise(false)
		}
	}
	return b
}

// Release drops the block and re-evaluates once no block remains. Blocks
// taken before a policy switch are already void.
func (b *HidingBlock) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	e := b.engine
	if e.closed || b.epoch != e.blockEpoch {
		return
	}
	if _, ok := e.blocks[b.id]; !ok {
		return
	}
	delete(e.blocks, b.id)
	if !e.HidingBlocked() {
		e.logger.Debug("visibility: hiding unblocked", "reason", b.reason)
		e.reconsider(true)
	}
}

// Reason returns the label given at acquisition.
func (b *HidingBlock) Reason() string { return b.reason }

// WithHidingBlocked runs fn while hiding is blocked. The block is released
// even if fn panics.
func (e *Engine) WithHidingBlocked(reason string, fn func()) {
	b := e.BlockHiding(reason)
	defer b.Release()
	fn()
}
