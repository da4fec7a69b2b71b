package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/shell"
	"github.com/1broseidon/dockvis/internal/visibility"
)

// Controller serves IPC commands by running them on the control loop.
type Controller struct {
	call Caller
	mgr  *shell.Manager
	sync *ConfigSynchronizer
}

// NewController wires a controller to the manager and config synchronizer.
func NewController(call Caller, mgr *shell.Manager, sync *ConfigSynchronizer) *Controller {
	return &Controller{call: call, mgr: mgr, sync: sync}
}

func (c *Controller) Status(ctx context.Context) (shell.Status, error) {
	var st shell.Status
	err := c.call(ctx, func() { st = c.mgr.Status() })
	return st, err
}

func (c *Controller) Displays(ctx context.Context) ([]platform.Display, error) {
	var out []platform.Display
	err := c.call(ctx, func() { out = c.mgr.Tracker().Displays() })
	return out, err
}

func (c *Controller) Reload(ctx context.Context) error {
	return c.sync.Reload(ctx)
}

func (c *Controller) SetPolicy(ctx context.Context, panel, name string) error {
	policy, err := visibility.ParsePolicy(name)
	if err != nil {
		return fmt.Errorf("unknown visibility policy %q", name)
	}
	var opErr error
	if err := c.call(ctx, func() { opErr = c.mgr.SetPolicy(panel, policy) }); err != nil {
		return err
	}
	return opErr
}

func (c *Controller) BlockHiding(ctx context.Context, panel, reason string, d time.Duration) error {
	var opErr error
	if err := c.call(ctx, func() { opErr = c.mgr.BlockHiding(panel, reason, d) }); err != nil {
		return err
	}
	return opErr
}
