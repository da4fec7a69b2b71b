package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Caller runs fn on the control loop and waits for it.
type Caller func(ctx context.Context, fn func()) error

// Target is reconciled on every tick.
type Target interface {
	Reconcile() int
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically sweeps stale window records and corrects panel
// stacking drift.
type Reconciler struct {
	interval time.Duration
	call     Caller
	target   Target
	logger   *slog.Logger
	reset    chan time.Duration
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, call Caller, target Target) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		call:     call,
		target:   target,
		logger:   logger,
		reset:    make(chan time.Duration, 1),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case d := <-r.reset:
			if d != r.interval {
				r.interval = d
				ticker.Reset(d)
				r.logger.Info("reconciler interval changed", "interval", d)
			}
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// SetInterval changes the tick interval of a running reconciler.
func (r *Reconciler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-r.reset:
	default:
	}
	r.reset <- d
}

func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	var evicted int
	if err := r.call(ctx, func() { evicted = r.target.Reconcile() }); err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reconciler: control loop unavailable", "error", err)
		}
		return
	}
	if evicted > 0 {
		r.logger.Debug("reconciler: evicted stale windows", "count", evicted)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
