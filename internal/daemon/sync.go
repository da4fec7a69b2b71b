package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1broseidon/dockvis/internal/config"
	"github.com/1broseidon/dockvis/internal/shell"
)

// Applier receives resolved panel specs on the control loop.
type Applier interface {
	Apply(specs []shell.PanelSpec)
}

// ConfigSynchronizer reloads the config file and pushes the result into
// the panel manager. A reload that fails to load or validate keeps the
// previous configuration.
type ConfigSynchronizer struct {
	path    string
	call    Caller
	applier Applier
	level   *slog.LevelVar
	logger  *slog.Logger

	mu        sync.Mutex
	current   *config.Config
	onApplied []func(*config.Config)
}

// NewConfigSynchronizer creates a synchronizer seeded with the config the
// daemon started with.
func NewConfigSynchronizer(path string, initial *config.Config, call Caller, applier Applier, level *slog.LevelVar, logger *slog.Logger) *ConfigSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigSynchronizer{
		path:    path,
		call:    call,
		applier: applier,
		level:   level,
		logger:  logger,
		current: initial,
	}
}

// Current returns the last successfully applied config.
func (s *ConfigSynchronizer) Current() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnApplied registers fn to run after every successful apply.
func (s *ConfigSynchronizer) OnApplied(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onApplied = append(s.onApplied, fn)
}

// Apply pushes cfg to the manager without reading the file.
func (s *ConfigSynchronizer) Apply(ctx context.Context, cfg *config.Config) error {
	for _, w := range cfg.Warnings(shell.KnownPolicy) {
		s.logger.Warn("config warning", "detail", w)
	}
	if s.level != nil {
		s.level.Set(ParseLevel(cfg.LogLevel))
	}
	specs := shell.SpecsFromConfig(cfg, s.logger)
	if err := s.call(ctx, func() { s.applier.Apply(specs) }); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	s.mu.Lock()
	s.current = cfg
	hooks := append([]func(*config.Config){}, s.onApplied...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(cfg)
	}
	s.logger.Info("config applied", "panels", len(cfg.Panels))
	return nil
}

// Reload re-reads the config file and applies it.
func (s *ConfigSynchronizer) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(s.path)
	if err != nil {
		s.logger.Error("config reload failed, keeping previous config", "path", s.path, "error", err)
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	return s.Apply(ctx, res.Config)
}

// ParseLevel maps a config log level to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
