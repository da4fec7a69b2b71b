package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/dockvis/internal/config"
	"github.com/1broseidon/dockvis/internal/daemon"
	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/hotkeys"
	"github.com/1broseidon/dockvis/internal/ipc"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/runtimepath"
	"github.com/1broseidon/dockvis/internal/shell"
	"github.com/1broseidon/dockvis/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/dockvis/config.yaml)")
	jsonLogs := fs.Bool("json", false, "Log as JSON instead of text")
	noWatch := fs.Bool("no-watch", false, "Do not reload when the config file changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockvis daemon [--path PATH] [--json] [--no-watch]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfgPath, err := resolveConfigPath(*path)
	if err != nil {
		log.Printf("Failed to resolve config path: %v", err)
		return 1
	}
	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	level.Set(daemon.ParseLevel(cfg.LogLevel))
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if *jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	lockPath, err := runtimepath.LockPath(os.Getenv("DISPLAY"))
	if err != nil {
		logger.Error("failed to resolve lock path", "error", err)
		return 1
	}
	release, err := runtimepath.Lock(lockPath)
	if err != nil {
		logger.Error("cannot start daemon", "error", err, "lock", lockPath)
		return 1
	}
	defer release()

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer conn.Close()

	loop := eventloop.New(logger)
	backend := platform.NewX11Backend(conn, loop.Post, logger)
	if err := backend.Start(); err != nil {
		logger.Error("failed to start window backend", "error", err)
		return 1
	}

	mgr := shell.NewManager(shell.Options{
		System:  backend,
		Host:    backend,
		Strips:  backend,
		Clock:   eventloop.SystemClock,
		Post:    loop.Post,
		Logger:  logger,
		Schemes: backend.Scheme,
	})
	backend.OnDisplaysChanged(mgr.DisplaysChanged)

	cfgSync := daemon.NewConfigSynchronizer(cfgPath, cfg, loop.Call, mgr, level, logger)
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.GCInterval.Std(),
		Logger:   logger,
	}, loop.Call, mgr)
	cfgSync.OnApplied(func(c *config.Config) { reconciler.SetInterval(c.GCInterval.Std()) })

	keys := hotkeys.NewHandler(conn, loop.Post, logger)
	defer keys.Close()
	cfgSync.OnApplied(func(c *config.Config) {
		bindings := hotkeys.PeekBindings(c, func(panel string, d time.Duration) {
			if err := mgr.BlockHiding(panel, "peek", d); err != nil {
				logger.Warn("peek hotkey ignored", "panel", panel, "error", err)
			}
		})
		if err := keys.Apply(bindings); err != nil {
			logger.Warn("some hotkeys could not be registered", "error", err)
		}
	})

	server, err := ipc.NewServer(daemon.NewController(loop.Call, mgr, cfgSync), logger)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	// X callbacks only post into the loop; the X event loop stays outside
	// the group and is stopped after it.
	go conn.EventLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		if err := cfgSync.Apply(gctx, cfg); err != nil {
			return err
		}
		reconciler.ReconcileNow(gctx)
		return nil
	})
	g.Go(func() error { return reconciler.Run(gctx) })
	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				_ = cfgSync.Reload(gctx)
			}
		}
	})
	if !*noWatch {
		watcher := config.NewWatcher(cfgPath, func() {
			logger.Info("config file changed, reloading")
			_ = cfgSync.Reload(gctx)
		}, logger)
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("config watcher disabled", "error", err)
			}
			return nil
		})
	}

	logger.Info("dockvis daemon started", "config", cfgPath, "panels", len(cfg.Panels), "compositing", backend.Compositing())
	err = g.Wait()

	// The loop has stopped; nothing else touches the manager now.
	mgr.Close()
	conn.Quit()
	logger.Info("dockvis daemon stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}
