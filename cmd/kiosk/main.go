// Command kiosk shows the contents of removable storage on a touchscreen.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/browser"
	"github.com/pyhub-apps/mediakiosk/pkg/config"
	"github.com/pyhub-apps/mediakiosk/pkg/kiosk"
	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
	"github.com/pyhub-apps/mediakiosk/pkg/mount"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
	"github.com/pyhub-apps/mediakiosk/pkg/screen"
	"github.com/pyhub-apps/mediakiosk/pkg/session"
	"github.com/pyhub-apps/mediakiosk/pkg/viewer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	var headless bool
	flag.BoolVar(&headless, "headless", false, "Run without a window, logging activity only.")
	flag.BoolVar(&cfg.Fullscreen, "fullscreen", cfg.Fullscreen, "Open the window fullscreen.")
	flag.StringVar(&cfg.StartDir, "start-dir", cfg.StartDir, "Browse this directory at startup.")
	flag.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "Directory with replacement icon PNGs.")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error.")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve /metrics on this address.")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogPath,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	monitor := mount.New(cfg.MountTable, cfg.MountRoots, cfg.MountPoll)
	// Subscribed before Start so volumes mounted during the initial listing
	// are queued rather than lost.
	events := monitor.Subscribe()
	defer monitor.Unsubscribe(events)
	if err := monitor.Start(ctx); err != nil {
		logging.Warn("mount monitor unavailable", zap.String("table", cfg.MountTable), zap.Error(err))
	}
	defer monitor.Stop()

	if headless {
		err = runHeadless(ctx, cfg, monitor, events)
	} else {
		err = runWindow(ctx, cfg, monitor, events)
	}
	if err != nil {
		logging.Error("kiosk stopped", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
}

// build assembles the controller around the given presentation hooks.
func build(cfg *config.Config, assets *raster.Assets, dialog kiosk.Dialog, inv viewer.Invalidator, width, height int) *kiosk.Controller {
	s := session.New()
	b := browser.New(browser.OSFileSystem{}, s)
	b.ShowHidden = cfg.ShowHidden
	b.ThumbWidth, b.ThumbHeight = cfg.PageWidth, cfg.PageHeight
	b.IconSize = kiosk.IconSize

	v := viewer.New(assets, inv, width, height)
	return kiosk.New(b, s, v, dialog, inv, kiosk.Options{
		RootLabel:  cfg.RootLabel,
		PageWidth:  cfg.PageWidth,
		PageHeight: cfg.PageHeight,
	})
}

// start browses the configured directory, or the last volume (by path) that
// was already mounted when the kiosk came up.
func start(cfg *config.Config, ctrl *kiosk.Controller, monitor *mount.Monitor) {
	if cfg.StartDir != "" {
		ctrl.MountAdded(cfg.StartDir)
		return
	}
	if mounts := monitor.Current(); len(mounts) > 0 {
		ctrl.MountAdded(mounts[len(mounts)-1].Path)
	}
}

func dispatch(ctrl *kiosk.Controller, ev mount.Event) {
	switch ev.Type {
	case mount.EventAdded:
		ctrl.MountAdded(ev.Path)
	case mount.EventRemoved:
		ctrl.MountRemoved(ev.Path)
	}
}

func runWindow(ctx context.Context, cfg *config.Config, monitor *mount.Monitor, events <-chan mount.Event) error {
	assets := raster.NewAssets(cfg.AssetsDir)
	g := screen.New(ctx, assets, screen.Options{
		Width:      cfg.WindowWidth,
		Height:     cfg.WindowHeight,
		Fullscreen: cfg.Fullscreen,
	})
	layout := kiosk.ComputeLayout(cfg.WindowWidth, cfg.WindowHeight)
	ctrl := build(cfg, assets, g, g, layout.Picture.Dx(), layout.Picture.Dy())
	defer ctrl.Close()
	g.Attach(ctrl)
	start(cfg, ctrl, monitor)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				g.Post(func() { dispatch(ctrl, ev) })
			}
		}
	}()

	logging.Info("kiosk window starting",
		zap.Int("width", cfg.WindowWidth),
		zap.Int("height", cfg.WindowHeight),
		zap.Bool("fullscreen", cfg.Fullscreen))
	return screen.Run(g)
}

// logDialog reports errors to the log when there is no screen.
type logDialog struct{}

func (logDialog) ShowError(message string) {
	logging.Warn("kiosk: error dialog", zap.String("message", message))
}

func runHeadless(ctx context.Context, cfg *config.Config, monitor *mount.Monitor, events <-chan mount.Event) error {
	assets := raster.NewAssets(cfg.AssetsDir)
	ctrl := build(cfg, assets, logDialog{}, nil, cfg.WindowWidth, cfg.WindowHeight)
	defer ctrl.Close()
	start(cfg, ctrl, monitor)

	logging.Info("kiosk running headless", zap.Strings("roots", cfg.MountRoots))
	for {
		select {
		case <-ctx.Done():
			logging.Info("kiosk shutting down")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			dispatch(ctrl, ev)
			logging.Info("kiosk: listing",
				zap.String("event", ev.Type),
				zap.String("path", ev.Path),
				zap.Int("items", len(ctrl.Items())))
		}
	}
}
