// Command livescene-panel shows the live scene in a software-rendered preview next to a parameter panel
// generated from the session's control registry.
//
// Fyne delivers widget and pointer callbacks on its own goroutines, so every interaction is posted to
// an engine.EventQueue, whose goroutine owns the session and runs the frame loop ticks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"LiveScene/internal/config"
	"LiveScene/internal/engine"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "livescene.yaml", "configuration file, reloaded on change")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *configPath); err != nil {
		logger.Log.Error("livescene-panel exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string) error {
	a := app.New()
	w := a.NewWindow(cfg.Window.Title)

	queue := engine.NewEventQueue(256)
	backend := renderer.NewSoftwareBackend(cfg.Window.Width/2, cfg.Window.Height/2)
	surface := &rasterSurface{}
	scheduler := &refreshScheduler{inner: engine.NewTickerScheduler(queue, cfg.FramePeriod())}
	status := widget.NewLabel("Ready")

	session, err := engine.NewSession(engine.Options{
		Config:    cfg,
		Backend:   backend,
		Surface:   surface,
		Scheduler: scheduler,
		OnFatal: func(err error) {
			status.SetText("Render stopped: " + err.Error())
		},
	})
	if err != nil {
		return err
	}

	view := newViewport(backend, surface, queue, session)
	panel := newPanel(session, queue, status)
	hud := newHUD(session, backend)
	scheduler.after = func() {
		hud.update()
		view.raster.Refresh()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := queue.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("Event queue stopped", zap.Error(err))
		}
	}()
	_ = queue.Post(func() {
		if err := session.Start(); err != nil {
			logger.Log.Error("Session start failed", zap.Error(err))
		}
	})

	go func() {
		err := config.Watch(ctx, configPath, func(c *config.Config) {
			_ = queue.Post(func() {
				if err := session.ApplyControls(c.Controls); err != nil {
					status.SetText(err.Error())
				}
				panel.sync()
			})
		})
		if err != nil {
			logger.Log.Warn("Config watch unavailable", zap.Error(err))
		}
	}()

	w.SetOnClosed(func() {
		closed := make(chan error, 1)
		if err := queue.Post(func() { closed <- session.Close() }); err != nil {
			closed <- err
		}
		select {
		case err := <-closed:
			if err != nil {
				logger.Log.Error("Session close failed", zap.Error(err))
			}
		case <-time.After(2 * time.Second):
			logger.Log.Warn("Session close timed out")
		}
		queue.Close()
		cancel()
	})

	split := container.NewHSplit(view, container.NewBorder(nil, status, nil, nil, panel.object()))
	split.Offset = 0.65
	w.SetContent(split)
	w.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	w.ShowAndRun()
	return nil
}

// refreshScheduler runs after once each tick has rendered.
type refreshScheduler struct {
	inner engine.Scheduler
	after func()
}

func (s *refreshScheduler) Schedule(fn func(now time.Duration)) {
	s.inner.Schedule(func(now time.Duration) {
		fn(now)
		if s.after != nil {
			s.after()
		}
	})
}

func (s *refreshScheduler) Cancel() { s.inner.Cancel() }
