// Command livescene renders the live scene in a GLFW window with OpenGL.
//
// Left-drag moves the object under the cursor, right-drag orbits, middle-drag pans and the wheel zooms.
// Parameters are stepped from the keyboard (see keys.go) and from the controls section of the config
// file, which is reloaded when it changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"LiveScene/internal/config"
	"LiveScene/internal/engine"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

func init() { runtime.LockOSThread() }

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
		logger.Log.Error("livescene exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		return err
	}
	fbW, fbH := window.GetFramebufferSize()

	backend, err := renderer.NewOpenGLBackend(fbW, fbH)
	if err != nil {
		return err
	}

	scheduler := &engine.ManualScheduler{}
	var fatal error
	session, err := engine.NewSession(engine.Options{
		Config:    cfg,
		Backend:   backend,
		Surface:   framebuffer{window},
		Scheduler: scheduler,
		OnFatal: func(err error) {
			fatal = err
			window.SetShouldClose(true)
		},
	})
	if err != nil {
		return err
	}

	// closer runs its hooks on a signal goroutine; GL teardown must stay on this thread, so the hook
	// only asks the loop to stop and waits for it.
	stop := make(chan struct{})
	done := make(chan struct{})
	closer.Bind(func() {
		select {
		case <-stop:
		default:
			close(stop)
		}
		glfw.PostEmptyEvent()
		<-done
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan *config.Config, 1)
	go func() {
		err := config.Watch(ctx, configPath, func(c *config.Config) {
			select {
			case reloads <- c:
			default:
				<-reloads
				reloads <- c
			}
		})
		if err != nil {
			logger.Log.Warn("Config watch unavailable", zap.Error(err))
		}
	}()

	in := newInput(window, session)
	in.install()

	if err := session.Start(); err != nil {
		return err
	}
	logger.Log.Info("livescene running", zap.Int("width", fbW), zap.Int("height", fbH))

	start := time.Now()
	var lastSky mgl32.Vec3
	running := true
	for running && !window.ShouldClose() {
		glfw.PollEvents()

		select {
		case <-stop:
			running = false
			continue
		case c := <-reloads:
			_ = session.ApplyControls(c.Controls)
		default:
		}

		if scheduler.Fire(time.Since(start)) && session.Loop.Running() {
			window.SwapBuffers()
		}
		if sky := session.Scene.ClearColor(); sky != lastSky {
			lastSky = sky
			tintTitleBar(window, sky)
		}
	}

	cancel()
	err = session.Close()
	close(done)
	if fatal != nil {
		return fatal
	}
	return err
}

func setupWindow(w config.Window) (*glfw.Window, error) {
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(w.Width, w.Height, w.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	glfw.SwapInterval(1)
	window.SetPos(w.X, w.Y)
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	return window, nil
}

// framebuffer reports the drawable size, which differs from the window size on HiDPI screens.
type framebuffer struct{ window *glfw.Window }

func (f framebuffer) Size() (int, int) { return f.window.GetFramebufferSize() }
