package engine

import (
	"time"

	"LiveScene/internal/behaviour"
	"LiveScene/internal/controls"
	"LiveScene/internal/environment"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"go.uber.org/zap"
)

// Surface reports the drawable size of the output, in pixels.
type Surface interface {
	Size() (width, height int)
}

// Scheduler runs a callback at the next frame opportunity. now is a monotonic timestamp.
type Scheduler interface {
	Schedule(fn func(now time.Duration))
	Cancel()
}

// DefaultMaxFrameDelta bounds dt after stalls such as a dragged window or a breakpoint.
const DefaultMaxFrameDelta = 100 * time.Millisecond

// FrameLoop performs one update/render cycle per scheduled tick:
// resize check, environment and behaviours, controller, render, reschedule.
type FrameLoop struct {
	backend    renderer.Backend
	scene      *renderer.Scene
	camera     *renderer.Camera
	env        *environment.Model
	behaviours *behaviour.Manager
	arbiter    *controls.Arbiter
	surface    Surface
	scheduler  Scheduler

	running bool
	ticked  bool
	last    time.Duration
	frames  uint64

	// surface size applied to the backend
	width, height int

	MaxFrameDelta time.Duration
	// OnFatal receives the error that stopped the loop.
	OnFatal func(error)
}

func (l *FrameLoop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.ticked = false
	logger.Log.Info("Frame loop started")
	l.scheduler.Schedule(l.Tick)
}

func (l *FrameLoop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.scheduler.Cancel()
	logger.Log.Info("Frame loop stopped", zap.Uint64("frames", l.frames))
}

func (l *FrameLoop) Running() bool { return l.running }

func (l *FrameLoop) Frames() uint64 { return l.frames }

// Tick is the scheduled callback. A tick that arrives after Stop does nothing.
func (l *FrameLoop) Tick(now time.Duration) {
	if !l.running {
		return
	}
	dt := l.delta(now)

	l.resize()

	l.env.Advance(dt)
	l.behaviours.UpdateAll(dt)
	l.arbiter.Update(dt)

	if err := l.backend.Render(l.scene, l.camera); err != nil {
		l.running = false
		logger.Log.Error("Render failed, stopping frame loop", zap.Uint64("frame", l.frames), zap.Error(err))
		if l.OnFatal != nil {
			l.OnFatal(err)
		}
		return
	}
	l.frames++
	l.scheduler.Schedule(l.Tick)
}

func (l *FrameLoop) delta(now time.Duration) time.Duration {
	if !l.ticked {
		l.ticked = true
		l.last = now
		return 0
	}
	dt := now - l.last
	l.last = now
	if dt < 0 {
		return 0
	}
	if l.MaxFrameDelta > 0 && dt > l.MaxFrameDelta {
		return l.MaxFrameDelta
	}
	return dt
}

// resize pushes a changed, non-empty surface size to the backend and camera. Unchanged sizes cost
// one Size call.
func (l *FrameLoop) resize() {
	w, h := l.surface.Size()
	if w <= 0 || h <= 0 || (w == l.width && h == l.height) {
		return
	}
	l.width, l.height = w, h
	l.backend.Resize(w, h)
	l.camera.SetSurfaceSize(w, h)
	logger.Log.Debug("Surface resized", zap.Int("width", w), zap.Int("height", h))
}
