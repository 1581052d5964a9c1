package main

import (
	"image"
	"sync"

	"LiveScene/internal/controls"
	"LiveScene/internal/engine"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// rasterSurface records the preview's pixel size as last seen by the raster generator.
type rasterSurface struct {
	mu   sync.Mutex
	w, h int
}

func (s *rasterSurface) set(w, h int) {
	s.mu.Lock()
	s.w, s.h = w, h
	s.mu.Unlock()
}

func (s *rasterSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// viewport shows the software backend's last frame and forwards pointer gestures to the arbiter.
type viewport struct {
	widget.BaseWidget

	raster  *canvas.Raster
	surface *rasterSurface
	queue   *engine.EventQueue
	session *engine.Session

	secondary bool
}

var (
	_ fyne.Draggable    = (*viewport)(nil)
	_ fyne.Scrollable   = (*viewport)(nil)
	_ desktop.Mouseable = (*viewport)(nil)
	_ desktop.Hoverable = (*viewport)(nil)
)

func newViewport(backend *renderer.SoftwareBackend, surface *rasterSurface, queue *engine.EventQueue, session *engine.Session) *viewport {
	v := &viewport{surface: surface, queue: queue, session: session}
	v.raster = canvas.NewRaster(func(w, h int) image.Image {
		surface.set(w, h)
		return backend.Snapshot()
	})
	v.ExtendBaseWidget(v)
	return v
}

func (v *viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

func (v *viewport) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// pixels converts a widget position to raster pixels.
func (v *viewport) pixels(p fyne.Position) (float32, float32) {
	sx, sy := v.scale()
	return p.X * sx, p.Y * sy
}

func (v *viewport) scale() (float32, float32) {
	size := v.Size()
	w, h := v.surface.Size()
	if size.Width <= 0 || size.Height <= 0 || w <= 0 || h <= 0 {
		return 1, 1
	}
	return float32(w) / size.Width, float32(h) / size.Height
}

func (v *viewport) post(fn func(a *controls.Arbiter)) {
	if err := v.queue.Post(func() { fn(v.session.Arbiter) }); err != nil {
		logger.Log.Debug("Pointer event dropped", zap.Error(err))
	}
}

func (v *viewport) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonSecondary {
		v.secondary = true
		return
	}
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	x, y := v.pixels(ev.Position)
	v.post(func(a *controls.Arbiter) {
		if id := v.session.Pick(x, y); id != "" {
			if err := a.DragStart(id); err != nil {
				logger.Log.Warn("Drag start failed", zap.String("object", id), zap.Error(err))
			}
		}
	})
}

func (v *viewport) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonSecondary {
		v.secondary = false
	}
	v.post((*controls.Arbiter).PointerUp)
}

// Dragged moves the grabbed object, or orbits when nothing is grabbed. Secondary drags pan.
func (v *viewport) Dragged(ev *fyne.DragEvent) {
	sx, sy := v.scale()
	dx, dy := ev.Dragged.DX, ev.Dragged.DY
	pan := v.secondary
	v.post(func(a *controls.Arbiter) {
		switch {
		case a.State() == controls.DragActive:
			a.DragMove(dx*sx, dy*sy)
		case pan:
			a.OrbitPan(dx, dy)
		default:
			a.OrbitRotate(dx, dy)
		}
	})
}

func (v *viewport) DragEnd() { v.post((*controls.Arbiter).DragEnd) }

func (v *viewport) Scrolled(ev *fyne.ScrollEvent) {
	steps := ev.Scrolled.DY / 10
	v.post(func(a *controls.Arbiter) { a.OrbitZoom(steps) })
}

func (v *viewport) MouseIn(*desktop.MouseEvent) {}

func (v *viewport) MouseMoved(*desktop.MouseEvent) {}

func (v *viewport) MouseOut() {
	v.secondary = false
	v.post((*controls.Arbiter).PointerLeave)
}
