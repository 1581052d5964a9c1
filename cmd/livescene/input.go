package main

import (
	"LiveScene/internal/controls"
	"LiveScene/internal/engine"
	"LiveScene/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// input translates GLFW callbacks into arbiter gestures and control edits. Callbacks run inside
// PollEvents on the main thread, which owns the session.
type input struct {
	window  *glfw.Window
	session *engine.Session

	lastX, lastY float64
	tracking     bool
	orbiting     bool
	panning      bool
}

func newInput(window *glfw.Window, session *engine.Session) *input {
	return &input{window: window, session: session}
}

func (in *input) install() {
	in.window.SetMouseButtonCallback(in.mouseButton)
	in.window.SetCursorPosCallback(in.cursorPos)
	in.window.SetCursorEnterCallback(in.cursorEnter)
	in.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		in.session.Arbiter.OrbitZoom(float32(yoff))
	})
	in.window.SetKeyCallback(in.key)
}

// scale converts window coordinates to framebuffer pixels.
func (in *input) scale() (float32, float32) {
	winW, winH := in.window.GetSize()
	fbW, fbH := in.window.GetFramebufferSize()
	if winW == 0 || winH == 0 {
		return 1, 1
	}
	return float32(fbW) / float32(winW), float32(fbH) / float32(winH)
}

func (in *input) mouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	arbiter := in.session.Arbiter
	switch button {
	case glfw.MouseButtonLeft:
		if action == glfw.Press {
			x, y := w.GetCursorPos()
			sx, sy := in.scale()
			if id := in.session.Pick(float32(x)*sx, float32(y)*sy); id != "" {
				if err := arbiter.DragStart(id); err != nil {
					logger.Log.Warn("Drag start failed", zap.String("object", id), zap.Error(err))
				}
			}
		} else if action == glfw.Release {
			arbiter.PointerUp()
		}
	case glfw.MouseButtonRight:
		in.orbiting = action == glfw.Press
	case glfw.MouseButtonMiddle:
		in.panning = action == glfw.Press
	}
}

func (in *input) cursorPos(w *glfw.Window, x, y float64) {
	if !in.tracking {
		in.lastX, in.lastY = x, y
		in.tracking = true
		return
	}
	dx, dy := float32(x-in.lastX), float32(y-in.lastY)
	in.lastX, in.lastY = x, y

	arbiter := in.session.Arbiter
	switch {
	case arbiter.State() == controls.DragActive:
		sx, sy := in.scale()
		arbiter.DragMove(dx*sx, dy*sy)
	case in.orbiting:
		arbiter.OrbitRotate(dx, dy)
	case in.panning:
		arbiter.OrbitPan(dx, dy)
	}
}

func (in *input) cursorEnter(w *glfw.Window, entered bool) {
	if !entered {
		in.tracking = false
		in.orbiting, in.panning = false, false
		in.session.Arbiter.PointerLeave()
	}
}

func (in *input) key(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	b, ok := keyBindings[key]
	if !ok {
		return
	}
	if err := step(in.session, b, mods&glfw.ModShift != 0); err != nil {
		logger.Log.Warn("Key edit rejected", zap.String("control", b.control), zap.Error(err))
	}
}
