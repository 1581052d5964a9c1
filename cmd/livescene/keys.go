package main

import (
	"LiveScene/internal/binding"
	"LiveScene/internal/engine"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// keyBinding steps a numeric control by delta, or toggles a boolean control.
type keyBinding struct {
	control string
	delta   float64
}

var keyBindings = map[glfw.Key]keyBinding{
	glfw.KeyUp:           {"sky.elevation", 1},
	glfw.KeyDown:         {"sky.elevation", -1},
	glfw.KeyRight:        {"sky.azimuth", 5},
	glfw.KeyLeft:         {"sky.azimuth", -5},
	glfw.KeyEqual:        {"cube.boxWidth", 0.1},
	glfw.KeyMinus:        {"cube.boxWidth", -0.1},
	glfw.KeyRightBracket: {"sphere.radius", 0.1},
	glfw.KeyLeftBracket:  {"sphere.radius", -0.1},
	glfw.KeyE:            {"renderer.exposure", 0.05},
	glfw.KeyQ:            {"renderer.exposure", -0.05},
	glfw.KeyF:            {"camera.fov", 5},
	glfw.KeyG:            {"camera.fov", -5},
	glfw.KeyW:            {"cube.wireframe", 0},
	glfw.KeySpace:        {"animation.spin", 0},
	glfw.KeyR:            {"orbit.autoRotate", 0},
	glfw.KeyD:            {"orbit.damping", 0},
}

// step applies b to the control's current value. Shift multiplies the step by ten.
func step(s *engine.Session, b keyBinding, coarse bool) error {
	v, ok := s.Registry.Value(b.control)
	if !ok {
		return binding.ErrUnknownControl
	}
	delta := b.delta
	if coarse {
		delta *= 10
	}
	switch v.Kind {
	case binding.Bool:
		return s.Dispatch(b.control, !v.Bool)
	case binding.Int:
		return s.Dispatch(b.control, float64(v.Int)+delta)
	default:
		return s.Dispatch(b.control, v.Float+delta)
	}
}
