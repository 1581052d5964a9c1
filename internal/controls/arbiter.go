// Package controls arbitrates pointer input between the orbit camera and direct object dragging.
//
// The Arbiter is a two-state machine. In OrbitActive pointer gestures steer the camera; a drag start
// switches to DragActive, which freezes the camera until the drag ends through DragEnd, a pointer-up,
// the pointer leaving the surface, or an idle timeout checked in Update.
package controls

import (
	"fmt"
	"time"

	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"go.uber.org/zap"
)

type State int

const (
	OrbitActive State = iota
	DragActive
)

func (s State) String() string {
	switch s {
	case OrbitActive:
		return "orbit"
	case DragActive:
		return "drag"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultDragIdleTimeout ends a drag that received no pointer activity for this long.
const DefaultDragIdleTimeout = 5 * time.Second

type Arbiter struct {
	state   State
	scene   *renderer.Scene
	orbit   *OrbitController
	drag    *DragController
	dragged string
	idle    time.Duration

	IdleTimeout time.Duration
	// OnStateChange, if set, is called after every transition.
	OnStateChange func(State)
}

func NewArbiter(scene *renderer.Scene, camera *renderer.Camera, cfg OrbitConfig) *Arbiter {
	return &Arbiter{
		state:       OrbitActive,
		scene:       scene,
		orbit:       NewOrbitController(camera, cfg),
		drag:        NewDragController(camera),
		IdleTimeout: DefaultDragIdleTimeout,
	}
}

func (a *Arbiter) State() State { return a.state }

func (a *Arbiter) Orbit() *OrbitController { return a.orbit }

// Dragged returns the id of the object being dragged, or "".
func (a *Arbiter) Dragged() string { return a.dragged }

// DragStart begins dragging object id. While another drag is active the request is ignored; the
// first drag wins.
func (a *Arbiter) DragStart(id string) error {
	m := a.scene.Object(id)
	if m == nil {
		return fmt.Errorf("%w: %q", renderer.ErrUnknownObject, id)
	}
	if a.state == DragActive {
		if id != a.dragged {
			logger.Log.Warn("Ignoring drag start while another drag is active",
				zap.String("active", a.dragged), zap.String("requested", id))
		}
		return nil
	}

	a.orbit.Reset()
	a.drag.Begin(m)
	a.dragged = id
	a.idle = 0
	a.transition(DragActive)
	return nil
}

// DragMove moves the dragged object by a pointer delta in pixels. Ignored in OrbitActive.
func (a *Arbiter) DragMove(dx, dy float32) {
	if a.state != DragActive {
		return
	}
	a.drag.Move(dx, dy)
	a.idle = 0
}

func (a *Arbiter) DragEnd()      { a.endDrag("drag end") }
func (a *Arbiter) PointerUp()    { a.endDrag("pointer up") }
func (a *Arbiter) PointerLeave() { a.endDrag("pointer left surface") }

func (a *Arbiter) endDrag(reason string) {
	if a.state != DragActive {
		return
	}
	logger.Log.Debug("Drag finished", zap.String("object", a.dragged), zap.String("reason", reason))
	a.drag.End()
	a.dragged = ""
	a.idle = 0
	a.transition(OrbitActive)
}

func (a *Arbiter) OrbitRotate(dx, dy float32) {
	if a.state == OrbitActive {
		a.orbit.Rotate(dx, dy)
	}
}

func (a *Arbiter) OrbitZoom(steps float32) {
	if a.state == OrbitActive {
		a.orbit.Zoom(steps)
	}
}

func (a *Arbiter) OrbitPan(dx, dy float32) {
	if a.state == OrbitActive {
		a.orbit.Pan(dx, dy)
	}
}

// Update runs once per frame. In OrbitActive it applies one orbit step; in DragActive it leaves the
// camera alone and only tracks the idle timeout.
func (a *Arbiter) Update(dt time.Duration) {
	if a.state == DragActive {
		a.idle += dt
		if a.IdleTimeout > 0 && a.idle >= a.IdleTimeout {
			logger.Log.Warn("Drag idle, returning control to orbit", zap.String("object", a.dragged), zap.Duration("idle", a.idle))
			a.endDrag("idle timeout")
		}
		return
	}
	a.orbit.Update(dt)
}

func (a *Arbiter) transition(to State) {
	a.state = to
	if a.OnStateChange != nil {
		a.OnStateChange(to)
	}
}
