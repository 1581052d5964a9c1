package controls

import (
	"LiveScene/internal/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DragController moves one object in the camera's screen plane. A pointer delta of one pixel moves
// the object by the world size of one pixel at the object's depth, so it tracks the cursor.
type DragController struct {
	camera *renderer.Camera
	target *renderer.Model
}

func NewDragController(camera *renderer.Camera) *DragController {
	return &DragController{camera: camera}
}

func (d *DragController) Begin(m *renderer.Model) { d.target = m }

func (d *DragController) End() { d.target = nil }

func (d *DragController) Target() *renderer.Model { return d.target }

// Move applies a pointer delta in pixels; +dy is down the screen.
func (d *DragController) Move(dx, dy float32) {
	if d.target == nil {
		return
	}
	_, height := d.camera.SurfaceSize()
	if height <= 0 {
		return
	}
	front := d.camera.Front()
	depth := d.target.Position.Sub(d.camera.Position).Dot(front)
	if depth <= d.camera.Near {
		depth = d.camera.Near
	}
	perPixel := 2 * depth * math32.Tan(mgl32.DegToRad(d.camera.Fov)/2) / float32(height)

	shift := d.camera.Right().Mul(dx * perPixel).Sub(d.camera.ScreenUp().Mul(dy * perPixel))
	p := d.target.Position.Add(shift)
	d.target.SetPosition(p.X(), p.Y(), p.Z())
}
