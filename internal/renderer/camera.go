// camera.go
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	// HOT DATA - Accessed every frame for view/projection calculations
	Position   mgl32.Vec3 // Camera position in world space
	Target     mgl32.Vec3 // Point the camera looks at
	Up         mgl32.Vec3 // Up direction vector
	Projection mgl32.Mat4 // Projection matrix

	// COLD DATA - Configuration, changed from the panel
	Fov  float32 // Field of view in degrees
	Near float32 // Near clipping plane
	Far  float32 // Far clipping plane

	// Aspect is derived from the surface size only, see SetSurfaceSize.
	aspect            float32
	width, height     int
	projectionUpdates int

	Name string
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

type Frustum struct {
	Planes [6]Plane
}

// NewDefaultCamera sits two units in front of the origin with a 75 degree field of view.
func NewDefaultCamera(width, height int) *Camera {
	return NewCamera(75, 0.1, 1000, width, height)
}

func NewCamera(fov, near, far float32, width, height int) *Camera {
	c := &Camera{
		Position: mgl32.Vec3{0, 0, 2},
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      fov,
		Near:     near,
		Far:      far,
		aspect:   1,
		Name:     "main",
	}
	if !c.SetSurfaceSize(width, height) {
		c.UpdateProjection()
	}
	return c
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.aspect, c.Near, c.Far)
	c.projectionUpdates++
}

// SetSurfaceSize records the output surface size. The aspect ratio and projection are recomputed only
// when the size actually changed; zero or negative sizes (minimized windows) are ignored. It reports
// whether the projection was updated.
func (c *Camera) SetSurfaceSize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == c.width && height == c.height {
		return false
	}
	c.width, c.height = width, height
	c.aspect = float32(width) / float32(height)
	c.UpdateProjection()
	return true
}

func (c *Camera) SurfaceSize() (int, int) { return c.width, c.height }

func (c *Camera) AspectRatio() float32 { return c.aspect }

// ProjectionUpdates counts projection recomputations.
func (c *Camera) ProjectionUpdates() int { return c.projectionUpdates }

// Setter methods that automatically update projection
func (c *Camera) SetNear(near float32) {
	c.Near = near
	c.UpdateProjection()
}

func (c *Camera) SetFar(far float32) {
	c.Far = far
	c.UpdateProjection()
}

func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) LookAt(target mgl32.Vec3) {
	c.Target = target
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Right is the unit screen-right direction in world space.
func (c *Camera) Right() mgl32.Vec3 {
	r := c.Front().Cross(c.Up)
	if r.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

// ScreenUp is the unit screen-up direction in world space.
func (c *Camera) ScreenUp() mgl32.Vec3 {
	return c.Right().Cross(c.Front()).Normalize()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

func (c *Camera) CalculateFrustum() Frustum {
	var frustum Frustum
	vp := c.GetViewProjection()

	// Left Plane
	frustum.Planes[0] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[0], vp[7] + vp[4], vp[11] + vp[8]},
		Distance: vp[15] + vp[12],
	}

	// Right Plane
	frustum.Planes[1] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[0], vp[7] - vp[4], vp[11] - vp[8]},
		Distance: vp[15] - vp[12],
	}

	// Bottom Plane
	frustum.Planes[2] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[1], vp[7] + vp[5], vp[11] + vp[9]},
		Distance: vp[15] + vp[13],
	}

	// Top Plane
	frustum.Planes[3] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[1], vp[7] - vp[5], vp[11] - vp[9]},
		Distance: vp[15] - vp[13],
	}

	// Near Plane
	frustum.Planes[4] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[2], vp[7] + vp[6], vp[11] + vp[10]},
		Distance: vp[15] + vp[14],
	}

	// Far Plane
	frustum.Planes[5] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[2], vp[7] - vp[6], vp[11] - vp[10]},
		Distance: vp[15] - vp[14],
	}

	for i := 0; i < 6; i++ {
		length := frustum.Planes[i].Normal.Len()
		frustum.Planes[i].Normal = frustum.Planes[i].Normal.Mul(1.0 / length)
		frustum.Planes[i].Distance /= length
	}

	return frustum
}

func (p *Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
