package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// RayIntersectSphere tests if a ray intersects a sphere
// Returns: (intersected, distance, intersection point)
func RayIntersectSphere(ray Ray, sphereCenter mgl32.Vec3, radius float32) (bool, float32, mgl32.Vec3) {
	oc := ray.Origin.Sub(sphereCenter)

	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false, 0, mgl32.Vec3{}
	}

	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)

	// closest hit in front of the origin
	var t float32
	switch {
	case t1 > 0:
		t = t1
	case t2 > 0:
		t = t2
	default:
		return false, 0, mgl32.Vec3{}
	}

	return true, t, ray.Origin.Add(ray.Direction.Mul(t))
}

// ScreenToRay converts a pixel position on a surface of the given size to a world space ray.
func ScreenToRay(camera *Camera, screenX, screenY float32, width, height int) Ray {
	ndcX := 2.0*screenX/float32(width) - 1.0
	ndcY := 1.0 - 2.0*screenY/float32(height)

	clipCoords := mgl32.Vec4{ndcX, ndcY, -1.0, 1.0}

	eyeCoords := camera.Projection.Inv().Mul4x1(clipCoords)
	eyeCoords = mgl32.Vec4{eyeCoords.X(), eyeCoords.Y(), -1.0, 0.0}

	worldDir := camera.GetViewMatrix().Inv().Mul4x1(eyeCoords).Vec3().Normalize()

	return Ray{
		Origin:    camera.Position,
		Direction: worldDir,
	}
}

// Pick returns the nearest visible, pickable object whose bounding sphere the ray through (screenX, screenY)
// hits, with the hit point.
func Pick(scene *Scene, camera *Camera, screenX, screenY float32, width, height int) (*Model, mgl32.Vec3, bool) {
	if width <= 0 || height <= 0 {
		return nil, mgl32.Vec3{}, false
	}
	ray := ScreenToRay(camera, screenX, screenY, width, height)

	var (
		best     *Model
		bestDist float32
		bestHit  mgl32.Vec3
	)
	for _, m := range scene.Objects() {
		if !m.Visible || !m.Pickable || m.Shader == WaterShader {
			continue
		}
		center, radius := m.BoundingSphere()
		if ok, dist, hit := RayIntersectSphere(ray, center, radius); ok && (best == nil || dist < bestDist) {
			best, bestDist, bestHit = m, dist, hit
		}
	}
	return best, bestHit, best != nil
}
