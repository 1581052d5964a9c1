package renderer

import (
	"testing"

	"LiveScene/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayIntersectSphere(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}

	hit, dist, point := RayIntersectSphere(ray, mgl32.Vec3{}, 1)
	assert.True(t, hit)
	assert.InDelta(t, 4, dist, 1e-5)
	assert.InDelta(t, 1, point.Z(), 1e-5)

	hit, _, _ = RayIntersectSphere(ray, mgl32.Vec3{3, 0, 0}, 1)
	assert.False(t, hit)

	behind := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}}
	hit, _, _ = RayIntersectSphere(behind, mgl32.Vec3{}, 1)
	assert.False(t, hit)
}

func TestScreenToRayThroughCenter(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	ray := ScreenToRay(cam, 400, 300, 800, 600)

	assert.Equal(t, cam.Position, ray.Origin)
	assert.InDelta(t, -1, ray.Direction.Z(), 1e-4)
}

func TestPickNearestVisible(t *testing.T) {
	scene := NewScene(NewSoftwareBackend(8, 8))
	left := NewModel("left", geometry.DefaultBox())
	left.SetPosition(-2, 0, -3)
	center := NewModel("center", geometry.DefaultBox())
	require.NoError(t, scene.AddObject(left))
	require.NoError(t, scene.AddObject(center))
	cam := NewDefaultCamera(800, 600)

	m, _, ok := Pick(scene, cam, 400, 300, 800, 600)
	require.True(t, ok)
	assert.Equal(t, "center", m.ID)

	center.Visible = false
	_, _, ok = Pick(scene, cam, 400, 300, 800, 600)
	assert.False(t, ok)
}

func TestModelMatrixAppliesTranslationRotationScale(t *testing.T) {
	m := NewModel("m", geometry.DefaultBox())
	m.SetScale(2, 2, 2)
	m.SetRotation(0, mgl32.DegToRad(90), 0)
	m.SetPosition(1, 0, 0)

	p := m.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// scale to x=2, rotate +90 about Y to z=-2, then translate
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, -2, p.Z(), 1e-5)
	assert.False(t, m.IsDirty)
}

func TestModelColorHexRoundTrip(t *testing.T) {
	m := NewModel("m", geometry.DefaultBox())
	m.SetColorHex(0x8844aa)
	assert.Equal(t, uint(0x8844aa), m.ColorHex())
}

func TestLightDirection(t *testing.T) {
	l := &Light{Mode: DirectionalLight, Position: mgl32.Vec3{0, 10, 0}}
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction())

	amb := &Light{Mode: AmbientLight, Position: mgl32.Vec3{0, 10, 0}}
	assert.Equal(t, mgl32.Vec3{}, amb.Direction())
}
