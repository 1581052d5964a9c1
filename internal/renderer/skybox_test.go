package renderer

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertColorInDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "channel %d", i)
	}
}

func TestSkyWithOnlyZenithIsFlat(t *testing.T) {
	u := NewUniforms()
	u.SetVec3("skyColor", mgl32.Vec3{0.1, 0.2, 0.9})
	sky := NewSkyShading(u)

	assert.True(t, sky.Flat())
	for _, dir := range []mgl32.Vec3{{0, 1, 0}, {1, 0, 0}, {0, -1, 0}, mgl32.Vec3{1, 1, 1}.Normalize()} {
		assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.9}, sky.Radiance(dir))
	}
}

func TestSkyGradientRunsFromHorizonToZenith(t *testing.T) {
	u := NewUniforms()
	u.SetVec3("skyColor", mgl32.Vec3{0, 0, 1})
	u.SetVec3("horizonColor", mgl32.Vec3{1, 0, 0})
	u.SetVec3("up", mgl32.Vec3{0, 1, 0})
	sky := NewSkyShading(u)

	assert.False(t, sky.Flat())
	assertColorInDelta(t, mgl32.Vec3{0, 0, 1}, sky.Radiance(mgl32.Vec3{0, 1, 0}))
	assertColorInDelta(t, mgl32.Vec3{1, 0, 0}, sky.Radiance(mgl32.Vec3{1, 0, 0}))
	assertColorInDelta(t, mgl32.Vec3{1, 0, 0}, sky.Radiance(mgl32.Vec3{0, -1, 0}))
}

func TestSkyRayleighRaisesZenithShare(t *testing.T) {
	u := NewUniforms()
	u.SetVec3("skyColor", mgl32.Vec3{0, 0, 1})
	u.SetVec3("horizonColor", mgl32.Vec3{1, 0, 0})
	dir := mgl32.Vec3{1, 0.3, 0}.Normalize()

	u.SetFloat("rayleigh", 0)
	low := NewSkyShading(u).Radiance(dir)
	u.SetFloat("rayleigh", 3)
	high := NewSkyShading(u).Radiance(dir)
	assert.Greater(t, high.Z(), low.Z())
}

func TestSkySunDiskAndGlow(t *testing.T) {
	u := NewUniforms()
	u.SetVec3("skyColor", mgl32.Vec3{})
	u.SetVec3("sunPosition", mgl32.Vec3{1, 0.2, 0})
	u.SetFloat("mieCoefficient", 0.005)
	u.SetFloat("mieDirectionalG", 0.8)
	sky := NewSkyShading(u)
	sun := sky.Sun

	assertColorInDelta(t, sunDiskColor, sky.Radiance(sun))

	near := sky.Radiance(mgl32.Rotate3DY(mgl32.DegToRad(10)).Mul3x1(sun))
	far := sky.Radiance(mgl32.Rotate3DY(mgl32.DegToRad(90)).Mul3x1(sun))
	assert.Greater(t, near.X(), far.X())
	assert.Less(t, near.X(), sunDiskColor.X())

	u.SetFloat("mieCoefficient", 0)
	assert.Equal(t, mgl32.Vec3{}, NewSkyShading(u).Radiance(mgl32.Rotate3DY(mgl32.DegToRad(10)).Mul3x1(sun)))
}

func TestSoftwareRenderDrawsSunDisk(t *testing.T) {
	backend := NewSoftwareBackend(33, 33)
	scene := NewScene(backend)
	scene.Sky.SetVec3("skyColor", mgl32.Vec3{0, 0, 0.5})
	// the default camera looks down -Z
	scene.Sky.SetVec3("sunPosition", mgl32.Vec3{0, 0, -1})

	require.NoError(t, backend.Render(scene, NewDefaultCamera(33, 33)))
	frame := backend.Snapshot()

	assert.Equal(t, toRGBA(sunDiskColor), frame.RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{B: 128, A: 255}, frame.RGBAAt(0, 0))
}

func TestOpenGLToggleDefaults(t *testing.T) {
	a, b := newOpenGLBackend(), newOpenGLBackend()
	assert.True(t, a.DepthTest)
	assert.False(t, a.FaceCulling)

	a.FaceCulling = true
	assert.False(t, b.FaceCulling, "toggles are per backend")
}
