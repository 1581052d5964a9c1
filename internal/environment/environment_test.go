package environment

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"LiveScene/internal/binding"
	"LiveScene/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSunVectorIsUnitOverFullGrid(t *testing.T) {
	for elevation := 0.0; elevation <= 90; elevation++ {
		for azimuth := -180.0; azimuth <= 180; azimuth++ {
			v := SunVector(elevation, azimuth)
			for i := 0; i < 3; i++ {
				require.False(t, math.IsNaN(v[i]), "NaN at elevation %v azimuth %v", elevation, azimuth)
			}
			require.InDelta(t, 1, v.Len(), 1e-12, "elevation %v azimuth %v", elevation, azimuth)
		}
	}
}

func TestSunVectorBoundaries(t *testing.T) {
	zenith := SunVector(90, 0)
	assert.InDelta(t, 1, zenith.Y(), 1e-12)
	assert.InDelta(t, 0, zenith.X(), 1e-12)
	assert.InDelta(t, 0, zenith.Z(), 1e-12)

	north := SunVector(0, 0)
	assert.InDelta(t, 0, north.Y(), 1e-12)
	assert.InDelta(t, 1, north.Z(), 1e-12)

	// -180 and 180 describe the same direction
	a, b := SunVector(30, -180), SunVector(30, 180)
	assert.InDelta(t, a.X(), b.X(), 1e-12)
	assert.InDelta(t, a.Z(), b.Z(), 1e-12)

	east := SunVector(0, 90)
	assert.InDelta(t, 1, east.X(), 1e-12)
}

func TestLowSunScenario(t *testing.T) {
	m := New(DefaultParameters())
	m.SetSunAngles(2, 180)

	sun := m.SunVector()
	assert.InDelta(t, 0, sun.X(), 1e-4)
	assert.InDelta(t, 0.0349, sun.Y(), 1e-4)
	assert.InDelta(t, -0.9994, sun.Z(), 1e-4)

	sky, ok := m.Sky.Vec3("sunPosition")
	require.True(t, ok)
	water, ok := m.Water.Vec3("sunDirection")
	require.True(t, ok)
	assertBitEqual(t, sky, water)
}

func TestSkyAndWaterAgreeAfterAnyEditSequence(t *testing.T) {
	m := New(DefaultParameters())
	rng := rand.New(rand.NewSource(7))

	edits := []func(){
		func() { m.SetSunAngles(rng.Float64()*120-15, rng.Float64()*400-200) },
		func() { m.SetTurbidity(rng.Float64() * 25) },
		func() { m.SetRayleigh(rng.Float64() * 5) },
		func() { m.SetMieCoefficient(rng.Float64() * 0.2) },
		func() { m.SetLightIntensity(rng.Float64() * 3) },
		func() { m.SetDistortionScale(rng.Float64() * 8) },
		func() { m.Advance(time.Duration(rng.Intn(50)) * time.Millisecond) },
	}
	for i := 0; i < 2000; i++ {
		edits[rng.Intn(len(edits))]()

		sky, _ := m.Sky.Vec3("sunPosition")
		water, _ := m.Water.Vec3("sunDirection")
		assertBitEqual(t, sky, water)

		want := SunVector(m.Parameters().Elevation, m.Parameters().Azimuth)
		assert.InDelta(t, want.Y(), float64(sky.Y()), 1e-6)
	}
}

func TestClampedParameters(t *testing.T) {
	p := Parameters{Elevation: 95, Azimuth: -200, Turbidity: math.NaN(), WaterColor: 0xff123456}.Clamped()

	assert.Equal(t, 90.0, p.Elevation)
	assert.Equal(t, -180.0, p.Azimuth)
	assert.Equal(t, 0.0, p.Turbidity)
	assert.Equal(t, uint32(0x123456), p.WaterColor)
}

func TestLightFollowsSun(t *testing.T) {
	m := New(DefaultParameters())
	m.SetSunAngles(45, 90)
	m.SetLightIntensity(2.5)

	dir := m.Light.Position.Normalize()
	sun, _ := m.Sky.Vec3("sunPosition")
	assert.InDelta(t, sun.X(), dir.X(), 1e-5)
	assert.InDelta(t, sun.Y(), dir.Y(), 1e-5)
	assert.Equal(t, float32(2.5), m.Light.Intensity)
	assert.InDelta(t, -sun.Y(), m.Light.Direction().Y(), 1e-5)
}

func TestHighSunBrightensSky(t *testing.T) {
	m := New(DefaultParameters())
	m.SetSunAngles(0, 0)
	dawn, _ := m.Sky.Vec3("skyColor")
	m.SetSunAngles(80, 0)
	noon, _ := m.Sky.Vec3("skyColor")

	assert.Greater(t, noon.Len(), dawn.Len())

	waterSky, _ := m.Water.Vec3("skyColor")
	assert.Equal(t, noon, waterSky, "water reflection tint follows the sky")
}

func TestAdvanceScalesByWaveSpeed(t *testing.T) {
	m := New(DefaultParameters())
	m.SetWaveSpeed(2)
	m.Advance(500 * time.Millisecond)

	assert.InDelta(t, 1.0, m.Time(), 1e-9)
	v, _ := m.Water.Float("time")
	assert.Equal(t, float32(1), v)
}

func TestAttachDrivesScene(t *testing.T) {
	scene := renderer.NewScene(renderer.NewSoftwareBackend(4, 4))
	m := New(DefaultParameters())
	m.Attach(scene)

	assert.Same(t, m.Sky, scene.Sky)
	assert.Same(t, m.Light, scene.Light(renderer.DirectionalLight))
	assert.Equal(t, float32(0.5), scene.Exposure)

	m.SetExposure(0.8)
	assert.InDelta(t, 0.8, scene.Exposure, 1e-6)
}

func TestSkyUniformsShadeTheSunDisk(t *testing.T) {
	m := New(DefaultParameters())
	m.SetSunAngles(30, 45)
	sky := renderer.NewSkyShading(m.Sky)
	require.True(t, sky.HasSun)

	sun := toVec32(m.SunVector())
	towards := sky.Radiance(sun)
	away := sky.Radiance(mgl32.Vec3{-sun.X(), sun.Y(), -sun.Z()}.Normalize())
	assert.Greater(t, towards.X(), away.X())
	assert.Greater(t, towards.X(), float32(0.9))

	zenith, _ := m.Sky.Vec3("skyColor")
	assertBitEqual(t, zenith, sky.Zenith)
}

func TestStoredSunVectorIsNormalized(t *testing.T) {
	m := New(DefaultParameters())
	for _, el := range []float64{0, 0.5, 2, 45, 89.9, 90} {
		m.SetSunAngles(el, 123)
		assert.InDelta(t, 1.0, m.SunVector().Len(), 1e-15)
		sky, _ := m.Sky.Vec3("sunPosition")
		water, _ := m.Water.Vec3("sunDirection")
		assertBitEqual(t, sky, water)
	}
}

func TestBindControls(t *testing.T) {
	m := New(DefaultParameters())
	r := binding.NewRegistry()
	require.NoError(t, m.Bind(r))

	require.NoError(t, r.Dispatch("sky.elevation", 30))
	require.NoError(t, r.Dispatch("sky.azimuth", -90))
	require.NoError(t, r.Dispatch("water.color", "#0000ff"))

	p := m.Parameters()
	assert.Equal(t, 30.0, p.Elevation)
	assert.Equal(t, -90.0, p.Azimuth)
	c, _ := m.Water.Vec3("waterColor")
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, c)

	// out of range elevation is clamped by the control
	require.NoError(t, r.Dispatch("sky.elevation", 120))
	assert.Equal(t, 90.0, m.Parameters().Elevation)
}

func assertBitEqual(t *testing.T, a, b mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.Equal(t, math.Float32bits(a[i]), math.Float32bits(b[i]), "component %d: %v vs %v", i, a, b)
	}
}
