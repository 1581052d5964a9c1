// Package environment derives the sun direction from elevation and azimuth and keeps the sky
// uniforms, the water uniforms and the directional light consistent with it.
//
// Coordinates are right-handed with Y up. Azimuth 0 points down +Z and azimuth 180 down -Z; elevation
// 0 is the horizon and 90 the zenith. The sun vector is computed in float64 and rounded to float32
// once, so the sky's sunPosition and the water's sunDirection are bit-identical.
//
// The sky colors are a cheap approximation and not a scattering simulation.
package environment

import (
	"math"
	"time"

	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

type Parameters struct {
	Elevation       float64 `yaml:"elevation"` // degrees, [0, 90]
	Azimuth         float64 `yaml:"azimuth"`   // degrees, [-180, 180]
	Turbidity       float64 `yaml:"turbidity"`
	Rayleigh        float64 `yaml:"rayleigh"`
	MieCoefficient  float64 `yaml:"mieCoefficient"`
	MieDirectionalG float64 `yaml:"mieDirectionalG"`
	LightIntensity  float64 `yaml:"lightIntensity"`
	Exposure        float64 `yaml:"exposure"`
	WaterColor      uint32  `yaml:"waterColor"`
	DistortionScale float64 `yaml:"distortionScale"`
	WaveSpeed       float64 `yaml:"waveSpeed"`
}

// DefaultParameters is a low afternoon sun over open water.
func DefaultParameters() Parameters {
	return Parameters{
		Elevation:       2,
		Azimuth:         180,
		Turbidity:       10,
		Rayleigh:        2,
		MieCoefficient:  0.005,
		MieDirectionalG: 0.8,
		LightIntensity:  1,
		Exposure:        0.5,
		WaterColor:      0x001e0f,
		DistortionScale: 3.7,
		WaveSpeed:       1,
	}
}

// Clamped moves every field into its valid range. NaN becomes the range minimum.
func (p Parameters) Clamped() Parameters {
	p.Elevation = clamp(p.Elevation, 0, 90)
	p.Azimuth = clamp(p.Azimuth, -180, 180)
	p.Turbidity = clamp(p.Turbidity, 0, 20)
	p.Rayleigh = clamp(p.Rayleigh, 0, 4)
	p.MieCoefficient = clamp(p.MieCoefficient, 0, 0.1)
	p.MieDirectionalG = clamp(p.MieDirectionalG, 0, 1)
	p.LightIntensity = clamp(p.LightIntensity, 0, 10)
	p.Exposure = clamp(p.Exposure, 0, 4)
	p.WaterColor &= 0xffffff
	p.DistortionScale = clamp(p.DistortionScale, 0, 20)
	p.WaveSpeed = clamp(p.WaveSpeed, 0, 10)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SunVector converts elevation and azimuth in degrees to a unit direction toward the sun, using polar
// angle 90-elevation and azimuthal angle azimuth.
func SunVector(elevation, azimuth float64) mgl64.Vec3 {
	phi := mgl64.DegToRad(90 - elevation)
	theta := mgl64.DegToRad(azimuth)
	sinPhi := math.Sin(phi)
	return mgl64.Vec3{
		sinPhi * math.Sin(theta),
		math.Cos(phi),
		sinPhi * math.Cos(theta),
	}
}

// lightDistance places the directional light far enough out that it lights the whole scene.
const lightDistance = 100

// Model owns the environment parameters and the state derived from them.
type Model struct {
	params Parameters
	sun    mgl64.Vec3
	time   float64

	Sky   *renderer.Uniforms
	Water *renderer.Uniforms
	Light *renderer.Light

	scene *renderer.Scene
}

func New(p Parameters) *Model {
	m := &Model{
		Sky:   renderer.NewUniforms(),
		Water: renderer.NewUniforms(),
		Light: &renderer.Light{Name: "sun", Mode: renderer.DirectionalLight},
	}
	m.params = p.Clamped()
	m.Water.SetFloat("time", 0)
	m.update()
	return m
}

// Attach makes scene render with this environment: its sky set, its sun light and its exposure.
func (m *Model) Attach(scene *renderer.Scene) {
	m.scene = scene
	scene.Sky = m.Sky
	if scene.Light(renderer.DirectionalLight) == nil {
		scene.AddLight(m.Light)
	}
	m.update()
}

func (m *Model) Parameters() Parameters { return m.params }

// SunVector returns the current unit sun direction.
func (m *Model) SunVector() mgl64.Vec3 { return m.sun }

// Time is the accumulated wave time in seconds.
func (m *Model) Time() float64 { return m.time }

// SetParameters replaces every parameter and recomputes the derived state once.
func (m *Model) SetParameters(p Parameters) {
	m.params = p.Clamped()
	m.update()
}

func (m *Model) SetSunAngles(elevation, azimuth float64) {
	m.edit(func(p *Parameters) { p.Elevation, p.Azimuth = elevation, azimuth })
}

func (m *Model) SetTurbidity(v float64)       { m.edit(func(p *Parameters) { p.Turbidity = v }) }
func (m *Model) SetRayleigh(v float64)        { m.edit(func(p *Parameters) { p.Rayleigh = v }) }
func (m *Model) SetMieCoefficient(v float64)  { m.edit(func(p *Parameters) { p.MieCoefficient = v }) }
func (m *Model) SetMieDirectionalG(v float64) { m.edit(func(p *Parameters) { p.MieDirectionalG = v }) }
func (m *Model) SetLightIntensity(v float64)  { m.edit(func(p *Parameters) { p.LightIntensity = v }) }
func (m *Model) SetExposure(v float64)        { m.edit(func(p *Parameters) { p.Exposure = v }) }
func (m *Model) SetWaterColor(hex uint32)     { m.edit(func(p *Parameters) { p.WaterColor = hex }) }
func (m *Model) SetDistortionScale(v float64) { m.edit(func(p *Parameters) { p.DistortionScale = v }) }
func (m *Model) SetWaveSpeed(v float64)       { m.edit(func(p *Parameters) { p.WaveSpeed = v }) }

func (m *Model) edit(fn func(*Parameters)) {
	p := m.params
	fn(&p)
	m.params = p.Clamped()
	m.update()
}

// Advance moves the water animation time by dt scaled by the wave speed.
func (m *Model) Advance(dt time.Duration) {
	m.time += dt.Seconds() * m.params.WaveSpeed
	m.Water.SetFloat("time", float32(m.time))
}

// update recomputes the sun vector, then the sky, then the water and the light, in that order.
func (m *Model) update() {
	m.recomputeSunVector()
	zenith, horizon := m.propagateToSky()
	m.propagateToWater(zenith, horizon)
	m.propagateToLight()
	logger.Log.Debug("Environment updated",
		zap.Float64("elevation", m.params.Elevation),
		zap.Float64("azimuth", m.params.Azimuth),
		zap.Float64s("sun", m.sun[:]))
}

// recomputeSunVector normalizes in float64 before anything is rounded, so sky and water receive the same
// float32 vector.
func (m *Model) recomputeSunVector() {
	m.sun = SunVector(m.params.Elevation, m.params.Azimuth).Normalize()
}

func toVec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (m *Model) propagateToSky() (zenith, horizon mgl32.Vec3) {
	p := m.params
	m.Sky.SetFloat("turbidity", float32(p.Turbidity))
	m.Sky.SetFloat("rayleigh", float32(p.Rayleigh))
	m.Sky.SetFloat("mieCoefficient", float32(p.MieCoefficient))
	m.Sky.SetFloat("mieDirectionalG", float32(p.MieDirectionalG))
	m.Sky.SetVec3("sunPosition", toVec32(m.sun))
	m.Sky.SetVec3("up", mgl32.Vec3{0, 1, 0})

	zenith, horizon = skyColors(p, m.sun)
	m.Sky.SetVec3("skyColor", zenith)
	m.Sky.SetVec3("horizonColor", horizon)
	return zenith, horizon
}

func (m *Model) propagateToWater(zenith, horizon mgl32.Vec3) {
	m.Water.SetVec3("sunDirection", toVec32(m.sun))
	m.Water.SetVec3("sunColor", sunColor(m.sun))
	water := math32.NewColorHex(uint(m.params.WaterColor))
	m.Water.SetVec3("waterColor", mgl32.Vec3{water.R, water.G, water.B})
	m.Water.SetFloat("distortionScale", float32(m.params.DistortionScale))
	m.Water.SetVec3("skyColor", zenith)
	m.Water.SetVec3("horizonColor", horizon)
}

func (m *Model) propagateToLight() {
	m.Light.Position = toVec32(m.sun.Mul(lightDistance))
	m.Light.Color = sunColor(m.sun)
	m.Light.Intensity = float32(m.params.LightIntensity)
	if m.scene != nil {
		m.scene.Exposure = float32(m.params.Exposure)
	}
}

// daylight ramps from 0 with the sun just below the horizon to 1 well above it.
func daylight(sun mgl64.Vec3) float32 {
	t := math32.Clamp(float32((sun.Y()+0.05)/0.35), 0, 1)
	return t * t * (3 - 2*t)
}

func sunColor(sun mgl64.Vec3) mgl32.Vec3 {
	warm := mgl32.Vec3{1, 0.6, 0.35}
	white := mgl32.Vec3{1, 0.98, 0.92}
	return lerp(warm, white, daylight(sun))
}

func skyColors(p Parameters, sun mgl64.Vec3) (zenith, horizon mgl32.Vec3) {
	day := daylight(sun)
	night := mgl32.Vec3{0.02, 0.03, 0.08}
	// more rayleigh scattering deepens the blue
	scatter := math32.Clamp(float32(p.Rayleigh)/2, 0, 2)
	dayZenith := mgl32.Vec3{0.18, 0.42, 0.9}.Mul(0.5 + 0.5*scatter)
	zenith = lerp(night, dayZenith, day)

	haze := math32.Clamp(float32(p.Turbidity)/20, 0, 1)
	zenith = lerp(zenith, mgl32.Vec3{0.7, 0.72, 0.75}.Mul(day), haze*0.5)

	// sunset glow near the horizon, scaled by mie scattering
	low := 1 - math32.Abs(float32(sun.Y()))
	glowStrength := math32.Clamp(float32(p.MieCoefficient)*200, 0, 2) * float32(math.Pow(float64(low), 8))
	glow := mgl32.Vec3{1, 0.45, 0.2}.Mul(glowStrength * (0.5 + 0.5*float32(p.MieDirectionalG)))

	horizon = zenith.Mul(0.85).Add(glow)
	return clampColor(zenith), clampColor(horizon)
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func clampColor(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Clamp(c[0], 0, 1), math32.Clamp(c[1], 0, 1), math32.Clamp(c[2], 0, 1)}
}
