// Package water provides the Gerstner wave set that animates the water surface.
//
// The same sum is evaluated on the GPU by the water shader and on the CPU by Displace, from the
// uniforms written by Apply.
package water

import (
	"fmt"

	"LiveScene/internal/binding"
	"LiveScene/internal/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxWaves matches MAX_WAVES in the water shader.
const MaxWaves = 4

const gravity = 9.81

type Wave struct {
	Direction mgl32.Vec2 // unit, in the XZ plane
	Amplitude float32
	Frequency float32 // wave number, radians per world unit
	Speed     float32 // angular speed, radians per second
	Phase     float32
	Steepness float32 // 0 gives sine waves, larger values sharpen crests
}

type Waves struct {
	waves  [MaxWaves]Wave
	height float32
}

// NewWaves builds four waves 45 degrees apart, each shorter and lower than the one before. Angular
// speeds follow the deep-water dispersion relation.
func NewWaves(amplitude float32) *Waves {
	w := &Waves{height: 1}
	scales := [MaxWaves]float32{1.2, 0.8, 0.6, 0.4}
	frequencies := [MaxWaves]float32{0.8, 1.5, 4, 8}
	for i := range w.waves {
		angle := float32(i) * 45 * math32.Pi / 180
		w.waves[i] = Wave{
			Direction: mgl32.Vec2{math32.Cos(angle), math32.Sin(angle)}.Normalize(),
			Amplitude: amplitude * scales[i],
			Frequency: frequencies[i],
			Speed:     math32.Sqrt(gravity * frequencies[i]),
			Phase:     float32(i) * math32.Pi / 3,
			Steepness: 0.2 + float32(i)*0.1,
		}
	}
	return w
}

func (w *Waves) Waves() []Wave { return w.waves[:] }

// Height is the multiplier applied to every amplitude.
func (w *Waves) Height() float32 { return w.height }

func (w *Waves) SetHeight(h float32) {
	if h < 0 {
		h = 0
	}
	w.height = h
}

// Apply writes the wave uniforms into u.
func (w *Waves) Apply(u *renderer.Uniforms) {
	u.SetInt("waveCount", MaxWaves)
	for i, wave := range w.waves {
		u.SetVec3(fmt.Sprintf("waveDirections[%d]", i), mgl32.Vec3{wave.Direction.X(), 0, wave.Direction.Y()})
		u.SetFloat(fmt.Sprintf("waveAmplitudes[%d]", i), wave.Amplitude*w.height)
		u.SetFloat(fmt.Sprintf("waveFrequencies[%d]", i), wave.Frequency)
		u.SetFloat(fmt.Sprintf("waveSpeeds[%d]", i), wave.Speed)
		u.SetFloat(fmt.Sprintf("wavePhases[%d]", i), wave.Phase)
		u.SetFloat(fmt.Sprintf("waveSteepness[%d]", i), wave.Steepness)
	}
}

// Displace returns the offset of the surface point above world (x, z) at time t, and its normal.
func (w *Waves) Displace(x, z, t float32) (offset, normal mgl32.Vec3) {
	normal = mgl32.Vec3{0, 1, 0}
	for _, wave := range w.waves {
		a := wave.Amplitude * w.height
		k := wave.Frequency
		d := wave.Direction
		theta := k*(d.X()*x+d.Y()*z) + wave.Speed*t + wave.Phase
		c, s := math32.Cos(theta), math32.Sin(theta)

		offset[0] += wave.Steepness * a * d.X() * c
		offset[2] += wave.Steepness * a * d.Y() * c
		offset[1] += a * s

		normal[0] -= d.X() * k * a * c
		normal[2] -= d.Y() * k * a * c
		normal[1] -= wave.Steepness * k * a * s
	}
	return offset, normal.Normalize()
}

// Bind registers water.waveHeight, which rescales the waves written to u.
func (w *Waves) Bind(r *binding.Registry, u *renderer.Uniforms) error {
	return r.BindFloat(binding.Control{ID: "water.waveHeight", Label: "Wave height", Group: "water", Min: 0, Max: 3, Step: 0.05, Default: binding.FloatValue(float64(w.height))},
		func(v float64) error {
			w.SetHeight(float32(v))
			w.Apply(u)
			return nil
		})
}
