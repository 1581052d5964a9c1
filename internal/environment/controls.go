package environment

import (
	"LiveScene/internal/binding"
)

// Bind registers the environment controls. Every control runs the full sun -> sky -> water -> light
// update before returning.
func (m *Model) Bind(r *binding.Registry) error {
	p := m.params
	floats := []struct {
		id, label, group string
		def, lo, hi      float64
		set              func(float64)
	}{
		{"sky.elevation", "Elevation", "sky", p.Elevation, 0, 90, func(v float64) { m.SetSunAngles(v, m.params.Azimuth) }},
		{"sky.azimuth", "Azimuth", "sky", p.Azimuth, -180, 180, func(v float64) { m.SetSunAngles(m.params.Elevation, v) }},
		{"sky.turbidity", "Turbidity", "sky", p.Turbidity, 0, 20, m.SetTurbidity},
		{"sky.rayleigh", "Rayleigh", "sky", p.Rayleigh, 0, 4, m.SetRayleigh},
		{"sky.mieCoefficient", "Mie coefficient", "sky", p.MieCoefficient, 0, 0.1, m.SetMieCoefficient},
		{"sky.mieDirectionalG", "Mie directional G", "sky", p.MieDirectionalG, 0, 1, m.SetMieDirectionalG},
		{"light.intensity", "Sun intensity", "light", p.LightIntensity, 0, 10, m.SetLightIntensity},
		{"renderer.exposure", "Exposure", "renderer", p.Exposure, 0, 1, m.SetExposure},
		{"water.distortionScale", "Distortion scale", "water", p.DistortionScale, 0, 8, m.SetDistortionScale},
		{"water.waveSpeed", "Wave speed", "water", p.WaveSpeed, 0, 5, m.SetWaveSpeed},
	}
	for _, f := range floats {
		set := f.set
		c := binding.Control{ID: f.id, Label: f.label, Group: f.group, Min: f.lo, Max: f.hi, Step: (f.hi - f.lo) / 100, Default: binding.FloatValue(f.def)}
		if err := r.BindFloat(c, func(v float64) error { set(v); return nil }); err != nil {
			return err
		}
	}
	return r.BindColor(binding.Control{ID: "water.color", Label: "Water color", Group: "water", Default: binding.ColorValue(p.WaterColor)},
		func(c uint32) error { m.SetWaterColor(c); return nil })
}
