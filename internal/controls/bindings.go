package controls

import (
	"LiveScene/internal/binding"
)

// Bind registers the orbit controls.
func (a *Arbiter) Bind(r *binding.Registry) error {
	cfg := a.orbit.Config()
	if err := r.BindBool(binding.Control{ID: "orbit.damping", Label: "Damping", Group: "orbit", Default: binding.BoolValue(cfg.EnableDamping)},
		func(v bool) error {
			a.orbit.SetDamping(v, a.orbit.Config().DampingFactor)
			return nil
		}); err != nil {
		return err
	}
	if err := r.BindFloat(binding.Control{ID: "orbit.dampingFactor", Label: "Damping factor", Group: "orbit", Min: 0.01, Max: 1, Step: 0.01, Default: binding.FloatValue(float64(cfg.DampingFactor))},
		func(v float64) error {
			a.orbit.SetDamping(a.orbit.Config().EnableDamping, float32(v))
			return nil
		}); err != nil {
		return err
	}
	if err := r.BindBool(binding.Control{ID: "orbit.autoRotate", Label: "Auto rotate", Group: "orbit", Default: binding.BoolValue(cfg.AutoRotate)},
		func(v bool) error {
			a.orbit.SetAutoRotate(v)
			return nil
		}); err != nil {
		return err
	}
	return r.BindFloat(binding.Control{ID: "orbit.autoRotateSpeed", Label: "Auto rotate speed", Group: "orbit", Min: -3, Max: 3, Step: 0.05, Default: binding.FloatValue(float64(cfg.AutoRotateSpeed))},
		func(v float64) error {
			a.orbit.SetAutoRotateSpeed(float32(v))
			return nil
		})
}
