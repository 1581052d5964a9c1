package behaviour

import (
	"time"

	"LiveScene/internal/binding"
	"LiveScene/internal/renderer"
)

// Spin turns each object about its X and Y axes at 1 + 0.1*i radians per second, where i is the
// object's index. Spin time only advances while enabled, so pausing holds the current pose.
type Spin struct {
	objects []*renderer.Model
	elapsed time.Duration

	Enabled bool
	Speed   float64
}

func NewSpin(objects []*renderer.Model) *Spin {
	return &Spin{objects: objects, Enabled: true, Speed: 1}
}

func (s *Spin) Start() { s.apply() }

func (s *Spin) Update(dt time.Duration) {
	if !s.Enabled {
		return
	}
	s.elapsed += time.Duration(float64(dt) * s.Speed)
	s.apply()
}

func (s *Spin) Elapsed() time.Duration { return s.elapsed }

func (s *Spin) apply() {
	t := s.elapsed.Seconds()
	for i, m := range s.objects {
		rot := float32(t * (1 + float64(i)*0.1))
		m.SetRotation(rot, rot, m.Rotation.Z())
	}
}

// Bind registers animation.spin and animation.speed.
func (s *Spin) Bind(r *binding.Registry) error {
	if err := r.BindBool(binding.Control{ID: "animation.spin", Label: "Spin", Group: "animation", Default: binding.BoolValue(s.Enabled)},
		func(v bool) error {
			s.Enabled = v
			return nil
		}); err != nil {
		return err
	}
	return r.BindFloat(binding.Control{ID: "animation.speed", Label: "Spin speed", Group: "animation", Min: 0, Max: 5, Step: 0.1, Default: binding.FloatValue(s.Speed)},
		func(v float64) error {
			s.Speed = v
			return nil
		})
}
