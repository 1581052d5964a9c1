package binding

import (
	"LiveScene/internal/renderer"
)

// BindCamera registers field of view and clip plane controls. The near plane is kept in front of the
// far plane whichever one is edited.
func BindCamera(r *Registry, cam *renderer.Camera) error {
	return firstErr(
		r.BindFloat(Control{ID: "camera.fov", Label: "Field of view", Group: "camera", Min: 10, Max: 120, Step: 1, Default: FloatValue(float64(cam.Fov))},
			func(v float64) error {
				cam.SetFov(float32(v))
				return nil
			}),
		r.BindFloat(Control{ID: "camera.near", Label: "Near", Group: "camera", Min: 0.01, Max: 10, Step: 0.01, Default: FloatValue(float64(cam.Near))},
			func(v float64) error {
				near := float32(v)
				if near >= cam.Far {
					near = cam.Far * 0.5
				}
				cam.SetNear(near)
				return nil
			}),
		r.BindFloat(Control{ID: "camera.far", Label: "Far", Group: "camera", Min: 1, Max: 5000, Step: 1, Default: FloatValue(float64(cam.Far))},
			func(v float64) error {
				far := float32(v)
				if far <= cam.Near {
					far = cam.Near * 2
				}
				cam.SetFar(far)
				return nil
			}),
	)
}
