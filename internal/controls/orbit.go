package controls

import (
	"time"

	"LiveScene/internal/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type OrbitConfig struct {
	RotateSpeed     float32 `yaml:"rotateSpeed"` // radians per pixel
	ZoomSpeed       float32 `yaml:"zoomSpeed"`   // fraction of distance per wheel step
	PanSpeed        float32 `yaml:"panSpeed"`    // distance-relative units per pixel
	EnableDamping   bool    `yaml:"enableDamping"`
	DampingFactor   float32 `yaml:"dampingFactor"` // share of velocity removed per update
	AutoRotate      bool    `yaml:"autoRotate"`
	AutoRotateSpeed float32 `yaml:"autoRotateSpeed"` // radians per second
	MinDistance     float32 `yaml:"minDistance"`
	MaxDistance     float32 `yaml:"maxDistance"`
	MinElevation    float32 `yaml:"minElevation"` // radians above the target's horizon
	MaxElevation    float32 `yaml:"maxElevation"`
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		RotateSpeed:     0.005,
		ZoomSpeed:       0.1,
		PanSpeed:        0.002,
		EnableDamping:   true,
		DampingFactor:   0.1,
		AutoRotateSpeed: 0.5,
		MinDistance:     0.5,
		MaxDistance:     500,
		MinElevation:    -math32.Pi/2 + 0.05,
		MaxElevation:    math32.Pi/2 - 0.05,
	}
}

// OrbitController moves the camera on a sphere around its target. Input accumulates velocity that
// Update applies and, with damping enabled, decays over the following updates.
type OrbitController struct {
	cfg    OrbitConfig
	camera *renderer.Camera

	radius    float32
	azimuth   float32 // around Y, 0 looks from +Z
	elevation float32 // from the horizontal plane

	velAzimuth, velElevation float32
	velZoom                  float32
	velPan                   mgl32.Vec2
}

func NewOrbitController(camera *renderer.Camera, cfg OrbitConfig) *OrbitController {
	o := &OrbitController{cfg: cfg, camera: camera}
	o.Sync()
	return o
}

// Sync re-reads the spherical coordinates from the camera.
func (o *OrbitController) Sync() {
	offset := o.camera.Position.Sub(o.camera.Target)
	o.radius = offset.Len()
	if o.radius == 0 {
		o.radius = o.cfg.MinDistance
	}
	o.azimuth = math32.Atan2(offset.X(), offset.Z())
	o.elevation = math32.Atan2(offset.Y(), math32.Sqrt(offset.X()*offset.X()+offset.Z()*offset.Z()))
}

func (o *OrbitController) Config() OrbitConfig { return o.cfg }

func (o *OrbitController) SetDamping(enabled bool, factor float32) {
	o.cfg.EnableDamping = enabled
	o.cfg.DampingFactor = clamp32(factor, 0.001, 1)
}

func (o *OrbitController) SetAutoRotate(enabled bool) { o.cfg.AutoRotate = enabled }

func (o *OrbitController) SetAutoRotateSpeed(v float32) { o.cfg.AutoRotateSpeed = v }

// Rotate takes a pointer delta in pixels.
func (o *OrbitController) Rotate(dx, dy float32) {
	o.velAzimuth -= dx * o.cfg.RotateSpeed
	o.velElevation += dy * o.cfg.RotateSpeed
}

// Zoom takes wheel steps; positive moves closer.
func (o *OrbitController) Zoom(steps float32) {
	o.velZoom += steps * o.cfg.ZoomSpeed
}

// Pan takes a pointer delta in pixels.
func (o *OrbitController) Pan(dx, dy float32) {
	o.velPan = o.velPan.Add(mgl32.Vec2{dx, dy})
}

// Reset drops any motion still in flight.
func (o *OrbitController) Reset() {
	o.velAzimuth, o.velElevation, o.velZoom = 0, 0, 0
	o.velPan = mgl32.Vec2{}
}

// Moving reports whether velocity remains to be applied.
func (o *OrbitController) Moving() bool {
	const eps = 1e-6
	return math32.Abs(o.velAzimuth) > eps || math32.Abs(o.velElevation) > eps ||
		math32.Abs(o.velZoom) > eps || o.velPan.Len() > eps
}

// Update applies one step of accumulated motion plus auto-rotation and writes the camera.
func (o *OrbitController) Update(dt time.Duration) {
	if o.cfg.AutoRotate {
		o.azimuth += o.cfg.AutoRotateSpeed * float32(dt.Seconds())
	}

	o.azimuth += o.velAzimuth
	o.elevation = clamp32(o.elevation+o.velElevation, o.cfg.MinElevation, o.cfg.MaxElevation)
	o.radius = clamp32(o.radius*(1-o.velZoom), o.cfg.MinDistance, o.cfg.MaxDistance)

	if o.velPan.Len() > 0 {
		scale := o.radius * o.cfg.PanSpeed
		shift := o.camera.Right().Mul(-o.velPan.X() * scale).Add(o.camera.ScreenUp().Mul(o.velPan.Y() * scale))
		o.camera.Target = o.camera.Target.Add(shift)
	}

	if o.cfg.EnableDamping {
		keep := 1 - o.cfg.DampingFactor
		o.velAzimuth *= keep
		o.velElevation *= keep
		o.velZoom *= keep
		o.velPan = o.velPan.Mul(keep)
	} else {
		o.Reset()
	}

	o.apply()
}

func (o *OrbitController) apply() {
	cosElev, sinElev := math32.Cos(o.elevation), math32.Sin(o.elevation)
	offset := mgl32.Vec3{
		o.radius * cosElev * math32.Sin(o.azimuth),
		o.radius * sinElev,
		o.radius * cosElev * math32.Cos(o.azimuth),
	}
	o.camera.Position = o.camera.Target.Add(offset)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
