// Package engine owns a live scene session and the frame loop that drives it.
//
// A Session is the explicit context for one scene: the scene graph, its camera, the environment model,
// the control registry, the pointer arbiter, per-frame behaviours and the frame loop. Every method must
// be called from the goroutine that owns the session; hosts with callbacks on other goroutines go
// through an EventQueue.
package engine

import (
	"fmt"
	"sort"

	"LiveScene/internal/behaviour"
	"LiveScene/internal/binding"
	"LiveScene/internal/config"
	"LiveScene/internal/controls"
	"LiveScene/internal/environment"
	"LiveScene/internal/geometry"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"
	"LiveScene/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Object ids of the default scene.
const (
	CubeID      = "cube"
	CubeLeftID  = "cube-left"
	CubeRightID = "cube-right"
	SphereID    = "sphere"
	SeabedID    = "seabed"
	WaterID     = "water"
)

type cubeSpec struct {
	id    string
	color uint
	x     float32
}

var defaultCubes = []cubeSpec{
	{CubeID, 0x44aa88, 0},
	{CubeLeftID, 0x8844aa, -2},
	{CubeRightID, 0xaa8844, 2},
}

type Options struct {
	Config    *config.Config
	Backend   renderer.Backend
	Surface   Surface
	Scheduler Scheduler
	// Scripts resolves Config.Behaviours; nil means behaviour.DefaultScripts.
	Scripts *behaviour.Scripts
	// OnFatal is called after a render failure has stopped the loop and closed the session.
	OnFatal func(error)
}

type Session struct {
	Scene       *renderer.Scene
	Camera      *renderer.Camera
	Environment *environment.Model
	Registry    *binding.Registry
	Arbiter     *controls.Arbiter
	Behaviours  *behaviour.Manager
	Waves       *water.Waves
	Loop        *FrameLoop

	backend  renderer.Backend
	closed   bool
	closeErr error
	onFatal  func(error)
}

// NewSession builds the default scene on opts.Backend and binds every control. The loop is not started.
// If any step fails, what was created so far is released.
func NewSession(opts Options) (s *Session, err error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	scripts := opts.Scripts
	if scripts == nil {
		scripts = behaviour.DefaultScripts()
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = &ManualScheduler{}
	}

	width, height := cfg.Window.Width, cfg.Window.Height
	if opts.Surface != nil {
		if w, h := opts.Surface.Size(); w > 0 && h > 0 {
			width, height = w, h
		}
	}

	cam := renderer.NewCamera(cfg.Camera.Fov, cfg.Camera.Near, cfg.Camera.Far, width, height)
	cam.Position = mgl32.Vec3(cfg.Camera.Position)

	s = &Session{
		Scene:       renderer.NewScene(opts.Backend),
		Camera:      cam,
		Environment: environment.New(cfg.Environment),
		Registry:    binding.NewRegistry(),
		Behaviours:  behaviour.NewManager(),
		Waves:       water.NewWaves(0.05),
		backend:     opts.Backend,
		onFatal:     opts.OnFatal,
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.Close())
			s = nil
		}
	}()

	s.Arbiter = controls.NewArbiter(s.Scene, cam, cfg.Orbit)
	s.Arbiter.IdleTimeout = cfg.Drag.IdleTimeout

	if err := s.populate(); err != nil {
		return s, err
	}
	s.Environment.Attach(s.Scene)

	cubes := make([]*renderer.Model, 0, len(defaultCubes))
	for _, c := range defaultCubes {
		cubes = append(cubes, s.Scene.Object(c.id))
	}
	for _, name := range cfg.Behaviours {
		b, err := scripts.Create(name, cubes)
		if err != nil {
			return s, err
		}
		s.Behaviours.Add(b)
		if bindable, ok := b.(interface{ Bind(*binding.Registry) error }); ok {
			if err := bindable.Bind(s.Registry); err != nil {
				return s, err
			}
		}
	}

	if err := s.bind(); err != nil {
		return s, err
	}
	// rejected overrides are logged by ApplyControls and do not prevent start-up
	_ = s.ApplyControls(cfg.Controls)

	s.Loop = &FrameLoop{
		backend:       opts.Backend,
		scene:         s.Scene,
		camera:        cam,
		env:           s.Environment,
		behaviours:    s.Behaviours,
		arbiter:       s.Arbiter,
		surface:       opts.Surface,
		scheduler:     scheduler,
		MaxFrameDelta: cfg.Frame.MaxFrameDelta,
		OnFatal:       s.fatal,
	}
	if s.Loop.surface == nil {
		s.Loop.surface = cameraSurface{cam}
	}

	logger.Log.Info("Session ready",
		zap.Int("objects", len(s.Scene.Objects())),
		zap.Int("controls", len(s.Registry.Controls())),
		zap.Int("behaviours", s.Behaviours.Len()))
	return s, nil
}

func (s *Session) populate() error {
	for _, c := range defaultCubes {
		m := renderer.NewModel(c.id, geometry.DefaultBox())
		m.SetColorHex(c.color)
		m.SetPosition(c.x, 0, 0)
		if err := s.Scene.AddObject(m); err != nil {
			return err
		}
	}

	sphere := renderer.NewModel(SphereID, geometry.DefaultSphere())
	sphere.SetColorHex(0xcccccc)
	sphere.SetMaterialPBR(0.3, 0.4)
	sphere.SetPosition(0, 1.5, -2)
	if err := s.Scene.AddObject(sphere); err != nil {
		return err
	}

	seabed := renderer.NewModel(SeabedID, geometry.DefaultTerrain())
	seabed.SetColorHex(0x8a7a55)
	seabed.SetMaterialPBR(0, 0.9)
	seabed.SetPosition(0, -3, 0)
	seabed.Pickable = false
	if err := s.Scene.AddObject(seabed); err != nil {
		return err
	}

	surface := renderer.NewModel(WaterID, geometry.DefaultPlane())
	surface.Shader = renderer.WaterShader
	surface.CustomUniforms = s.Environment.Water
	surface.SetPosition(0, -1, 0)
	s.Waves.Apply(s.Environment.Water)
	if err := s.Scene.AddObject(surface); err != nil {
		return err
	}

	s.Scene.AddLight(&renderer.Light{Name: "ambient", Mode: renderer.AmbientLight, Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.25})
	return nil
}

func (s *Session) bind() error {
	r := s.Registry
	var err error
	for _, c := range defaultCubes {
		err = multierr.Append(err, binding.BindBox(r, s.Scene, c.id))
		err = multierr.Append(err, binding.BindMaterial(r, s.Scene, c.id))
	}
	err = multierr.Append(err, binding.BindSphere(r, s.Scene, SphereID))
	err = multierr.Append(err, binding.BindMaterial(r, s.Scene, SphereID))
	err = multierr.Append(err, binding.BindTerrain(r, s.Scene, SeabedID))
	err = multierr.Append(err, binding.BindMaterial(r, s.Scene, SeabedID))
	err = multierr.Append(err, binding.BindPlane(r, s.Scene, WaterID))
	err = multierr.Append(err, s.Environment.Bind(r))
	err = multierr.Append(err, s.Waves.Bind(r, s.Environment.Water))
	err = multierr.Append(err, binding.BindCamera(r, s.Camera))
	err = multierr.Append(err, s.Arbiter.Bind(r))
	return err
}

// Dispatch forwards a panel edit to the registry.
func (s *Session) Dispatch(id string, value interface{}) error {
	if s.closed {
		return ErrClosed
	}
	return s.Registry.Dispatch(id, value)
}

// ApplyControls dispatches overrides in id order. Every override is attempted; failures are combined.
func (s *Session) ApplyControls(overrides map[string]interface{}) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var err error
	for _, id := range ids {
		if e := s.Dispatch(id, overrides[id]); e != nil {
			logger.Log.Warn("Control override rejected", zap.String("control", id), zap.Error(e))
			err = multierr.Append(err, fmt.Errorf("control %q: %w", id, e))
		}
	}
	return err
}

// Pick returns the id of the nearest object under the surface pixel (x, y), or "".
func (s *Session) Pick(x, y float32) string {
	w, h := s.Camera.SurfaceSize()
	m, _, ok := renderer.Pick(s.Scene, s.Camera, x, y, w, h)
	if !ok {
		return ""
	}
	return m.ID
}

func (s *Session) Start() error {
	if s.closed {
		return ErrClosed
	}
	s.Loop.Start()
	return nil
}

func (s *Session) Closed() bool { return s.closed }

// Close stops the loop and releases every GPU resource exactly once. Later calls return the first
// call's result.
func (s *Session) Close() error {
	if s.closed {
		return s.closeErr
	}
	s.closed = true

	if s.Loop != nil {
		s.Loop.Stop()
	}
	err := s.Scene.Dispose()
	if s.backend != nil {
		err = multierr.Append(err, s.backend.Close())
	}
	s.closeErr = err
	if err != nil {
		logger.Log.Error("Session closed with errors", zap.Error(err))
	} else {
		logger.Log.Info("Session closed")
	}
	return err
}

func (s *Session) fatal(err error) {
	closeErr := s.Close()
	if s.onFatal != nil {
		s.onFatal(multierr.Append(err, closeErr))
	}
}

// cameraSurface reports the camera's last known size, for hosts that push sizes themselves.
type cameraSurface struct{ cam *renderer.Camera }

func (c cameraSurface) Size() (int, int) { return c.cam.SurfaceSize() }
