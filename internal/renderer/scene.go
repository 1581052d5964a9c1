package renderer

import (
	"fmt"

	"LiveScene/internal/geometry"
	"LiveScene/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Scene is the mutable scene graph. It is not safe for concurrent use; the session goroutine owns it.
type Scene struct {
	backend Backend
	objects map[string]*Model
	order   []string
	orphans []GeometryHandle

	// Sky holds the environment's sky uniform set. Backends clear to its skyColor.
	Sky      *Uniforms
	Lights   []*Light
	Exposure float32

	disposed bool
}

func NewScene(backend Backend) *Scene {
	return &Scene{
		backend:  backend,
		objects:  make(map[string]*Model),
		Sky:      NewUniforms(),
		Exposure: 1,
	}
}

// AddObject builds the model's geometry from its parameter record, uploads it and registers the model.
func (s *Scene) AddObject(m *Model) error {
	if s.disposed {
		return ErrSceneDisposed
	}
	if _, ok := s.objects[m.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateObject, m.ID)
	}

	params := geometry.Clamp(m.Params)
	h, err := s.backend.CreateGeometry(geometry.Build(params.Kind(), params))
	if err != nil {
		return fmt.Errorf("create geometry for %q: %w", m.ID, err)
	}
	m.Params = params
	m.geometry = h
	m.hasGeometry = true
	m.IsDirty = true

	s.objects[m.ID] = m
	s.order = append(s.order, m.ID)
	logger.Log.Debug("Object added", zap.String("object", m.ID), zap.Stringer("kind", params.Kind()), zap.Int("vertices", h.Vertices))
	return nil
}

func (s *Scene) RemoveObject(id string) error {
	m, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	var err error
	if m.hasGeometry {
		err = s.release(id, m.geometry)
		m.geometry = GeometryHandle{}
		m.hasGeometry = false
	}
	delete(s.objects, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return err
}

// CreateGeometry uploads g through the scene's backend. The handle is not bound to any object until it
// is passed to ReplaceGeometry.
func (s *Scene) CreateGeometry(g *geometry.Geometry) (GeometryHandle, error) {
	if s.disposed {
		return GeometryHandle{}, ErrSceneDisposed
	}
	return s.backend.CreateGeometry(g)
}

// ReplaceGeometry releases the object's current handle and binds h in its place. Transform and material
// are left untouched. h is bound even when the old handle cannot be released; that failure is returned
// wrapping ErrDisposeFailed and the old handle is retried at Dispose.
func (s *Scene) ReplaceGeometry(id string, h GeometryHandle) error {
	if s.disposed {
		return ErrSceneDisposed
	}
	m, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}

	var err error
	if m.hasGeometry {
		err = s.release(id, m.geometry)
	}
	m.geometry = h
	m.hasGeometry = true
	m.IsDirty = true
	return err
}

// release disposes h, keeping it as an orphan when the backend refuses.
func (s *Scene) release(id string, h GeometryHandle) error {
	derr := s.backend.DisposeGeometry(h)
	if derr == nil {
		return nil
	}
	logger.Log.Error("Failed to dispose geometry", zap.String("object", id), zap.Uint32("handle", h.ID), zap.Error(derr))
	s.orphans = append(s.orphans, h)
	return fmt.Errorf("%w: object %q handle %d: %w", ErrDisposeFailed, id, h.ID, derr)
}

// Orphans counts handles that failed to dispose and are still owned by the scene.
func (s *Scene) Orphans() int { return len(s.orphans) }

// Object returns the model registered under id, or nil.
func (s *Scene) Object(id string) *Model {
	return s.objects[id]
}

// Objects returns the models in insertion order.
func (s *Scene) Objects() []*Model {
	out := make([]*Model, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// LiveHandles counts geometry handles currently bound to objects.
func (s *Scene) LiveHandles() int {
	n := 0
	for _, m := range s.objects {
		if m.hasGeometry {
			n++
		}
	}
	return n
}

func (s *Scene) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

// Light returns the first light with the given mode, or nil.
func (s *Scene) Light(mode LightMode) *Light {
	for _, l := range s.Lights {
		if l.Mode == mode {
			return l
		}
	}
	return nil
}

// ClearColor is the sky's zenith color, black without an environment.
func (s *Scene) ClearColor() mgl32.Vec3 {
	if c, ok := s.Sky.Vec3("skyColor"); ok {
		return c
	}
	return mgl32.Vec3{}
}

// Dispose releases every bound handle exactly once, then retries orphaned handles. Later calls return nil.
func (s *Scene) Dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true

	var err error
	for _, id := range s.order {
		m := s.objects[id]
		if !m.hasGeometry {
			continue
		}
		err = multierr.Append(err, s.backend.DisposeGeometry(m.geometry))
		m.geometry = GeometryHandle{}
		m.hasGeometry = false
	}
	for _, h := range s.orphans {
		err = multierr.Append(err, s.backend.DisposeGeometry(h))
	}
	s.orphans = nil
	logger.Log.Info("Scene disposed", zap.Int("objects", len(s.order)), zap.Error(err))
	return err
}

func (s *Scene) Disposed() bool { return s.disposed }
