package renderer

import (
	"errors"

	"LiveScene/internal/geometry"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownObject   = errors.New("renderer: unknown object")
	ErrDuplicateObject = errors.New("renderer: duplicate object id")
	ErrUnknownHandle   = errors.New("renderer: unknown geometry handle")
	ErrSceneDisposed   = errors.New("renderer: scene disposed")
	// ErrDisposeFailed reports a handle the backend refused to release. The scene keeps it and retries
	// at Dispose.
	ErrDisposeFailed = errors.New("renderer: dispose geometry failed")
	// ErrContextLost is returned by Render when the backend can no longer draw. It is terminal.
	ErrContextLost = errors.New("renderer: rendering context lost")
)

// Backend is the GPU-side collaborator. Every method is called from the goroutine that owns the scene.
type Backend interface {
	CreateGeometry(g *geometry.Geometry) (GeometryHandle, error)
	DisposeGeometry(h GeometryHandle) error
	Resize(width, height int)
	Render(scene *Scene, camera *Camera) error
	Close() error
}

// GeometryHandle refers to vertex data uploaded to a backend. The zero value is not a live handle.
type GeometryHandle struct {
	ID        uint32
	Vertices  int
	Triangles int
	Bounds    math32.Box3
}

func (h GeometryHandle) Valid() bool { return h.ID != 0 }

// Size returns the bounding box extent of the uploaded geometry.
func (h GeometryHandle) Size() (width, height, depth float32) {
	return h.Bounds.Max.X - h.Bounds.Min.X,
		h.Bounds.Max.Y - h.Bounds.Min.Y,
		h.Bounds.Max.Z - h.Bounds.Min.Z
}

func handleFor(id uint32, g *geometry.Geometry) GeometryHandle {
	return GeometryHandle{
		ID:        id,
		Vertices:  g.VertexCount(),
		Triangles: g.TriangleCount(),
		Bounds:    g.Bounds,
	}
}

type LightMode int

const (
	DirectionalLight LightMode = iota
	AmbientLight
)

type Light struct {
	Name      string
	Mode      LightMode
	Position  mgl32.Vec3 // directional lights shine from Position toward the origin
	Color     mgl32.Vec3
	Intensity float32
}

// Direction is the unit vector light travels along. Ambient lights return the zero vector.
func (l *Light) Direction() mgl32.Vec3 {
	if l.Mode != DirectionalLight || l.Position.Len() == 0 {
		return mgl32.Vec3{}
	}
	return l.Position.Normalize().Mul(-1)
}

// handleTable hands out non-zero ids for backend resources and tracks which are still live.
type handleTable[T any] struct {
	next uint32
	live map[uint32]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{live: make(map[uint32]T)}
}

func (t *handleTable[T]) add(v T) uint32 {
	t.next++
	t.live[t.next] = v
	return t.next
}

func (t *handleTable[T]) get(id uint32) (T, bool) {
	v, ok := t.live[id]
	return v, ok
}

func (t *handleTable[T]) remove(id uint32) (T, error) {
	v, ok := t.live[id]
	if !ok {
		return v, ErrUnknownHandle
	}
	delete(t.live, id)
	return v, nil
}

func (t *handleTable[T]) len() int { return len(t.live) }
