package renderer

import (
	"errors"
	"testing"

	"LiveScene/internal/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBackend wraps the software backend and fails disposes on demand.
type flakyBackend struct {
	*SoftwareBackend
	failDispose bool
	disposed    []uint32
}

func (f *flakyBackend) DisposeGeometry(h GeometryHandle) error {
	f.disposed = append(f.disposed, h.ID)
	if f.failDispose {
		return errors.New("driver refused")
	}
	return f.SoftwareBackend.DisposeGeometry(h)
}

func newTestScene(t *testing.T) (*Scene, *SoftwareBackend) {
	t.Helper()
	backend := NewSoftwareBackend(64, 48)
	scene := NewScene(backend)
	require.NoError(t, scene.AddObject(NewModel("cube", geometry.DefaultBox())))
	require.NoError(t, scene.AddObject(NewModel("ball", geometry.DefaultSphere())))
	return scene, backend
}

func TestAddObjectCreatesOneHandle(t *testing.T) {
	scene, backend := newTestScene(t)

	assert.Equal(t, 2, scene.LiveHandles())
	assert.Equal(t, 2, backend.LiveGeometries())

	h, ok := scene.Object("cube").Geometry()
	require.True(t, ok)
	assert.True(t, h.Valid())
	assert.Equal(t, 24, h.Vertices)

	ids := []string{}
	for _, m := range scene.Objects() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"cube", "ball"}, ids)
}

func TestAddObjectRejectsDuplicates(t *testing.T) {
	scene, backend := newTestScene(t)

	err := scene.AddObject(NewModel("cube", geometry.DefaultBox()))
	assert.ErrorIs(t, err, ErrDuplicateObject)
	assert.Equal(t, 2, backend.LiveGeometries())
}

func TestAddObjectClampsRecord(t *testing.T) {
	scene, _ := newTestScene(t)
	m := NewModel("flat", geometry.BoxParams{Width: -1, Height: 1, Depth: 1})

	require.NoError(t, scene.AddObject(m))
	assert.Equal(t, geometry.MinDimension, m.Params.(geometry.BoxParams).Width)
}

func TestReplaceGeometryDisposesThenBinds(t *testing.T) {
	scene, backend := newTestScene(t)
	cube := scene.Object("cube")
	cube.SetPosition(1, 2, 3)
	cube.SetColorHex(0x44aa88)
	old, _ := cube.Geometry()

	wide := geometry.Build(geometry.Box, geometry.BoxParams{Width: 3, Height: 1, Depth: 1, WidthSegments: 1, HeightSegments: 1, DepthSegments: 1})
	h, err := scene.CreateGeometry(wide)
	require.NoError(t, err)
	require.NoError(t, scene.ReplaceGeometry("cube", h))

	current, _ := cube.Geometry()
	assert.Equal(t, h.ID, current.ID)
	assert.NotEqual(t, old.ID, current.ID)
	w, _, _ := current.Size()
	assert.Equal(t, float32(3), w)

	// transform and material untouched
	assert.Equal(t, float32(2), cube.Position.Y())
	assert.Equal(t, uint(0x44aa88), cube.ColorHex())

	assert.Equal(t, 2, backend.LiveGeometries())
	assert.ErrorIs(t, backend.DisposeGeometry(old), ErrUnknownHandle, "old handle already released")
}

func TestReplaceGeometryUnknownObject(t *testing.T) {
	scene, _ := newTestScene(t)
	err := scene.ReplaceGeometry("nope", GeometryHandle{ID: 99})
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestReplaceGeometryBindsEvenWhenDisposeFails(t *testing.T) {
	backend := &flakyBackend{SoftwareBackend: NewSoftwareBackend(8, 8)}
	scene := NewScene(backend)
	require.NoError(t, scene.AddObject(NewModel("cube", geometry.DefaultBox())))

	h, err := scene.CreateGeometry(geometry.Build(geometry.Box, geometry.DefaultBox()))
	require.NoError(t, err)

	backend.failDispose = true
	err = scene.ReplaceGeometry("cube", h)
	assert.ErrorIs(t, err, ErrDisposeFailed)

	current, ok := scene.Object("cube").Geometry()
	assert.True(t, ok)
	assert.Equal(t, h.ID, current.ID)
	assert.Equal(t, 1, scene.Orphans())
	assert.Equal(t, 1, scene.LiveHandles())

	backend.failDispose = false
	require.NoError(t, scene.Dispose())
	assert.Zero(t, scene.Orphans())
	assert.Zero(t, backend.LiveGeometries())
}

func TestRemoveObject(t *testing.T) {
	scene, backend := newTestScene(t)

	require.NoError(t, scene.RemoveObject("cube"))
	assert.Nil(t, scene.Object("cube"))
	assert.Len(t, scene.Objects(), 1)
	assert.Equal(t, 1, backend.LiveGeometries())

	assert.ErrorIs(t, scene.RemoveObject("cube"), ErrUnknownObject)
}

func TestDisposeReleasesEveryHandleOnce(t *testing.T) {
	backend := &flakyBackend{SoftwareBackend: NewSoftwareBackend(8, 8)}
	scene := NewScene(backend)
	require.NoError(t, scene.AddObject(NewModel("a", geometry.DefaultBox())))
	require.NoError(t, scene.AddObject(NewModel("b", geometry.DefaultPlane())))

	require.NoError(t, scene.Dispose())
	require.NoError(t, scene.Dispose())

	assert.Len(t, backend.disposed, 2)
	assert.Equal(t, 0, scene.LiveHandles())
	assert.Equal(t, 0, backend.LiveGeometries())
	assert.ErrorIs(t, scene.AddObject(NewModel("c", geometry.DefaultBox())), ErrSceneDisposed)
	assert.ErrorIs(t, scene.ReplaceGeometry("a", GeometryHandle{ID: 1}), ErrSceneDisposed)
}

func TestDisposeAggregatesErrors(t *testing.T) {
	backend := &flakyBackend{SoftwareBackend: NewSoftwareBackend(8, 8)}
	scene := NewScene(backend)
	require.NoError(t, scene.AddObject(NewModel("a", geometry.DefaultBox())))
	require.NoError(t, scene.AddObject(NewModel("b", geometry.DefaultBox())))

	backend.failDispose = true
	err := scene.Dispose()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver refused")
	assert.Len(t, backend.disposed, 2, "every handle attempted")
}

func TestClearColorFollowsSky(t *testing.T) {
	scene, _ := newTestScene(t)
	assert.Equal(t, float32(0), scene.ClearColor().Len())
}
