package binding

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"LiveScene/internal/geometry"
	"LiveScene/internal/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackend struct {
	*renderer.SoftwareBackend
	creates, disposes int
	failCreate        bool
	failDispose       bool
}

func (c *countingBackend) CreateGeometry(g *geometry.Geometry) (renderer.GeometryHandle, error) {
	if c.failCreate {
		return renderer.GeometryHandle{}, errors.New("out of video memory")
	}
	c.creates++
	return c.SoftwareBackend.CreateGeometry(g)
}

func (c *countingBackend) DisposeGeometry(h renderer.GeometryHandle) error {
	c.disposes++
	if c.failDispose {
		return errors.New("driver busy")
	}
	return c.SoftwareBackend.DisposeGeometry(h)
}

func newBoundScene(t *testing.T) (*renderer.Scene, *Registry, *countingBackend) {
	t.Helper()
	backend := &countingBackend{SoftwareBackend: renderer.NewSoftwareBackend(32, 32)}
	scene := renderer.NewScene(backend)
	r := NewRegistry()

	cube := renderer.NewModel("cube", geometry.DefaultBox())
	cube.SetColorHex(0x44aa88)
	require.NoError(t, scene.AddObject(cube))
	require.NoError(t, scene.AddObject(renderer.NewModel("ball", geometry.DefaultSphere())))
	require.NoError(t, scene.AddObject(renderer.NewModel("ground", geometry.DefaultTerrain())))

	require.NoError(t, BindBox(r, scene, "cube"))
	require.NoError(t, BindMaterial(r, scene, "cube"))
	require.NoError(t, BindSphere(r, scene, "ball"))
	require.NoError(t, BindTerrain(r, scene, "ground"))

	backend.creates, backend.disposes = 0, 0
	return scene, r, backend
}

func TestBoxWidthEditSwapsGeometryOnce(t *testing.T) {
	scene, r, backend := newBoundScene(t)
	cube := scene.Object("cube")
	before, _ := cube.Geometry()

	require.NoError(t, r.Dispatch("cube.boxWidth", 3))

	assert.Equal(t, 1, backend.disposes)
	assert.Equal(t, 1, backend.creates)

	after, ok := cube.Geometry()
	require.True(t, ok)
	assert.NotEqual(t, before.ID, after.ID)
	w, h, d := after.Size()
	assert.Equal(t, float32(3), w)
	assert.Equal(t, float32(1), h)
	assert.Equal(t, float32(1), d)
	assert.Equal(t, uint(0x44aa88), cube.ColorHex())
	assert.Equal(t, float32(3), cube.Params.(geometry.BoxParams).Width)
}

func TestUnchangedRecordSkipsRebuild(t *testing.T) {
	_, r, backend := newBoundScene(t)

	require.NoError(t, r.Dispatch("cube.boxWidth", 1))
	// clamped into the control range, which is also the current value
	require.NoError(t, r.Dispatch("cube.widthSegments", 0))

	assert.Zero(t, backend.creates)
	assert.Zero(t, backend.disposes)
}

func TestFailedUploadKeepsOldGeometry(t *testing.T) {
	scene, r, backend := newBoundScene(t)
	cube := scene.Object("cube")
	before, _ := cube.Geometry()

	backend.failCreate = true
	err := r.Dispatch("cube.boxWidth", 4)
	assert.ErrorIs(t, err, ErrGeometrySwap)

	after, _ := cube.Geometry()
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, float32(1), cube.Params.(geometry.BoxParams).Width, "record rolled back")
	assert.Zero(t, backend.disposes)

	v, _ := r.Value("cube.boxWidth")
	assert.Equal(t, 1.0, v.Float)
}

func TestFailedReleaseStillAppliesEdit(t *testing.T) {
	scene, r, backend := newBoundScene(t)
	cube := scene.Object("cube")

	backend.failDispose = true
	err := r.Dispatch("cube.boxWidth", 3)
	assert.ErrorIs(t, err, renderer.ErrDisposeFailed)
	assert.NotErrorIs(t, err, ErrGeometrySwap)

	v, _ := r.Value("cube.boxWidth")
	assert.Equal(t, 3.0, v.Float)
	assert.Equal(t, float32(3), cube.Params.(geometry.BoxParams).Width)
	bound, _ := cube.Geometry()
	w, _, _ := bound.Size()
	assert.Equal(t, float32(3), w)
	assert.Equal(t, 1, scene.Orphans())

	backend.failDispose = false
	require.NoError(t, r.Dispatch("cube.boxWidth", 3))
	assert.Equal(t, 1, backend.creates, "same value is a no-op")

	require.NoError(t, scene.Dispose())
	assert.Zero(t, scene.Orphans())
	assert.Zero(t, backend.LiveGeometries())
}

func TestMaterialEditsLeaveGeometryAlone(t *testing.T) {
	scene, r, backend := newBoundScene(t)
	cube := scene.Object("cube")

	require.NoError(t, r.Dispatch("cube.color", "#ff0000"))
	require.NoError(t, r.Dispatch("cube.wireframe", true))
	require.NoError(t, r.Dispatch("cube.visible", false))
	require.NoError(t, r.Dispatch("cube.opacity", 2))
	require.NoError(t, r.Dispatch("cube.metalness", 0.8))

	assert.Equal(t, uint(0xff0000), cube.ColorHex())
	assert.True(t, cube.Material.Wireframe)
	assert.False(t, cube.Visible)
	assert.Equal(t, float32(1), cube.Material.Alpha)
	assert.InDelta(t, 0.8, cube.Material.Metallic, 1e-6)
	assert.Zero(t, backend.creates+backend.disposes)
}

func TestBindingWrongShapeFails(t *testing.T) {
	scene, r, _ := newBoundScene(t)
	assert.Error(t, BindSphere(r, scene, "cube"))
	assert.Error(t, BindBox(r, scene, "missing"))
}

func TestRandomizedEditsNeverLeakHandles(t *testing.T) {
	scene, r, backend := newBoundScene(t)
	rng := rand.New(rand.NewSource(42))

	var geometryControls []Control
	for _, c := range r.Controls() {
		if c.Kind == Float || c.Kind == Int {
			geometryControls = append(geometryControls, c)
		}
	}
	require.NotEmpty(t, geometryControls)

	for i := 0; i < 1000; i++ {
		c := geometryControls[rng.Intn(len(geometryControls))]
		// values deliberately overshoot the range on both sides
		raw := c.Min - 1 + rng.Float64()*(c.Max-c.Min+2)
		backend.failCreate = rng.Intn(10) == 0

		err := r.Dispatch(c.ID, raw)
		if err != nil {
			require.ErrorIs(t, err, ErrGeometrySwap, fmt.Sprintf("edit %d on %s", i, c.ID))
		}
		require.Equal(t, len(scene.Objects()), backend.LiveGeometries(), "edit %d", i)
		require.Equal(t, len(scene.Objects()), scene.LiveHandles(), "edit %d", i)
	}
	assert.Equal(t, backend.creates, backend.disposes)
}
