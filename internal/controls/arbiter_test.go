package controls

import (
	"testing"
	"time"

	"LiveScene/internal/binding"
	"LiveScene/internal/geometry"
	"LiveScene/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArbiter(t *testing.T) (*Arbiter, *renderer.Scene, *renderer.Camera) {
	t.Helper()
	scene := renderer.NewScene(renderer.NewSoftwareBackend(8, 8))
	for _, id := range []string{"cube", "cube-left"} {
		require.NoError(t, scene.AddObject(renderer.NewModel(id, geometry.DefaultBox())))
	}
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := DefaultOrbitConfig()
	cfg.AutoRotate = true
	return NewArbiter(scene, cam, cfg), scene, cam
}

func TestArbiterStartsInOrbit(t *testing.T) {
	a, _, _ := newArbiter(t)
	assert.Equal(t, OrbitActive, a.State())
	assert.Equal(t, "", a.Dragged())
}

func TestCameraFrozenWhileDragging(t *testing.T) {
	a, _, cam := newArbiter(t)
	a.OrbitRotate(200, 50)

	require.NoError(t, a.DragStart("cube"))
	require.Equal(t, DragActive, a.State())
	pos, target := cam.Position, cam.Target

	for i := 0; i < 100; i++ {
		a.OrbitRotate(10, 10)
		a.OrbitZoom(1)
		a.OrbitPan(5, 5)
		a.DragMove(3, -2)
		a.Update(16 * time.Millisecond)
		require.Equal(t, pos, cam.Position, "update %d", i)
		require.Equal(t, target, cam.Target, "update %d", i)
	}
}

func TestDragStartResetsOrbitMotion(t *testing.T) {
	a, _, cam := newArbiter(t)
	a.Orbit().SetAutoRotate(false)
	a.OrbitRotate(500, 0)

	require.NoError(t, a.DragStart("cube"))
	a.DragEnd()

	pos := cam.Position
	a.Update(16 * time.Millisecond)
	assert.Equal(t, pos, cam.Position, "velocity from before the drag is gone")
}

func TestFirstDragWins(t *testing.T) {
	a, _, _ := newArbiter(t)
	var transitions []State
	a.OnStateChange = func(s State) { transitions = append(transitions, s) }

	require.NoError(t, a.DragStart("cube"))
	require.NoError(t, a.DragStart("cube-left"))
	require.NoError(t, a.DragStart("cube"))

	assert.Equal(t, "cube", a.Dragged())
	assert.Equal(t, []State{DragActive}, transitions)
}

func TestDragStartUnknownObject(t *testing.T) {
	a, _, _ := newArbiter(t)
	assert.ErrorIs(t, a.DragStart("ghost"), renderer.ErrUnknownObject)
	assert.Equal(t, OrbitActive, a.State())
}

func TestDragEndFallbacks(t *testing.T) {
	for name, end := range map[string]func(*Arbiter){
		"drag end":      (*Arbiter).DragEnd,
		"pointer up":    (*Arbiter).PointerUp,
		"pointer leave": (*Arbiter).PointerLeave,
	} {
		t.Run(name, func(t *testing.T) {
			a, _, _ := newArbiter(t)
			require.NoError(t, a.DragStart("cube"))
			end(a)
			assert.Equal(t, OrbitActive, a.State())
			assert.Equal(t, "", a.Dragged())
		})
	}
}

func TestDragIdleTimeout(t *testing.T) {
	a, _, _ := newArbiter(t)
	a.IdleTimeout = 100 * time.Millisecond
	require.NoError(t, a.DragStart("cube"))

	a.Update(60 * time.Millisecond)
	a.DragMove(1, 0)
	a.Update(60 * time.Millisecond)
	assert.Equal(t, DragActive, a.State(), "activity resets the idle clock")

	a.Update(60 * time.Millisecond)
	assert.Equal(t, OrbitActive, a.State())
}

func TestOrbitResumesAfterDrag(t *testing.T) {
	a, _, cam := newArbiter(t)
	require.NoError(t, a.DragStart("cube"))
	a.PointerUp()

	pos := cam.Position
	a.Update(100 * time.Millisecond)
	assert.NotEqual(t, pos, cam.Position, "auto-rotate moves the camera again")
}

func TestDragMovesObjectInScreenPlane(t *testing.T) {
	a, scene, cam := newArbiter(t)
	cube := scene.Object("cube")
	require.NoError(t, a.DragStart("cube"))

	// half the surface height at depth 2 spans tan(fov/2)*2 world units
	a.DragMove(0, -300)
	want := 2 * float32(0.7673269879789604)
	assert.InDelta(t, want, cube.Position.Y(), 1e-4)
	assert.InDelta(t, 0, cube.Position.Z(), 1e-6)

	a.DragMove(300, 300)
	assert.InDelta(t, want, cube.Position.X(), 1e-4)
	assert.InDelta(t, 0, cube.Position.Y(), 1e-4)
	assert.Equal(t, mgl32.Vec3{0, 0, 2}, cam.Position)
}

func TestDragMoveIgnoredInOrbit(t *testing.T) {
	a, scene, _ := newArbiter(t)
	a.DragMove(100, 100)
	assert.Equal(t, mgl32.Vec3{}, scene.Object("cube").Position)
}

func TestArbiterBindings(t *testing.T) {
	a, _, _ := newArbiter(t)
	r := binding.NewRegistry()
	require.NoError(t, a.Bind(r))

	require.NoError(t, r.Dispatch("orbit.autoRotate", false))
	require.NoError(t, r.Dispatch("orbit.dampingFactor", 0.5))
	require.NoError(t, r.Dispatch("orbit.damping", false))

	cfg := a.Orbit().Config()
	assert.False(t, cfg.AutoRotate)
	assert.False(t, cfg.EnableDamping)
	assert.Equal(t, float32(0.5), cfg.DampingFactor)
}
