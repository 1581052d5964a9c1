package controls

import (
	"testing"
	"time"

	"LiveScene/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestOrbitSyncKeepsDistance(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	o := NewOrbitController(cam, DefaultOrbitConfig())

	o.Rotate(100, 40)
	for i := 0; i < 30; i++ {
		o.Update(16 * time.Millisecond)
	}
	assert.InDelta(t, 2, cam.Position.Sub(cam.Target).Len(), 1e-4)
	assert.NotEqual(t, mgl32.Vec3{0, 0, 2}, cam.Position)
}

func TestOrbitDampingDecays(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	o := NewOrbitController(cam, DefaultOrbitConfig())

	o.Rotate(100, 0)
	o.Update(16 * time.Millisecond)
	assert.True(t, o.Moving())
	for i := 0; i < 500; i++ {
		o.Update(16 * time.Millisecond)
	}
	assert.False(t, o.Moving())
}

func TestOrbitWithoutDampingStopsImmediately(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := DefaultOrbitConfig()
	cfg.EnableDamping = false
	o := NewOrbitController(cam, cfg)

	o.Rotate(100, 0)
	o.Update(16 * time.Millisecond)
	pos := cam.Position
	assert.False(t, o.Moving())

	o.Update(16 * time.Millisecond)
	assert.Equal(t, pos, cam.Position)
}

func TestOrbitZoomClampsDistance(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := DefaultOrbitConfig()
	cfg.EnableDamping = false
	o := NewOrbitController(cam, cfg)

	for i := 0; i < 50; i++ {
		o.Zoom(5)
		o.Update(0)
	}
	assert.InDelta(t, cfg.MinDistance, cam.Position.Sub(cam.Target).Len(), 1e-4)
}

func TestOrbitElevationClamped(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := DefaultOrbitConfig()
	cfg.EnableDamping = false
	o := NewOrbitController(cam, cfg)

	o.Rotate(0, 100000)
	o.Update(0)
	offset := cam.Position.Sub(cam.Target).Normalize()
	assert.Less(t, offset.Y(), float32(1))
	assert.Greater(t, offset.Y(), float32(0.99))
}

func TestOrbitPanMovesTarget(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := DefaultOrbitConfig()
	cfg.EnableDamping = false
	o := NewOrbitController(cam, cfg)

	o.Pan(-100, 0)
	o.Update(0)
	assert.Greater(t, cam.Target.X(), float32(0))
	assert.InDelta(t, 2, cam.Position.Sub(cam.Target).Len(), 1e-4)
}
