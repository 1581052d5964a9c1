package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 640
camera:
  fov: 60
drag:
  idleTimeout: 2s
environment:
  elevation: 30
  waterColor: 0x112233
controls:
  cube.boxWidth: 3
  cube.color: "#ff0000"
  animation.spin: false
`))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height)
	assert.Equal(t, float32(60), cfg.Camera.Fov)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
	assert.Equal(t, 2*time.Second, cfg.Drag.IdleTimeout)
	assert.Equal(t, 30.0, cfg.Environment.Elevation)
	assert.Equal(t, 180.0, cfg.Environment.Azimuth)
	assert.Equal(t, uint32(0x112233), cfg.Environment.WaterColor)
	assert.Equal(t, []string{"animation.spin", "cube.boxWidth", "cube.color"}, cfg.ControlIDs())
	assert.Equal(t, false, cfg.Controls["animation.spin"])
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("windw:\n  width: 10\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateAggregates(t *testing.T) {
	_, err := Parse([]byte(`
window: {width: 0}
camera: {near: 5, far: 1}
frame: {targetFPS: 0}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "clip planes")
	assert.Contains(t, err.Error(), "targetFPS")
}

func TestFramePeriod(t *testing.T) {
	cfg := Default()
	cfg.Frame.TargetFPS = 50
	assert.Equal(t, 20*time.Millisecond, cfg.FramePeriod())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livescene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controls: {animation.spin: true}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu   sync.Mutex
		seen []*Config
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			mu.Lock()
			seen = append(seen, c)
			mu.Unlock()
		})
	}()

	// the watcher registers asynchronously; keep rewriting until the new value is observed
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("controls: {cube.boxWidth: 3}\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		for _, c := range seen {
			if c.Controls["cube.boxWidth"] == 3 {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
