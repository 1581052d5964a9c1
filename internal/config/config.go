// Package config loads the YAML configuration shared by the hosts.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"LiveScene/internal/controls"
	"LiveScene/internal/environment"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
}

type Camera struct {
	Fov      float32    `yaml:"fov"` // degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
}

type Drag struct {
	IdleTimeout time.Duration `yaml:"idleTimeout"`
}

type Frame struct {
	MaxFrameDelta time.Duration `yaml:"maxFrameDelta"`
	// TargetFPS paces hosts that drive the loop from a ticker.
	TargetFPS int `yaml:"targetFPS"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Window      Window                 `yaml:"window"`
	Camera      Camera                 `yaml:"camera"`
	Orbit       controls.OrbitConfig   `yaml:"orbit"`
	Drag        Drag                   `yaml:"drag"`
	Frame       Frame                  `yaml:"frame"`
	Environment environment.Parameters `yaml:"environment"`
	Log         Log                    `yaml:"log"`
	Behaviours  []string               `yaml:"behaviours"`
	// Controls maps control ids to values dispatched through the registry after start-up and after
	// every reload.
	Controls map[string]interface{} `yaml:"controls"`
}

func Default() *Config {
	return &Config{
		Window: Window{Width: 1024, Height: 768, Title: "LiveScene", X: 100, Y: 100},
		Camera: Camera{Fov: 75, Near: 0.1, Far: 1000, Position: [3]float32{0, 0, 2}},
		Orbit:  controls.DefaultOrbitConfig(),
		Drag:   Drag{IdleTimeout: controls.DefaultDragIdleTimeout},
		Frame:  Frame{MaxFrameDelta: 100 * time.Millisecond, TargetFPS: 60},

		Environment: environment.DefaultParameters(),
		Log:         Log{Level: "info"},
		Behaviours:  []string{"spin"},
		Controls:    map[string]interface{}{},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Controls == nil {
		cfg.Controls = map[string]interface{}{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		err = multierr.Append(err, fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.Fov))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		err = multierr.Append(err, fmt.Errorf("%w: camera clip planes %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far))
	}
	if c.Orbit.MinDistance <= 0 || c.Orbit.MaxDistance < c.Orbit.MinDistance {
		err = multierr.Append(err, fmt.Errorf("%w: orbit distance %v..%v", ErrInvalidConfig, c.Orbit.MinDistance, c.Orbit.MaxDistance))
	}
	if c.Frame.MaxFrameDelta <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: maxFrameDelta %v", ErrInvalidConfig, c.Frame.MaxFrameDelta))
	}
	if c.Frame.TargetFPS <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: targetFPS %d", ErrInvalidConfig, c.Frame.TargetFPS))
	}
	return err
}

// ControlIDs returns the override ids in a stable order.
func (c *Config) ControlIDs() []string {
	ids := make([]string, 0, len(c.Controls))
	for id := range c.Controls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FramePeriod is the ticker period for TargetFPS.
func (c *Config) FramePeriod() time.Duration {
	return time.Second / time.Duration(c.Frame.TargetFPS)
}
