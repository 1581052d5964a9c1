package geometry

import "fmt"

// Kind identifies the shape a parameter record describes.
type Kind int

const (
	Box Kind = iota
	Sphere
	Plane
	Terrain
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	case Plane:
		return "plane"
	case Terrain:
		return "terrain"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (
	// MinDimension is the smallest extent any shape may have.
	MinDimension float32 = 0.01
	// MaxDimension keeps vertex coordinates inside a sane float32 range.
	MaxDimension float32 = 100000
	// MaxSegments bounds tessellation so a rebuild stays cheap enough to run per edit.
	MaxSegments = 256
)

// Params is a shape-specific parameter record.
// Records are plain values; callers clamp them with Clamped before calling Build.
type Params interface {
	Kind() Kind
}

type BoxParams struct {
	Width, Height, Depth                         float32
	WidthSegments, HeightSegments, DepthSegments int
}

type SphereParams struct {
	Radius         float32
	WidthSegments  int
	HeightSegments int
}

// PlaneParams describes a flat grid lying in the XZ plane, centered at the origin.
type PlaneParams struct {
	Width, Depth                 float32
	WidthSegments, DepthSegments int
}

// TerrainParams is a plane displaced along Y by seeded Perlin noise.
type TerrainParams struct {
	Plane     PlaneParams
	Amplitude float32
	Frequency float32
	Seed      int64
}

func (BoxParams) Kind() Kind     { return Box }
func (SphereParams) Kind() Kind  { return Sphere }
func (PlaneParams) Kind() Kind   { return Plane }
func (TerrainParams) Kind() Kind { return Terrain }

// DefaultBox is the unit cube.
func DefaultBox() BoxParams {
	return BoxParams{Width: 1, Height: 1, Depth: 1, WidthSegments: 1, HeightSegments: 1, DepthSegments: 1}
}

func DefaultSphere() SphereParams {
	return SphereParams{Radius: 0.5, WidthSegments: 32, HeightSegments: 16}
}

func DefaultPlane() PlaneParams {
	return PlaneParams{Width: 20, Depth: 20, WidthSegments: 32, DepthSegments: 32}
}

func DefaultTerrain() TerrainParams {
	return TerrainParams{Plane: DefaultPlane(), Amplitude: 1, Frequency: 0.15, Seed: 1}
}

// Clamped returns a copy with every field moved into its valid range.
func (p BoxParams) Clamped() BoxParams {
	p.Width = clampDimension(p.Width)
	p.Height = clampDimension(p.Height)
	p.Depth = clampDimension(p.Depth)
	p.WidthSegments = clampSegments(p.WidthSegments, 1)
	p.HeightSegments = clampSegments(p.HeightSegments, 1)
	p.DepthSegments = clampSegments(p.DepthSegments, 1)
	return p
}

func (p SphereParams) Clamped() SphereParams {
	p.Radius = clampDimension(p.Radius)
	p.WidthSegments = clampSegments(p.WidthSegments, 3)
	p.HeightSegments = clampSegments(p.HeightSegments, 2)
	return p
}

func (p PlaneParams) Clamped() PlaneParams {
	p.Width = clampDimension(p.Width)
	p.Depth = clampDimension(p.Depth)
	p.WidthSegments = clampSegments(p.WidthSegments, 1)
	p.DepthSegments = clampSegments(p.DepthSegments, 1)
	return p
}

func (p TerrainParams) Clamped() TerrainParams {
	p.Plane = p.Plane.Clamped()
	if !(p.Amplitude >= 0) {
		p.Amplitude = 0
	}
	if p.Amplitude > MaxDimension {
		p.Amplitude = MaxDimension
	}
	if !(p.Frequency > 0) {
		p.Frequency = 0.001
	}
	return p
}

// Clamp dispatches to the record's own Clamped method.
func Clamp(p Params) Params {
	switch v := p.(type) {
	case BoxParams:
		return v.Clamped()
	case SphereParams:
		return v.Clamped()
	case PlaneParams:
		return v.Clamped()
	case TerrainParams:
		return v.Clamped()
	}
	return p
}

func clampDimension(v float32) float32 {
	// written so NaN falls into the first branch
	if !(v >= MinDimension) {
		return MinDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

func clampSegments(n, lo int) int {
	if n < lo {
		return lo
	}
	if n > MaxSegments {
		return MaxSegments
	}
	return n
}
