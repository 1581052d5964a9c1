package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBoxCounts(t *testing.T) {
	g := Build(Box, DefaultBox())

	// six faces of one quad each
	assert.Equal(t, 24, g.VertexCount())
	assert.Equal(t, 12, g.TriangleCount())
	assert.Len(t, g.Normals, len(g.Positions))
	assert.Len(t, g.UVs, g.VertexCount()*2)
}

func TestBuildBoxSegments(t *testing.T) {
	g := Build(Box, BoxParams{Width: 2, Height: 1, Depth: 1, WidthSegments: 2, HeightSegments: 3, DepthSegments: 1})

	// x faces: (ds+1)(hs+1)=8, y faces: (ws+1)(ds+1)=6, z faces: (ws+1)(hs+1)=12
	assert.Equal(t, 2*(8+6+12), g.VertexCount())
	assert.Equal(t, 2*(1*3+2*1+2*3)*2, g.TriangleCount())
}

func TestBuildBoxBounds(t *testing.T) {
	g := Build(Box, BoxParams{Width: 3, Height: 1, Depth: 2, WidthSegments: 1, HeightSegments: 1, DepthSegments: 1})

	w, h, d := g.Size()
	assert.Equal(t, float32(3), w)
	assert.Equal(t, float32(1), h)
	assert.Equal(t, float32(2), d)
	assert.Equal(t, float32(-1.5), g.Bounds.Min.X)
}

func TestBuildIsDeterministic(t *testing.T) {
	records := []Params{
		DefaultBox(),
		DefaultSphere(),
		DefaultPlane(),
		DefaultTerrain(),
	}
	for _, p := range records {
		a := Build(p.Kind(), p)
		b := Build(p.Kind(), p)
		assert.Equal(t, a, b, "kind %v", p.Kind())
	}
}

func TestBuildSphere(t *testing.T) {
	p := SphereParams{Radius: 2, WidthSegments: 8, HeightSegments: 4}
	g := Build(Sphere, p)

	assert.Equal(t, (8+1)*(4+1), g.VertexCount())
	// pole rows emit one triangle per segment, inner rows two
	assert.Equal(t, 8*(2*4-2), g.TriangleCount())

	for i := 0; i < g.VertexCount(); i++ {
		x, y, z := g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]
		r := math.Sqrt(float64(x*x + y*y + z*z))
		assert.InDelta(t, 2, r, 1e-5)
	}
	w, h, _ := g.Size()
	assert.InDelta(t, 4, h, 1e-5)
	assert.InDelta(t, 4, w, 1e-5)
}

func TestBuildPlaneIsFlatAndCentered(t *testing.T) {
	g := Build(Plane, PlaneParams{Width: 10, Depth: 4, WidthSegments: 5, DepthSegments: 2})

	assert.Equal(t, 6*3, g.VertexCount())
	assert.Equal(t, 5*2*2, g.TriangleCount())
	w, h, d := g.Size()
	assert.Equal(t, float32(10), w)
	assert.Equal(t, float32(0), h)
	assert.Equal(t, float32(4), d)
	assert.Equal(t, float32(-5), g.Bounds.Min.X)
}

func TestBuildTerrainDependsOnSeed(t *testing.T) {
	a := DefaultTerrain()
	b := a
	b.Seed = 99

	ga := Build(Terrain, a)
	gb := Build(Terrain, b)
	require.Equal(t, ga.VertexCount(), gb.VertexCount())
	assert.NotEqual(t, ga.Positions, gb.Positions)

	for i := 0; i+2 < len(ga.Normals); i += 3 {
		l := math.Sqrt(float64(ga.Normals[i]*ga.Normals[i] + ga.Normals[i+1]*ga.Normals[i+1] + ga.Normals[i+2]*ga.Normals[i+2]))
		assert.InDelta(t, 1, l, 1e-4)
	}
}

func TestBuildPanicsOnContractViolation(t *testing.T) {
	assert.Panics(t, func() { Build(Sphere, DefaultBox()) })
	assert.Panics(t, func() {
		Build(Box, BoxParams{Width: 0, Height: 1, Depth: 1, WidthSegments: 1, HeightSegments: 1, DepthSegments: 1})
	})
	assert.Panics(t, func() { Build(Box, nil) })
}

func TestInterleavedLayout(t *testing.T) {
	g := Build(Plane, PlaneParams{Width: 1, Depth: 1, WidthSegments: 1, DepthSegments: 1})
	data := g.Interleaved()

	require.Len(t, data, g.VertexCount()*8)
	assert.Equal(t, g.Positions[0:3], data[0:3])
	assert.Equal(t, g.UVs[0:2], data[3:5])
	assert.Equal(t, g.Normals[0:3], data[5:8])
}
