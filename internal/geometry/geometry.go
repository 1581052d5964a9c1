// Package geometry builds indexed triangle meshes from shape parameter records.
//
// Build is a pure function: the same kind and record always produce an equivalent
// Geometry, and nothing outside the returned value is read or written. Records must
// be clamped by the caller; a degenerate record is a programming error.
package geometry

import (
	"fmt"
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/g3n/engine/math32"
)

// Geometry is CPU-side vertex data ready for upload.
type Geometry struct {
	Kind      Kind
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex
	Indices   []uint32
	Bounds    math32.Box3
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Size returns the extent of the bounding box along each axis.
func (g *Geometry) Size() (width, height, depth float32) {
	return g.Bounds.Max.X - g.Bounds.Min.X,
		g.Bounds.Max.Y - g.Bounds.Min.Y,
		g.Bounds.Max.Z - g.Bounds.Min.Z
}

// Interleaved packs position, uv and normal per vertex (8 floats), the layout the
// OpenGL backend binds at attribute locations 0, 1 and 2.
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	out := make([]float32, 0, n*8)
	for i := 0; i < n; i++ {
		out = append(out, g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2])
		out = append(out, g.UVs[i*2], g.UVs[i*2+1])
		out = append(out, g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2])
	}
	return out
}

// Build generates the mesh for kind from p.
// It panics if p does not describe kind or if a dimension is not positive.
func Build(kind Kind, p Params) *Geometry {
	if p == nil || p.Kind() != kind {
		panic(fmt.Sprintf("geometry: %v record passed for kind %v", p, kind))
	}

	var g *Geometry
	switch v := p.(type) {
	case BoxParams:
		mustPositive(v.Width, v.Height, v.Depth)
		g = buildBox(v)
	case SphereParams:
		mustPositive(v.Radius)
		g = buildSphere(v)
	case PlaneParams:
		mustPositive(v.Width, v.Depth)
		g = buildPlane(v)
	case TerrainParams:
		mustPositive(v.Plane.Width, v.Plane.Depth)
		g = buildTerrain(v)
	default:
		panic(fmt.Sprintf("geometry: unsupported record %T", p))
	}
	g.Kind = kind
	g.computeBounds()
	return g
}

func mustPositive(dims ...float32) {
	for _, d := range dims {
		if !(d > 0) {
			panic(fmt.Sprintf("geometry: degenerate dimension %v", d))
		}
	}
}

func (g *Geometry) computeBounds() {
	g.Bounds.MakeEmpty()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		g.Bounds.ExpandByPoint(&math32.Vector3{X: g.Positions[i], Y: g.Positions[i+1], Z: g.Positions[i+2]})
	}
}

func (g *Geometry) addVertex(pos [3]float32, normal [3]float32, u, v float32) uint32 {
	idx := uint32(len(g.Positions) / 3)
	g.Positions = append(g.Positions, pos[0], pos[1], pos[2])
	g.Normals = append(g.Normals, normal[0], normal[1], normal[2])
	g.UVs = append(g.UVs, u, v)
	return idx
}

// buildBox emits six subdivided faces. Vertices are not shared between faces so each
// face keeps a flat normal.
func buildBox(p BoxParams) *Geometry {
	g := &Geometry{}
	w, h, d := p.Width, p.Height, p.Depth
	ws, hs, ds := p.WidthSegments, p.HeightSegments, p.DepthSegments

	// axis order u, v, w; direction of u and v; face width, height and offset along w
	g.boxFace(2, 1, 0, -1, -1, d, h, w, ds, hs)  // +x
	g.boxFace(2, 1, 0, 1, -1, d, h, -w, ds, hs)  // -x
	g.boxFace(0, 2, 1, 1, 1, w, d, h, ws, ds)    // +y
	g.boxFace(0, 2, 1, 1, -1, w, d, -h, ws, ds)  // -y
	g.boxFace(0, 1, 2, 1, -1, w, h, d, ws, hs)   // +z
	g.boxFace(0, 1, 2, -1, -1, w, h, -d, ws, hs) // -z
	return g
}

func (g *Geometry) boxFace(u, v, w int, udir, vdir float32, width, height, depth float32, gridX, gridY int) {
	segW := width / float32(gridX)
	segH := height / float32(gridY)
	halfW, halfH, halfD := width/2, height/2, depth/2

	normalW := float32(1)
	if depth < 0 {
		normalW = -1
	}

	base := uint32(len(g.Positions) / 3)
	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - halfW

			var pos, normal [3]float32
			pos[u] = x * udir
			pos[v] = y * vdir
			pos[w] = halfD
			normal[w] = normalW

			g.addVertex(pos, normal, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}

	rowLen := uint32(gridX + 1)
	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := base + uint32(ix) + rowLen*uint32(iy)
			b := base + uint32(ix) + rowLen*uint32(iy+1)
			c := base + uint32(ix+1) + rowLen*uint32(iy+1)
			d := base + uint32(ix+1) + rowLen*uint32(iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
}

func buildSphere(p SphereParams) *Geometry {
	g := &Geometry{}
	ws, hs := p.WidthSegments, p.HeightSegments
	grid := make([][]uint32, hs+1)

	for iy := 0; iy <= hs; iy++ {
		v := float64(iy) / float64(hs)

		// pole rows shift their uv so the texture seam does not pinch
		uOffset := 0.0
		if iy == 0 {
			uOffset = 0.5 / float64(ws)
		} else if iy == hs {
			uOffset = -0.5 / float64(ws)
		}

		grid[iy] = make([]uint32, ws+1)
		for ix := 0; ix <= ws; ix++ {
			u := float64(ix) / float64(ws)
			sinV := math.Sin(v * math.Pi)

			nx := -math.Cos(u*2*math.Pi) * sinV
			ny := math.Cos(v * math.Pi)
			nz := math.Sin(u*2*math.Pi) * sinV

			r := float64(p.Radius)
			pos := [3]float32{float32(r * nx), float32(r * ny), float32(r * nz)}
			normal := [3]float32{float32(nx), float32(ny), float32(nz)}
			grid[iy][ix] = g.addVertex(pos, normal, float32(u+uOffset), float32(1-v))
		}
	}

	for iy := 0; iy < hs; iy++ {
		for ix := 0; ix < ws; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != hs-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

func buildPlane(p PlaneParams) *Geometry {
	return buildGrid(p, func(x, z float32) float32 { return 0 })
}

func buildTerrain(p TerrainParams) *Geometry {
	noise := perlin.NewPerlin(2, 2, 3, p.Seed)
	g := buildGrid(p.Plane, func(x, z float32) float32 {
		return p.Amplitude * float32(noise.Noise2D(float64(x*p.Frequency), float64(z*p.Frequency)))
	})
	g.recalculateNormals()
	return g
}

// buildGrid lays out (ws+1)*(ds+1) vertices over the XZ plane with heights from height.
func buildGrid(p PlaneParams, height func(x, z float32) float32) *Geometry {
	g := &Geometry{}
	ws, ds := p.WidthSegments, p.DepthSegments
	stepX := p.Width / float32(ws)
	stepZ := p.Depth / float32(ds)
	startX := -p.Width / 2
	startZ := -p.Depth / 2

	for iz := 0; iz <= ds; iz++ {
		z := startZ + float32(iz)*stepZ
		for ix := 0; ix <= ws; ix++ {
			x := startX + float32(ix)*stepX
			g.addVertex([3]float32{x, height(x, z), z}, [3]float32{0, 1, 0},
				float32(ix)/float32(ws), 1-float32(iz)/float32(ds))
		}
	}

	rowLen := uint32(ws + 1)
	for iz := 0; iz < ds; iz++ {
		for ix := 0; ix < ws; ix++ {
			topLeft := uint32(iz)*rowLen + uint32(ix)
			topRight := topLeft + 1
			bottomLeft := topLeft + rowLen
			bottomRight := bottomLeft + 1
			// counter-clockwise seen from +Y
			g.Indices = append(g.Indices, topLeft, bottomLeft, bottomRight, topLeft, bottomRight, topRight)
		}
	}
	return g
}

// recalculateNormals averages face normals into shared vertices.
func (g *Geometry) recalculateNormals() {
	normals := make([]float32, len(g.Positions))
	vec := func(i uint32) [3]float32 {
		return [3]float32{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
	}

	for t := 0; t+2 < len(g.Indices); t += 3 {
		i0, i1, i2 := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		v0, v1, v2 := vec(i0), vec(i1), vec(i2)
		e1 := [3]float32{v1[0] - v0[0], v1[1] - v0[1], v1[2] - v0[2]}
		e2 := [3]float32{v2[0] - v0[0], v2[1] - v0[1], v2[2] - v0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, i := range [3]uint32{i0, i1, i2} {
			normals[i*3] += n[0]
			normals[i*3+1] += n[1]
			normals[i*3+2] += n[2]
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		l := float32(math.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])))
		if l == 0 {
			normals[i], normals[i+1], normals[i+2] = 0, 1, 0
			continue
		}
		normals[i] /= l
		normals[i+1] /= l
		normals[i+2] /= l
	}
	g.Normals = normals
}
