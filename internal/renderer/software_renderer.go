package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"LiveScene/internal/geometry"
	"LiveScene/internal/logger"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SoftwareBackend rasterizes the scene on the CPU into an RGBA image. It keeps uploaded geometry in a
// handle table like a GPU driver would, which makes it usable both as a preview renderer and in tests.
type SoftwareBackend struct {
	meshes *handleTable[*geometry.Geometry]

	width, height int
	back          *image.RGBA
	depth         []float32

	mu    sync.Mutex
	front *image.RGBA

	overlay  []string
	frames   int
	created  int
	disposed int
	lost     error
	closed   bool
}

func NewSoftwareBackend(width, height int) *SoftwareBackend {
	b := &SoftwareBackend{meshes: newHandleTable[*geometry.Geometry]()}
	b.Resize(width, height)
	return b
}

func (b *SoftwareBackend) CreateGeometry(g *geometry.Geometry) (GeometryHandle, error) {
	if b.closed || b.lost != nil {
		return GeometryHandle{}, ErrContextLost
	}
	id := b.meshes.add(g)
	b.created++
	return handleFor(id, g), nil
}

func (b *SoftwareBackend) DisposeGeometry(h GeometryHandle) error {
	if _, err := b.meshes.remove(h.ID); err != nil {
		return fmt.Errorf("dispose handle %d: %w", h.ID, err)
	}
	b.disposed++
	return nil
}

// LiveGeometries counts uploaded geometries not yet disposed.
func (b *SoftwareBackend) LiveGeometries() int { return b.meshes.len() }

// Stats returns how many geometries were created and disposed over the backend's lifetime.
func (b *SoftwareBackend) Stats() (created, disposed int) { return b.created, b.disposed }

func (b *SoftwareBackend) Frames() int { return b.frames }

func (b *SoftwareBackend) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == b.width && height == b.height) {
		return
	}
	b.width, b.height = width, height
	b.back = image.NewRGBA(image.Rect(0, 0, width, height))
	b.depth = make([]float32, width*height)

	b.mu.Lock()
	b.front = image.NewRGBA(image.Rect(0, 0, width, height))
	b.mu.Unlock()
}

func (b *SoftwareBackend) Size() (int, int) { return b.width, b.height }

// SetOverlay replaces the HUD text drawn in the top-left corner.
func (b *SoftwareBackend) SetOverlay(lines ...string) {
	b.overlay = append(b.overlay[:0], lines...)
}

// LoseContext makes every following Render fail with ErrContextLost.
func (b *SoftwareBackend) LoseContext(reason error) {
	b.lost = reason
}

// Snapshot copies the last completed frame. It is safe to call from any goroutine.
func (b *SoftwareBackend) Snapshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.front == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	out := image.NewRGBA(b.front.Rect)
	copy(out.Pix, b.front.Pix)
	return out
}

type shading struct {
	lightDir     mgl32.Vec3
	lightColor   mgl32.Vec3
	ambient      mgl32.Vec3
	exposure     float32
	horizonColor mgl32.Vec3
}

func (b *SoftwareBackend) Render(scene *Scene, camera *Camera) error {
	if b.lost != nil {
		return fmt.Errorf("%w: %v", ErrContextLost, b.lost)
	}
	if b.closed {
		return ErrContextLost
	}
	if b.back == nil {
		// no surface yet
		return nil
	}

	sh := shading{exposure: scene.Exposure}
	if sh.exposure <= 0 {
		sh.exposure = 1
	}
	if l := scene.Light(DirectionalLight); l != nil {
		sh.lightDir = l.Direction()
		sh.lightColor = l.Color.Mul(l.Intensity)
	}
	if l := scene.Light(AmbientLight); l != nil {
		sh.ambient = l.Color.Mul(l.Intensity)
	}
	sh.horizonColor, _ = scene.Sky.Vec3("horizonColor")

	b.drawSky(NewSkyShading(scene.Sky), camera, sh.exposure)
	for i := range b.depth {
		b.depth[i] = float32(math.Inf(1))
	}

	vp := camera.GetViewProjection()
	frustum := camera.CalculateFrustum()
	for _, m := range scene.Objects() {
		h, ok := m.Geometry()
		if !m.Visible || !ok {
			continue
		}
		g, ok := b.meshes.get(h.ID)
		if !ok {
			return fmt.Errorf("object %q: %w", m.ID, ErrUnknownHandle)
		}
		if center, radius := m.BoundingSphere(); !frustum.IntersectsSphere(center, radius) {
			continue
		}
		b.drawModel(m, g, vp, sh)
	}

	b.drawOverlay()
	b.frames++

	b.mu.Lock()
	copy(b.front.Pix, b.back.Pix)
	b.mu.Unlock()
	return nil
}

// drawSky shades the background per pixel from the view direction, like the OpenGL skybox.
func (b *SoftwareBackend) drawSky(sky SkyShading, camera *Camera, exposure float32) {
	if sky.Flat() {
		draw.Draw(b.back, b.back.Bounds(), image.NewUniform(toRGBA(sky.Zenith.Mul(exposure))), image.Point{}, draw.Src)
		return
	}
	front, right, up := camera.Front(), camera.Right(), camera.ScreenUp()
	tanY := float32(math.Tan(float64(mgl32.DegToRad(camera.Fov)) / 2))
	tanX := tanY * camera.AspectRatio()
	for y := 0; y < b.height; y++ {
		ndcY := 1 - 2*(float32(y)+0.5)/float32(b.height)
		row := front.Add(up.Mul(ndcY * tanY))
		for x := 0; x < b.width; x++ {
			ndcX := 2*(float32(x)+0.5)/float32(b.width) - 1
			dir := row.Add(right.Mul(ndcX * tanX)).Normalize()
			b.back.SetRGBA(x, y, toRGBA(sky.Radiance(dir).Mul(exposure)))
		}
	}
}

func (b *SoftwareBackend) drawModel(m *Model, g *geometry.Geometry, vp mgl32.Mat4, sh shading) {
	model := m.Matrix()
	mvp := vp.Mul4(model)
	normalMatrix := model.Mat3()

	base := mgl32.Vec3{m.Material.DiffuseColor[0], m.Material.DiffuseColor[1], m.Material.DiffuseColor[2]}
	var waveTime, distortion float32
	if m.Shader == WaterShader && m.CustomUniforms != nil {
		if c, ok := m.CustomUniforms.Vec3("waterColor"); ok {
			base = c
		}
		if sky, ok := m.CustomUniforms.Vec3("horizonColor"); ok {
			sh.horizonColor = sky
		}
		waveTime, _ = m.CustomUniforms.Float("time")
		distortion, _ = m.CustomUniforms.Float("distortionScale")
	}

	type projected struct {
		x, y, z float32
		ok      bool
	}
	verts := make([]projected, g.VertexCount())
	for i := range verts {
		p := mgl32.Vec4{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2], 1}
		clip := mvp.Mul4x1(p)
		if clip.W() <= 1e-6 {
			continue
		}
		inv := 1 / clip.W()
		verts[i] = projected{
			x:  (clip.X()*inv + 1) / 2 * float32(b.width),
			y:  (1 - clip.Y()*inv) / 2 * float32(b.height),
			z:  clip.Z() * inv,
			ok: true,
		}
	}

	for t := 0; t+2 < len(g.Indices); t += 3 {
		i0, i1, i2 := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		v0, v1, v2 := verts[i0], verts[i1], verts[i2]
		if !v0.ok || !v1.ok || !v2.ok {
			continue
		}

		if m.Material.Wireframe {
			c := toRGBA(base.Mul(sh.exposure))
			b.line(v0.x, v0.y, v1.x, v1.y, c)
			b.line(v1.x, v1.y, v2.x, v2.y, c)
			b.line(v2.x, v2.y, v0.x, v0.y, c)
			continue
		}

		n := mgl32.Vec3{}
		for _, i := range [3]uint32{i0, i1, i2} {
			n = n.Add(mgl32.Vec3{g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]})
		}
		n = normalMatrix.Mul3x1(n)
		if n.Len() > 0 {
			n = n.Normalize()
		}

		diffuse := math32.Max(0, n.Dot(sh.lightDir.Mul(-1)))
		lit := sh.ambient.Add(sh.lightColor.Mul(diffuse))
		col := mgl32.Vec3{base[0] * lit[0], base[1] * lit[1], base[2] * lit[2]}
		if m.Shader == WaterShader {
			cx := (g.Positions[i0*3] + g.Positions[i1*3] + g.Positions[i2*3]) / 3
			cz := (g.Positions[i0*3+2] + g.Positions[i1*3+2] + g.Positions[i2*3+2]) / 3
			ripple := 0.05 * float32(math.Sin(float64(waveTime+(cx+cz)*distortion*0.05)))
			col = col.Mul(0.7 + ripple).Add(sh.horizonColor.Mul(0.3))
		}
		col = col.Mul(m.Material.Alpha * sh.exposure)
		b.fill(v0.x, v0.y, v0.z, v1.x, v1.y, v1.z, v2.x, v2.y, v2.z, toRGBA(col))
	}
}

// fill rasterizes a screen-space triangle with a depth test.
func (b *SoftwareBackend) fill(x0, y0, z0, x1, y1, z1, x2, y2, z2 float32, c color.RGBA) {
	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}
	minX := clampInt(int(math32.Floor(math32.Min(x0, math32.Min(x1, x2)))), 0, b.width-1)
	maxX := clampInt(int(math32.Ceil(math32.Max(x0, math32.Max(x1, x2)))), 0, b.width-1)
	minY := clampInt(int(math32.Floor(math32.Min(y0, math32.Min(y1, y2)))), 0, b.height-1)
	maxY := clampInt(int(math32.Ceil(math32.Max(y0, math32.Max(y1, y2)))), 0, b.height-1)

	for py := minY; py <= maxY; py++ {
		fy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			fx := float32(px) + 0.5
			w0 := ((x1-fx)*(y2-fy) - (x2-fx)*(y1-fy)) / area
			w1 := ((x2-fx)*(y0-fy) - (x0-fx)*(y2-fy)) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*z0 + w1*z1 + w2*z2
			if z < -1 || z > 1 {
				continue
			}
			idx := py*b.width + px
			if z >= b.depth[idx] {
				continue
			}
			b.depth[idx] = z
			b.back.SetRGBA(px, py, c)
		}
	}
}

// line draws with Bresenham's algorithm, clipped to the image.
func (b *SoftwareBackend) line(x0f, y0f, x1f, y1f float32, c color.RGBA) {
	x0, y0, x1, y1 := int(x0f), int(y0f), int(x1f), int(y1f)
	// skip lines far outside the surface instead of walking them
	limit := 4 * (b.width + b.height)
	if absInt(x1-x0) > limit || absInt(y1-y0) > limit {
		return
	}
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < b.width && y0 < b.height {
			b.back.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func (b *SoftwareBackend) drawOverlay() {
	if len(b.overlay) == 0 {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  b.back,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
	}
	lineHeight := face.Metrics().Height
	for i, line := range b.overlay {
		d.Dot = fixed.Point26_6{X: fixed.I(8), Y: fixed.I(8) + lineHeight*fixed.Int26_6(i+1)}
		d.DrawString(line)
	}
}

// Close releases every geometry still uploaded. Render and CreateGeometry fail afterwards.
func (b *SoftwareBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if n := b.meshes.len(); n > 0 {
		logger.Log.Warn("Software backend closed with live geometry", zap.Int("count", n))
		b.meshes = newHandleTable[*geometry.Geometry]()
	}
	return nil
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(math32.Clamp(c[0], 0, 1)*255 + 0.5),
		G: uint8(math32.Clamp(c[1], 0, 1)*255 + 0.5),
		B: uint8(math32.Clamp(c[2], 0, 1)*255 + 0.5),
		A: 255,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
