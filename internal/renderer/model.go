package renderer

import (
	"LiveScene/internal/geometry"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderKind selects the program a model is drawn with.
type ShaderKind int

const (
	StandardShader ShaderKind = iota
	WaterShader
)

type Material struct {
	DiffuseColor [3]float32
	Metallic     float32 // 0.0 = dielectric, 1.0 = metallic
	Roughness    float32 // 0.0 = mirror, 1.0 = completely rough
	Alpha        float32
	Wireframe    bool
}

// DefaultMaterial returns an opaque white dielectric.
func DefaultMaterial() Material {
	return Material{
		DiffuseColor: [3]float32{1, 1, 1},
		Metallic:     0,
		Roughness:    0.5,
		Alpha:        1,
	}
}

// Model is one object of the scene graph. It owns at most one live geometry handle, installed by
// Scene.AddObject and swapped by Scene.ReplaceGeometry.
type Model struct {
	// HOT DATA - read every frame
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Rotation    mgl32.Vec3 // Euler angles in radians, XYZ order
	Scale       mgl32.Vec3
	Material    Material
	Visible     bool
	IsDirty     bool
	// Pickable models can be picked to start a drag.
	Pickable bool

	// Shader-driven models read their per-frame inputs from CustomUniforms.
	Shader         ShaderKind
	CustomUniforms *Uniforms

	// COLD DATA
	ID     string
	Params geometry.Params

	geometry    GeometryHandle
	hasGeometry bool
}

// NewModel returns a visible model at the origin with the default material. The geometry is created
// when the model is added to a scene.
func NewModel(id string, params geometry.Params) *Model {
	m := &Model{
		ID:       id,
		Params:   params,
		Scale:    mgl32.Vec3{1, 1, 1},
		Material: DefaultMaterial(),
		Visible:  true,
		Pickable: true,
	}
	m.updateModelMatrix()
	return m
}

// Geometry returns the live geometry handle and whether one is bound.
func (m *Model) Geometry() (GeometryHandle, bool) {
	return m.geometry, m.hasGeometry
}

func (m *Model) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.IsDirty = true
}

func (m *Model) SetRotation(x, y, z float32) {
	m.Rotation = mgl32.Vec3{x, y, z}
	m.IsDirty = true
}

func (m *Model) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.IsDirty = true
}

func (m *Model) SetDiffuseColor(r, g, b float32) {
	m.Material.DiffuseColor = [3]float32{r, g, b}
}

// SetColorHex sets the diffuse color from a 0xRRGGBB value.
func (m *Model) SetColorHex(hex uint) {
	c := math32.NewColorHex(hex)
	m.SetDiffuseColor(c.R, c.G, c.B)
}

// ColorHex returns the diffuse color as 0xRRGGBB.
func (m *Model) ColorHex() uint {
	var hex uint
	for _, c := range m.Material.DiffuseColor {
		hex = hex<<8 | uint(math32.Clamp(c, 0, 1)*255+0.5)
	}
	return hex
}

func (m *Model) SetMaterialPBR(metallic, roughness float32) {
	m.Material.Metallic = math32.Clamp(metallic, 0, 1)
	m.Material.Roughness = math32.Clamp(roughness, 0, 1)
}

func (m *Model) SetAlpha(alpha float32) {
	m.Material.Alpha = math32.Clamp(alpha, 0, 1)
}

// Matrix returns the model matrix, recomputing it first if the transform changed.
func (m *Model) Matrix() mgl32.Mat4 {
	if m.IsDirty {
		m.updateModelMatrix()
		m.IsDirty = false
	}
	return m.ModelMatrix
}

// BoundingSphere returns the world-space center and radius enclosing the bound geometry.
func (m *Model) BoundingSphere() (mgl32.Vec3, float32) {
	if !m.hasGeometry {
		return m.Position, 0
	}
	b := m.geometry.Bounds
	var center math32.Vector3
	b.Center(&center)
	local := mgl32.Vec3{center.X, center.Y, center.Z}
	half := mgl32.Vec3{b.Max.X - center.X, b.Max.Y - center.Y, b.Max.Z - center.Z}

	maxScale := m.Scale.X()
	if m.Scale.Y() > maxScale {
		maxScale = m.Scale.Y()
	}
	if m.Scale.Z() > maxScale {
		maxScale = m.Scale.Z()
	}
	world := m.Matrix().Mul4x1(local.Vec4(1)).Vec3()
	return world, half.Len() * maxScale
}

func (m *Model) updateModelMatrix() {
	translation := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	rotation := mgl32.AnglesToQuat(m.Rotation[0], m.Rotation[1], m.Rotation[2], mgl32.XYZ).Mat4()
	scale := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	m.ModelMatrix = translation.Mul4(rotation).Mul4(scale)
}
