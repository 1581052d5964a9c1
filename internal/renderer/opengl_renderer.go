package renderer

import (
	"fmt"

	"LiveScene/internal/geometry"
	"LiveScene/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type glMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// OpenGLBackend draws through a GL 4.1 core context. It must be created, used and closed on the
// thread that owns the context.
type OpenGLBackend struct {
	defaultShader        Shader
	waterShader          Shader
	sky                  *Skybox
	meshes               *handleTable[glMesh]
	currentShaderProgram uint32
	width, height        int32
	closed               bool

	FaceCulling bool
	DepthTest   bool
}

// newOpenGLBackend returns the backend state before any GL call: depth testing on, culling off.
func newOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{
		defaultShader: InitShader(),
		waterShader:   InitWaterShader(),
		meshes:        newHandleTable[glMesh](),
		DepthTest:     true,
	}
}

// NewOpenGLBackend loads GL entry points and compiles the programs. A context must be current.
func NewOpenGLBackend(width, height int) (*OpenGLBackend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("OpenGL initialization failed: %w", err)
	}

	rend := newOpenGLBackend()
	if err := rend.defaultShader.Compile(); err != nil {
		return nil, fmt.Errorf("default shader: %w", err)
	}
	if err := rend.waterShader.Compile(); err != nil {
		rend.defaultShader.Delete()
		return nil, fmt.Errorf("water shader: %w", err)
	}
	sky, err := NewSkybox()
	if err != nil {
		rend.defaultShader.Delete()
		rend.waterShader.Delete()
		return nil, err
	}
	rend.sky = sky
	rend.Resize(width, height)

	logger.Log.Info("OpenGL render initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int("width", width), zap.Int("height", height))
	return rend, nil
}

func (rend *OpenGLBackend) CreateGeometry(g *geometry.Geometry) (GeometryHandle, error) {
	if rend.closed {
		return GeometryHandle{}, ErrContextLost
	}
	data := g.Interleaved()
	if len(data) == 0 || len(g.Indices) == 0 {
		return GeometryHandle{}, fmt.Errorf("empty %v geometry", g.Kind)
	}

	var mesh glMesh
	gl.GenVertexArrays(1, &mesh.vao)
	gl.BindVertexArray(mesh.vao)

	gl.GenBuffers(1, &mesh.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mesh.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &mesh.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mesh.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)

	stride := int32((8) * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	mesh.indexCount = int32(len(g.Indices))

	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		deleteMesh(mesh)
		return GeometryHandle{}, fmt.Errorf("upload %v geometry: %w", g.Kind, ErrContextLost)
	}

	id := rend.meshes.add(mesh)
	return handleFor(id, g), nil
}

func (rend *OpenGLBackend) DisposeGeometry(h GeometryHandle) error {
	mesh, err := rend.meshes.remove(h.ID)
	if err != nil {
		return fmt.Errorf("dispose handle %d: %w", h.ID, err)
	}
	deleteMesh(mesh)
	return nil
}

func deleteMesh(mesh glMesh) {
	gl.DeleteVertexArrays(1, &mesh.vao)
	gl.DeleteBuffers(1, &mesh.vbo)
	gl.DeleteBuffers(1, &mesh.ebo)
}

// Resize sets the viewport. width and height are framebuffer pixels.
func (rend *OpenGLBackend) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	rend.width, rend.height = int32(width), int32(height)
	gl.Viewport(0, 0, rend.width, rend.height)
}

func (rend *OpenGLBackend) Render(scene *Scene, camera *Camera) error {
	if rend.closed {
		return ErrContextLost
	}
	bg := scene.ClearColor().Mul(scene.Exposure)
	gl.ClearColor(bg.X(), bg.Y(), bg.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	rend.sky.Render(camera, scene.Sky, scene.Exposure)

	if rend.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthMask(true)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if rend.FaceCulling {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	viewProjection := camera.GetViewProjection()
	frustum := camera.CalculateFrustum()
	rend.currentShaderProgram = 0

	for _, model := range scene.Objects() {
		h, ok := model.Geometry()
		if !model.Visible || !ok {
			continue
		}
		mesh, ok := rend.meshes.get(h.ID)
		if !ok {
			return fmt.Errorf("object %q: %w", model.ID, ErrUnknownHandle)
		}
		if center, radius := model.BoundingSphere(); !frustum.IntersectsSphere(center, radius) {
			continue
		}

		shader := &rend.defaultShader
		if model.Shader == WaterShader {
			shader = &rend.waterShader
		}
		if rend.currentShaderProgram != shader.program {
			shader.Use()
			rend.currentShaderProgram = shader.program
		}

		u := shader.uniforms
		u.SetMat4("viewProjection", viewProjection)
		u.SetMat4("model", model.Matrix())
		u.SetVec3("viewPos", camera.Position)
		u.SetFloat("exposure", scene.Exposure)
		if model.Shader == WaterShader {
			u.Upload(model.CustomUniforms)
		} else {
			rend.setLightUniforms(u, scene)
			rend.setMaterialUniforms(u, model)
		}

		if model.Material.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.BindVertexArray(mesh.vao)
		gl.DrawElements(gl.TRIANGLES, mesh.indexCount, gl.UNSIGNED_INT, nil)
		gl.BindVertexArray(0)
		if model.Material.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)

	switch code := gl.GetError(); code {
	case gl.NO_ERROR:
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("%w: GL_OUT_OF_MEMORY", ErrContextLost)
	default:
		logger.Log.Warn("GL error after frame", zap.Uint32("code", code))
	}
	return nil
}

func (rend *OpenGLBackend) setLightUniforms(u *UniformCache, scene *Scene) {
	if l := scene.Light(DirectionalLight); l != nil {
		u.SetVec3("lightDirection", l.Direction())
		u.SetVec3("lightColor", l.Color)
		u.SetFloat("lightIntensity", l.Intensity)
	} else {
		u.SetFloat("lightIntensity", 0)
	}
	if l := scene.Light(AmbientLight); l != nil {
		u.SetVec3("ambientColor", l.Color.Mul(l.Intensity))
	}
}

func (rend *OpenGLBackend) setMaterialUniforms(u *UniformCache, model *Model) {
	c := model.Material.DiffuseColor
	u.SetFloat("metallic", model.Material.Metallic)
	u.SetFloat("roughness", model.Material.Roughness)
	u.SetFloat("alpha", model.Material.Alpha)
	u.SetVec3("diffuseColor", mgl32.Vec3{c[0], c[1], c[2]})
}

// Close deletes every mesh still uploaded, the sky and both programs.
func (rend *OpenGLBackend) Close() error {
	if rend.closed {
		return nil
	}
	rend.closed = true

	var err error
	if n := rend.meshes.len(); n > 0 {
		err = fmt.Errorf("%d geometries still live at close", n)
		for id, mesh := range rend.meshes.live {
			deleteMesh(mesh)
			delete(rend.meshes.live, id)
		}
	}
	rend.defaultShader.Delete()
	rend.waterShader.Delete()
	rend.sky.Delete()
	logger.Log.Info("OpenGL backend closed")
	return err
}
