package renderer

import (
	"fmt"
	"math"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// sunDiskCos is the cosine of the sun disk's angular radius.
	sunDiskCos = 0.99985
	// sunDiskEdge is the width of the disk's soft edge in cosine units, before haze.
	sunDiskEdge  = 0.0001
	mieGlowScale = 50
)

var (
	sunDiskColor = mgl32.Vec3{1, 0.95, 0.85}
	sunGlowColor = mgl32.Vec3{1, 0.9, 0.7}
)

// SkyShading is the sky uniform set read back for per-direction shading. Missing entries fall back so
// that a set holding only skyColor shades as one flat color.
type SkyShading struct {
	Zenith, Horizon mgl32.Vec3
	Up, Sun         mgl32.Vec3
	HasSun          bool

	Turbidity       float32
	Rayleigh        float32
	MieCoefficient  float32
	MieDirectionalG float32
}

func NewSkyShading(u *Uniforms) SkyShading {
	s := SkyShading{Up: mgl32.Vec3{0, 1, 0}}
	s.Zenith, _ = u.Vec3("skyColor")
	s.Horizon = s.Zenith
	if c, ok := u.Vec3("horizonColor"); ok {
		s.Horizon = c
	}
	if v, ok := u.Vec3("up"); ok && v.Len() > 0 {
		s.Up = v.Normalize()
	}
	if v, ok := u.Vec3("sunPosition"); ok && v.Len() > 0 {
		s.Sun = v.Normalize()
		s.HasSun = true
	}
	s.Turbidity, _ = u.Float("turbidity")
	s.Rayleigh, _ = u.Float("rayleigh")
	s.MieCoefficient, _ = u.Float("mieCoefficient")
	s.MieDirectionalG, _ = u.Float("mieDirectionalG")
	return s
}

// Flat reports whether every direction shades to the same color.
func (s SkyShading) Flat() bool {
	return !s.HasSun && s.Zenith == s.Horizon
}

// Radiance returns the sky color along the unit direction dir, before exposure. skyFragmentShaderSource
// computes the same thing on the GPU.
func (s SkyShading) Radiance(dir mgl32.Vec3) mgl32.Vec3 {
	h := math32.Clamp(dir.Dot(s.Up), 0, 1)
	// stronger rayleigh scattering pulls the zenith color further down
	t := float32(math.Pow(float64(h), 1/(1+float64(s.Rayleigh))))
	c := s.Horizon.Add(s.Zenith.Sub(s.Horizon).Mul(t))
	if !s.HasSun {
		return c
	}

	cosTheta := math32.Clamp(dir.Dot(s.Sun), -1, 1)
	g := math32.Clamp(s.MieDirectionalG, 0, 0.99)
	phase := (1 - g*g) / (4 * math.Pi * float32(math.Pow(float64(1+g*g-2*g*cosTheta), 1.5)))
	c = c.Add(sunGlowColor.Mul(s.MieCoefficient * mieGlowScale * phase))

	edge := float32(sunDiskEdge) * (1 + s.Turbidity/10)
	if d := smoothstep(sunDiskCos-edge, sunDiskCos, cosTheta); d > 0 {
		c = c.Add(sunDiskColor.Sub(c).Mul(d))
	}
	return c
}

func smoothstep(lo, hi, x float32) float32 {
	t := math32.Clamp((x-lo)/(hi-lo), 0, 1)
	return t * t * (3 - 2*t)
}

// Skybox draws the sky as a unit cube around the camera, behind everything else.
type Skybox struct {
	VAO    uint32
	VBO    uint32
	Shader Shader
}

func NewSkybox() (*Skybox, error) {
	skybox := &Skybox{Shader: Shader{vertexSource: skyVertexShaderSource, fragmentSource: skyFragmentShaderSource}}
	if err := skybox.Shader.Compile(); err != nil {
		return nil, fmt.Errorf("sky shader: %w", err)
	}

	vertices := skyboxVertices()
	gl.GenVertexArrays(1, &skybox.VAO)
	gl.GenBuffers(1, &skybox.VBO)

	gl.BindVertexArray(skybox.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, skybox.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return skybox, nil
}

// Render draws the sky with the scene's sky uniforms. Depth writes are off so objects always cover it.
func (s *Skybox) Render(camera *Camera, sky *Uniforms, exposure float32) {
	s.Shader.Use()

	view := camera.GetViewMatrix()
	// the sky is infinitely far away
	view[12] = 0
	view[13] = 0
	view[14] = 0

	u := s.Shader.uniforms
	u.SetMat4("view", view)
	u.SetMat4("projection", camera.GetProjectionMatrix())
	u.SetFloat("exposure", exposure)
	u.Upload(sky)

	gl.DepthMask(false)
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(s.VAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
}

func (s *Skybox) Delete() {
	gl.DeleteVertexArrays(1, &s.VAO)
	gl.DeleteBuffers(1, &s.VBO)
	s.Shader.Delete()
}

func skyboxVertices() []float32 {
	return []float32{
		-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
		1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
		-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
		-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
		-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
	}
}

var skyVertexShaderSource = `#version 330 core
layout(location = 0) in vec3 inPosition;

uniform mat4 view;
uniform mat4 projection;

out vec3 direction;

void main() {
    direction = inPosition;
    vec4 pos = projection * view * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

var skyFragmentShaderSource = `#version 330 core
in vec3 direction;

uniform vec3 skyColor;
uniform vec3 horizonColor;
uniform vec3 up;
uniform vec3 sunPosition;
uniform float turbidity;
uniform float rayleigh;
uniform float mieCoefficient;
uniform float mieDirectionalG;
uniform float exposure;

out vec4 FragColor;

const float PI = 3.14159265;
const float SUN_DISK_COS = 0.99985;
const float SUN_DISK_EDGE = 0.0001;
const float MIE_GLOW_SCALE = 50.0;

void main() {
    vec3 dir = normalize(direction);
    vec3 upDir = length(up) > 0.0 ? normalize(up) : vec3(0.0, 1.0, 0.0);
    float h = clamp(dot(dir, upDir), 0.0, 1.0);
    float t = pow(h, 1.0 / (1.0 + rayleigh));
    vec3 color = mix(horizonColor, skyColor, t);

    if (length(sunPosition) > 0.0) {
        vec3 sun = normalize(sunPosition);
        float cosTheta = clamp(dot(dir, sun), -1.0, 1.0);
        float g = clamp(mieDirectionalG, 0.0, 0.99);
        float phase = (1.0 - g * g) / (4.0 * PI * pow(1.0 + g * g - 2.0 * g * cosTheta, 1.5));
        color += vec3(1.0, 0.9, 0.7) * mieCoefficient * MIE_GLOW_SCALE * phase;

        float edge = SUN_DISK_EDGE * (1.0 + turbidity / 10.0);
        float disk = smoothstep(SUN_DISK_COS - edge, SUN_DISK_COS, cosTheta);
        color = mix(color, vec3(1.0, 0.95, 0.85), disk);
    }
    FragColor = vec4(color * exposure, 1.0);
}
` + "\x00"
