package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	vertexSource   string
	fragmentSource string
	program        uint32
	uniforms       *UniformCache
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

// Compile builds and links the program. It needs a current GL context.
func (shader *Shader) Compile() error {
	vertex, err := compileShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertex)
	fragment, err := compileShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragment)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return fmt.Errorf("failed to link program: %v", log)
	}

	shader.program = program
	shader.uniforms = NewUniformCache(program)
	return nil
}

func (shader *Shader) Delete() {
	if shader.program != 0 {
		gl.DeleteProgram(shader.program)
		shader.program = 0
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

var vertexShaderSource = `#version 330 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;

out vec2 fragTexCoord;
out vec3 Normal;
out vec3 FragPos;

void main() {
    FragPos = vec3(model * vec4(inPosition, 1.0));
    Normal = mat3(model) * inNormal;
    fragTexCoord = inTexCoord;
    gl_Position = viewProjection * vec4(FragPos, 1.0);
}
` + "\x00"

var fragmentShaderSource = `#version 330 core
in vec2 fragTexCoord;
in vec3 Normal;
in vec3 FragPos;

uniform vec3 lightDirection;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform vec3 ambientColor;
uniform vec3 viewPos;
uniform vec3 diffuseColor;
uniform float metallic;
uniform float roughness;
uniform float alpha;
uniform float exposure;

out vec4 FragColor;

void main() {
    vec3 norm = normalize(Normal);
    vec3 toLight = -normalize(lightDirection);
    float diff = max(dot(norm, toLight), 0.0);

    vec3 viewDir = normalize(viewPos - FragPos);
    vec3 halfway = normalize(toLight + viewDir);
    float shininess = mix(256.0, 4.0, roughness);
    float spec = pow(max(dot(norm, halfway), 0.0), shininess) * (1.0 - roughness);
    vec3 specTint = mix(vec3(0.04), diffuseColor, metallic);

    vec3 lit = ambientColor * diffuseColor
             + lightColor * lightIntensity * (diff * diffuseColor * (1.0 - metallic) + spec * specTint);
    FragColor = vec4(lit * exposure, alpha);
}
` + "\x00"

var waterVertexShaderSource = `#version 330 core

#define MAX_WAVES 4

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;
uniform float time;
uniform float distortionScale;

uniform int waveCount;
uniform vec3 waveDirections[MAX_WAVES];
uniform float waveAmplitudes[MAX_WAVES];
uniform float waveFrequencies[MAX_WAVES];
uniform float waveSpeeds[MAX_WAVES];
uniform float wavePhases[MAX_WAVES];
uniform float waveSteepness[MAX_WAVES];

out vec2 fragTexCoord;
out vec3 fragNormal;
out vec3 fragPosition;

void main() {
    vec3 world = vec3(model * vec4(inPosition, 1.0));
    vec3 offset = vec3(0.0);
    vec3 normal = vec3(0.0, 1.0, 0.0);

    // Gerstner sum in world space
    for (int i = 0; i < MAX_WAVES; i++) {
        if (i >= waveCount) {
            break;
        }
        vec2 d = normalize(waveDirections[i].xz);
        float k = waveFrequencies[i];
        float a = waveAmplitudes[i];
        float q = waveSteepness[i];
        float theta = k * dot(d, world.xz) + waveSpeeds[i] * time + wavePhases[i];
        float c = cos(theta);
        float s = sin(theta);

        offset.x += q * a * d.x * c;
        offset.z += q * a * d.y * c;
        offset.y += a * s;

        normal.x -= d.x * k * a * c;
        normal.z -= d.y * k * a * c;
        normal.y -= q * k * a * s;
    }

    normal.xz *= distortionScale / 3.7;

    fragPosition = world + offset;
    fragNormal = normalize(normal);
    fragTexCoord = inTexCoord;
    gl_Position = viewProjection * vec4(fragPosition, 1.0);
}
` + "\x00"

var waterFragmentShaderSource = `#version 330 core

in vec2 fragTexCoord;
in vec3 fragNormal;
in vec3 fragPosition;

uniform vec3 sunDirection;
uniform vec3 sunColor;
uniform vec3 waterColor;
uniform vec3 skyColor;
uniform vec3 horizonColor;
uniform vec3 viewPos;
uniform float exposure;

out vec4 FragColor;

void main() {
    vec3 norm = normalize(fragNormal);
    vec3 viewDir = normalize(viewPos - fragPosition);

    float diff = max(dot(norm, sunDirection), 0.0);
    vec3 reflectDir = reflect(-sunDirection, norm);
    float spec = pow(max(dot(viewDir, reflectDir), 0.0), 64.0);

    float fresnel = pow(1.0 - max(dot(viewDir, norm), 0.0), 3.0);
    vec3 reflection = mix(skyColor, horizonColor, 1.0 - abs(viewDir.y));

    vec3 color = mix(waterColor * (0.3 + 0.7 * diff), reflection, fresnel) + sunColor * spec;
    FragColor = vec4(color * exposure, 1.0);
}
` + "\x00"

func InitShader() Shader {
	return Shader{
		vertexSource:   vertexShaderSource,
		fragmentSource: fragmentShaderSource,
	}
}

func InitWaterShader() Shader {
	return Shader{
		vertexSource:   waterVertexShaderSource,
		fragmentSource: waterFragmentShaderSource,
	}
}
