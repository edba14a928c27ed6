package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skmesh/internal/logger"
)

// Attribute locations match formats.Attrib, so Position is 0 and Normal is 1.
const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uMVP;

out vec3 vNormal;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vNormal = aNormal;
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uColor;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
	float diffuse = 0.0;
	if (dot(vNormal, vNormal) > 0.0) {
		diffuse = max(dot(normalize(vNormal), -uLightDir), 0.0);
	}
	FragColor = vec4(uColor * (0.3 + 0.7 * diffuse), 1.0);
}
`

// Program is the flat-lit shader the viewer draws primitives with.
type Program struct {
	id       uint32
	locMVP   int32
	locColor int32
	locLight int32
}

// NewProgram compiles and links the mesh shader.
func NewProgram() (*Program, error) {
	vs, err := compileShader(meshVertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(meshFragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link failed: %s", log)
	}

	p := &Program{
		id:       id,
		locMVP:   gl.GetUniformLocation(id, gl.Str("uMVP\x00")),
		locColor: gl.GetUniformLocation(id, gl.Str("uColor\x00")),
		locLight: gl.GetUniformLocation(id, gl.Str("uLightDir\x00")),
	}
	logger.Debug("mesh program created", zap.Uint32("program", id))
	return p, nil
}

// Use binds the program and sets its uniforms.
func (p *Program) Use(mvp mgl32.Mat4, color, lightDir mgl32.Vec3) {
	gl.UseProgram(p.id)
	gl.UniformMatrix4fv(p.locMVP, 1, false, &mvp[0])
	gl.Uniform3fv(p.locColor, 1, &color[0])
	light := lightDir.Normalize()
	gl.Uniform3fv(p.locLight, 1, &light[0])
}

// Delete frees the program.
func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
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
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}
