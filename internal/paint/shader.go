package paint

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/overlay/internal/gl"
)

//go:embed shaders/vertex.vert
var vertexSrc string

//go:embed shaders/fragment.frag
var fragmentSrc string

// ErrShaderCompile is returned when the device rejects the overlay's shader
// pair. The device info log is included in the wrapping error.
var ErrShaderCompile = errors.New("paint: shader compile failed")

func cString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

func compileShader(api *gl.API, xtype uint32, src string) (uint32, error) {
	id := api.CreateShader(xtype)
	p := cString(src)
	api.ShaderSource(id, 1, &p, nil)
	api.CompileShader(id)

	var status int32
	api.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return id, nil
	}
	log := shaderLog(api, id)
	api.DeleteShader(id)
	return 0, fmt.Errorf("%w: %s", ErrShaderCompile, log)
}

func shaderLog(api *gl.API, id uint32) string {
	var n int32
	api.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return "(no info log)"
	}
	buf := make([]byte, n)
	api.GetShaderInfoLog(id, n, nil, &buf[0])
	return string(bytes.TrimRight(buf, "\x00\n"))
}

func programLog(api *gl.API, id uint32) string {
	var n int32
	api.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return "(no info log)"
	}
	buf := make([]byte, n)
	api.GetProgramInfoLog(id, n, nil, &buf[0])
	return string(bytes.TrimRight(buf, "\x00\n"))
}

// compileProgram builds the overlay's program from the embedded shader pair.
// The shaders are detached and deleted once linked; only the program handle
// survives.
func compileProgram(api *gl.API) (uint32, error) {
	vs, err := compileShader(api, gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	fs, err := compileShader(api, gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		api.DeleteShader(vs)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	program := api.CreateProgram()
	api.AttachShader(program, vs)
	api.AttachShader(program, fs)
	api.LinkProgram(program)

	api.DetachShader(program, vs)
	api.DetachShader(program, fs)
	api.DeleteShader(vs)
	api.DeleteShader(fs)

	var status int32
	api.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status != gl.TRUE {
		log := programLog(api, program)
		api.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link: %s", ErrShaderCompile, log)
	}
	return program, nil
}
