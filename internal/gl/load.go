package gl

import (
	"github.com/ebitengine/purego"

	"github.com/gogpu/overlay/internal/dylib"
)

// Load resolves every API entry point through the resolver and binds it with
// purego. All symbols are resolved up front: a context that cannot supply
// the full set fails here, before any hook is installed, rather than at an
// arbitrary call during a frame.
func Load(r *dylib.Resolver) (*API, error) {
	api := new(API)
	for _, e := range []struct {
		name string
		fptr any
	}{
		{"glGetError", &api.GetError},

		{"glCreateShader", &api.CreateShader},
		{"glShaderSource", &api.ShaderSource},
		{"glCompileShader", &api.CompileShader},
		{"glGetShaderiv", &api.GetShaderiv},
		{"glGetShaderInfoLog", &api.GetShaderInfoLog},
		{"glDeleteShader", &api.DeleteShader},
		{"glCreateProgram", &api.CreateProgram},
		{"glAttachShader", &api.AttachShader},
		{"glLinkProgram", &api.LinkProgram},
		{"glGetProgramiv", &api.GetProgramiv},
		{"glGetProgramInfoLog", &api.GetProgramInfoLog},
		{"glDetachShader", &api.DetachShader},
		{"glDeleteProgram", &api.DeleteProgram},
		{"glUseProgram", &api.UseProgram},

		{"glGetUniformLocation", &api.GetUniformLocation},
		{"glGetAttribLocation", &api.GetAttribLocation},
		{"glUniform1i", &api.Uniform1i},
		{"glUniform2f", &api.Uniform2f},

		{"glGenVertexArrays", &api.GenVertexArrays},
		{"glBindVertexArray", &api.BindVertexArray},
		{"glDeleteVertexArrays", &api.DeleteVertexArrays},
		{"glGenBuffers", &api.GenBuffers},
		{"glBindBuffer", &api.BindBuffer},
		{"glBufferData", &api.BufferData},
		{"glBufferSubData", &api.BufferSubData},
		{"glDeleteBuffers", &api.DeleteBuffers},
		{"glEnableVertexAttribArray", &api.EnableVertexAttribArray},
		{"glVertexAttribPointer", &api.VertexAttribPointer},
		{"glDrawElements", &api.DrawElements},

		{"glGenTextures", &api.GenTextures},
		{"glBindTexture", &api.BindTexture},
		{"glDeleteTextures", &api.DeleteTextures},
		{"glTexParameteri", &api.TexParameteri},
		{"glTexImage2D", &api.TexImage2D},
		{"glTexSubImage2D", &api.TexSubImage2D},
		{"glPixelStorei", &api.PixelStorei},
		{"glActiveTexture", &api.ActiveTexture},

		{"glEnable", &api.Enable},
		{"glDisable", &api.Disable},
		{"glIsEnabled", &api.IsEnabled},
		{"glBlendFunc", &api.BlendFunc},
		{"glScissor", &api.Scissor},
		{"glViewport", &api.Viewport},
		{"glGetIntegerv", &api.GetIntegerv},
	} {
		addr, err := r.Lookup(e.name)
		if err != nil {
			return nil, err
		}
		purego.RegisterFunc(e.fptr, addr)
	}
	return api, nil
}
