package render

import "image"

// Device is the graphics backend the package drives. Each method maps to one
// GPU call (or a short fixed sequence of them). The OpenGL implementation
// lives in backend/opengl; rendertest provides a recording fake.
//
// A Device is owned by a single Context and is only called from the thread
// that owns the graphics context.
type Device interface {
	// Capabilities describes optional features of the underlying driver.
	Capabilities() Capabilities

	// Fixed-function state.
	SetEnabled(c Capability, enabled bool)
	SetCullFace(mode CullMode)
	SetBlendFunc(src, dst BlendFactor)
	SetDepthFunc(fn Function)
	SetDepthMask(enabled bool)
	SetColorMask(r, g, b, a bool)
	SetStencilFunc(face Face, fn Function, ref int32, mask uint32)
	SetStencilOp(face Face, stencilFail, depthFail, depthPass StencilOp)
	SetPolygonMode(wireframe bool)
	SetLineWidth(width float32)

	// Buffer objects. CreateBuffer allocates size zeroed bytes and leaves the
	// new buffer bound to target. The data calls operate on the buffer
	// currently bound to target; offsets are in bytes.
	CreateBuffer(target BufferTarget, size int, usage Usage) (uint32, error)
	BufferSubData(target BufferTarget, offset int, data []byte)
	GetBufferSubData(target BufferTarget, offset int, data []byte)
	OrphanBuffer(target BufferTarget, size int, usage Usage)
	BindBuffer(target BufferTarget, buffer uint32)
	DeleteBuffer(buffer uint32)

	// Shaders and programs.
	CompileShader(kind ShaderKind, source string) (uint32, error)
	DeleteShader(shader uint32)
	LinkProgram(vertexShader, fragmentShader uint32) (uint32, error)
	ActiveAttributes(program uint32) []ActiveVariable
	ActiveUniforms(program uint32) []ActiveVariable
	ValidateProgram(program uint32) error
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	SetVertexAttribEnabled(location int32, enabled bool)
	VertexAttribPointer(location int32, c VertexComponent, stride int)
	UniformInt(location int32, v int32)
	UniformFloats(location int32, t Type, v []float32)

	// Textures.
	CreateTexture(width, height int, format PixelFormat, pixels []byte) (uint32, error)
	SetTextureFilter(texture uint32, filter FilterMode)
	SetTextureAnisotropy(texture uint32, anisotropy float32)
	BindTexture(unit int, texture uint32)
	DeleteTexture(texture uint32)

	// Framebuffers. Framebuffer 0 is the window's default framebuffer.
	// CreateFramebuffer restores the previous framebuffer binding.
	CreateFramebuffer(colorTexture uint32) (uint32, error)
	BindFramebuffer(framebuffer uint32)
	DeleteFramebuffer(framebuffer uint32)
	// ReadPixels copies RGBA8 pixels of area from the bound framebuffer into
	// data, bottom row first.
	ReadPixels(area image.Rectangle, data []byte)

	SetViewport(area image.Rectangle)
	SetScissor(area image.Rectangle)
	Clear(mask ClearMask, color [4]float32, depth float32, stencil int32)

	// Draw calls. Offsets and counts are in elements, not bytes.
	DrawArrays(mode PrimitiveType, first, count int)
	DrawElements(mode PrimitiveType, count int, indexType IndexType, first, baseVertex int)
}

// ActiveVariable is one active attribute or uniform reported by the driver
// after a program has been linked.
type ActiveVariable struct {
	Name     string
	Type     Type // TypeUnknown if the driver type has no mapping
	Location int32
}

// Capabilities lists optional driver features. A missing feature is never an
// error; the dependent behavior is skipped.
type Capabilities struct {
	Version              string  // Driver version string
	AnisotropicFiltering bool    // EXT/ARB texture_filter_anisotropic
	MaxAnisotropy        float32 // Valid when AnisotropicFiltering is set
	DebugOutput          bool    // ARB_debug_output
	KHRDebug             bool    // KHR_debug
	MaxTextureUnits      int
	MaxVertexAttributes  int
	Samples              int // Samples of the default framebuffer
}

// Window is the windowing collaborator a Context presents to.
// backend/opengl.Window implements it with GLFW.
type Window interface {
	// FramebufferSize returns the default framebuffer size in pixels.
	FramebufferSize() (width, height int)
	SetSwapInterval(interval int)
	SwapBuffers()
}
