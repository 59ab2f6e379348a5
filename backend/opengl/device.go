// Package opengl implements render.Device on OpenGL 4.1 core and
// render.Window on GLFW.
package opengl

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/render"
)

// Device drives the OpenGL context current on the calling thread.
// Viewport and scissor areas are in framebuffer pixels with the origin at
// the bottom left.
type Device struct {
	caps render.Capabilities
	vao  uint32

	// Depth-stencil renderbuffers attached to offscreen framebuffers.
	renderbuffers map[uint32]uint32
}

// NewDevice loads the GL entry points and queries the driver. The GL
// context must be current on the calling thread.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{renderbuffers: make(map[uint32]uint32)}
	d.caps = queryCapabilities()

	// Core profile requires a bound vertex array for attribute state.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	return d, nil
}

func queryCapabilities() render.Capabilities {
	caps := render.Capabilities{Version: gl.GoStr(gl.GetString(gl.VERSION))}

	var n int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &n)
	caps.MaxTextureUnits = int(n)
	gl.GetIntegerv(gl.MAX_VERTEX_ATTRIBS, &n)
	caps.MaxVertexAttributes = int(n)
	gl.GetIntegerv(gl.SAMPLES, &n)
	caps.Samples = int(n)

	extensions := make(map[string]bool)
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := range uint32(n) {
		extensions[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i))] = true
	}

	if extensions["GL_EXT_texture_filter_anisotropic"] || extensions["GL_ARB_texture_filter_anisotropic"] {
		caps.AnisotropicFiltering = true
		gl.GetFloatv(maxTextureMaxAnisotropy, &caps.MaxAnisotropy)
	}
	caps.DebugOutput = extensions["GL_ARB_debug_output"]
	caps.KHRDebug = extensions["GL_KHR_debug"]
	return caps
}

// Capabilities implements render.Device.
func (d *Device) Capabilities() render.Capabilities { return d.caps }

// Delete releases the device's vertex array.
func (d *Device) Delete() {
	if d.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// SetEnabled implements render.Device.
func (d *Device) SetEnabled(c render.Capability, enabled bool) {
	if enabled {
		gl.Enable(glCapability(c))
	} else {
		gl.Disable(glCapability(c))
	}
}

// SetCullFace implements render.Device.
func (d *Device) SetCullFace(mode render.CullMode) { gl.CullFace(glCullMode(mode)) }

// SetBlendFunc implements render.Device.
func (d *Device) SetBlendFunc(src, dst render.BlendFactor) {
	gl.BlendFunc(glBlendFactor(src), glBlendFactor(dst))
}

// SetDepthFunc implements render.Device.
func (d *Device) SetDepthFunc(fn render.Function) { gl.DepthFunc(glFunction(fn)) }

// SetDepthMask implements render.Device.
func (d *Device) SetDepthMask(enabled bool) { gl.DepthMask(enabled) }

// SetColorMask implements render.Device.
func (d *Device) SetColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

// SetStencilFunc implements render.Device.
func (d *Device) SetStencilFunc(face render.Face, fn render.Function, ref int32, mask uint32) {
	gl.StencilFuncSeparate(glFace(face), glFunction(fn), ref, mask)
}

// SetStencilOp implements render.Device.
func (d *Device) SetStencilOp(face render.Face, stencilFail, depthFail, depthPass render.StencilOp) {
	gl.StencilOpSeparate(glFace(face), glStencilOp(stencilFail), glStencilOp(depthFail), glStencilOp(depthPass))
}

// SetPolygonMode implements render.Device.
func (d *Device) SetPolygonMode(wireframe bool) {
	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// SetLineWidth implements render.Device.
func (d *Device) SetLineWidth(width float32) { gl.LineWidth(width) }

// CreateBuffer implements render.Device.
func (d *Device) CreateBuffer(target render.BufferTarget, size int, usage render.Usage) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(glTarget(target), id)
	// BufferData with nil leaves the storage undefined.
	var data unsafe.Pointer
	if size > 0 {
		zero := make([]byte, size)
		data = gl.Ptr(&zero[0])
	}
	gl.BufferData(glTarget(target), size, data, glUsage(usage))
	if err := glError(); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	return id, nil
}

// BufferSubData implements render.Device.
func (d *Device) BufferSubData(target render.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(glTarget(target), offset, len(data), gl.Ptr(&data[0]))
}

// GetBufferSubData implements render.Device.
func (d *Device) GetBufferSubData(target render.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.GetBufferSubData(glTarget(target), offset, len(data), gl.Ptr(&data[0]))
}

// OrphanBuffer implements render.Device.
func (d *Device) OrphanBuffer(target render.BufferTarget, size int, usage render.Usage) {
	gl.BufferData(glTarget(target), size, nil, glUsage(usage))
}

// BindBuffer implements render.Device.
func (d *Device) BindBuffer(target render.BufferTarget, buffer uint32) {
	gl.BindBuffer(glTarget(target), buffer)
}

// DeleteBuffer implements render.Device.
func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

// CompileShader implements render.Device. The error carries the compiler's
// info log.
func (d *Device) CompileShader(kind render.ShaderKind, source string) (uint32, error) {
	shader := gl.CreateShader(glShaderKind(kind))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, errors.New(strings.TrimRight(string(log), "\x00\n"))
	}
	return shader, nil
}

// DeleteShader implements render.Device.
func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

// LinkProgram implements render.Device. The error carries the linker's info
// log.
func (d *Device) LinkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		err := errors.New(programInfoLog(program))
		gl.DeleteProgram(program)
		return 0, err
	}
	return program, nil
}

func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := make([]byte, logLength+1)
	gl.GetProgramInfoLog(program, logLength, nil, &log[0])
	return strings.TrimRight(string(log), "\x00\n")
}

type activeFunc func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

func activeVariables(program uint32, countParam, lengthParam uint32, active activeFunc, location func(uint32, *uint8) int32) []render.ActiveVariable {
	var count, maxLength int32
	gl.GetProgramiv(program, countParam, &count)
	gl.GetProgramiv(program, lengthParam, &maxLength)
	if count == 0 {
		return nil
	}

	vars := make([]render.ActiveVariable, 0, count)
	buf := make([]byte, maxLength+1)
	for i := range uint32(count) {
		var length, size int32
		var xtype uint32
		active(program, i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		vars = append(vars, render.ActiveVariable{
			Name:     name,
			Type:     renderType(xtype),
			Location: location(program, gl.Str(name+"\x00")),
		})
	}
	return vars
}

// ActiveAttributes implements render.Device.
func (d *Device) ActiveAttributes(program uint32) []render.ActiveVariable {
	return activeVariables(program, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib, gl.GetAttribLocation)
}

// ActiveUniforms implements render.Device.
func (d *Device) ActiveUniforms(program uint32) []render.ActiveVariable {
	return activeVariables(program, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform, gl.GetUniformLocation)
}

// ValidateProgram implements render.Device.
func (d *Device) ValidateProgram(program uint32) error {
	gl.ValidateProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.VALIDATE_STATUS, &status)
	if status == gl.FALSE {
		return errors.New(programInfoLog(program))
	}
	return nil
}

// UseProgram implements render.Device.
func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

// DeleteProgram implements render.Device.
func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

// SetVertexAttribEnabled implements render.Device.
func (d *Device) SetVertexAttribEnabled(location int32, enabled bool) {
	if enabled {
		gl.EnableVertexAttribArray(uint32(location))
	} else {
		gl.DisableVertexAttribArray(uint32(location))
	}
}

// VertexAttribPointer implements render.Device.
func (d *Device) VertexAttribPointer(location int32, c render.VertexComponent, stride int) {
	xtype, normalized := uint32(gl.FLOAT), false
	if c.Type == render.ComponentUint8Norm {
		xtype, normalized = gl.UNSIGNED_BYTE, true
	}
	gl.VertexAttribPointerWithOffset(uint32(location), int32(c.Count), xtype, normalized, int32(stride), uintptr(c.Offset))
}

// UniformInt implements render.Device.
func (d *Device) UniformInt(location int32, v int32) { gl.Uniform1i(location, v) }

// UniformFloats implements render.Device.
func (d *Device) UniformFloats(location int32, t render.Type, v []float32) {
	switch t {
	case render.TypeFloat:
		gl.Uniform1fv(location, 1, &v[0])
	case render.TypeVec2:
		gl.Uniform2fv(location, 1, &v[0])
	case render.TypeVec3:
		gl.Uniform3fv(location, 1, &v[0])
	case render.TypeVec4:
		gl.Uniform4fv(location, 1, &v[0])
	case render.TypeMat2:
		gl.UniformMatrix2fv(location, 1, false, &v[0])
	case render.TypeMat3:
		gl.UniformMatrix3fv(location, 1, false, &v[0])
	case render.TypeMat4:
		gl.UniformMatrix4fv(location, 1, false, &v[0])
	default:
		panic(fmt.Sprintf("opengl: no float upload for uniform type %s", t))
	}
}

// withTexture runs fn with texture bound to the active unit, restoring the
// previous binding afterwards.
func withTexture(texture uint32, fn func()) {
	var prev int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &prev)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	fn()
	gl.BindTexture(gl.TEXTURE_2D, uint32(prev))
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(width, height int, format render.PixelFormat, pixels []byte) (uint32, error) {
	internal, client := glPixelFormat(format)
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(&pixels[0])
	}

	var id uint32
	gl.GenTextures(1, &id)
	withTexture(id, func() {
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, client, gl.UNSIGNED_BYTE, ptr)
	})
	if err := glError(); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return id, nil
}

// SetTextureFilter implements render.Device.
func (d *Device) SetTextureFilter(texture uint32, filter render.FilterMode) {
	withTexture(texture, func() {
		switch filter {
		case render.FilterNearest:
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		case render.FilterLinear:
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		case render.FilterTrilinear:
			gl.GenerateMipmap(gl.TEXTURE_2D)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		default:
			panic(fmt.Sprintf("opengl: invalid filter mode %d", int(filter)))
		}
	})
}

// SetTextureAnisotropy implements render.Device.
func (d *Device) SetTextureAnisotropy(texture uint32, anisotropy float32) {
	if !d.caps.AnisotropicFiltering {
		return
	}
	withTexture(texture, func() {
		gl.TexParameterf(gl.TEXTURE_2D, textureMaxAnisotropy, anisotropy)
	})
}

// BindTexture implements render.Device.
func (d *Device) BindTexture(unit int, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

// DeleteTexture implements render.Device.
func (d *Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

// CreateFramebuffer implements render.Device. A depth-stencil renderbuffer
// the size of the color texture is attached alongside it.
func (d *Device) CreateFramebuffer(colorTexture uint32) (uint32, error) {
	var width, height int32
	withTexture(colorTexture, func() {
		gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_WIDTH, &width)
		gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_HEIGHT, &height)
	})

	var prev int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prev)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))

	var fb, rb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, colorTexture, 0)

	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, width, height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rb)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb)
		gl.DeleteRenderbuffers(1, &rb)
		return 0, fmt.Errorf("framebuffer status 0x%X", status)
	}
	d.renderbuffers[fb] = rb
	return fb, nil
}

// BindFramebuffer implements render.Device.
func (d *Device) BindFramebuffer(framebuffer uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
}

// DeleteFramebuffer implements render.Device.
func (d *Device) DeleteFramebuffer(framebuffer uint32) {
	if rb, ok := d.renderbuffers[framebuffer]; ok {
		gl.DeleteRenderbuffers(1, &rb)
		delete(d.renderbuffers, framebuffer)
	}
	gl.DeleteFramebuffers(1, &framebuffer)
}

// ReadPixels implements render.Device.
func (d *Device) ReadPixels(area image.Rectangle, data []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(area.Min.X), int32(area.Min.Y), int32(area.Dx()), int32(area.Dy()),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
}

// SetViewport implements render.Device.
func (d *Device) SetViewport(area image.Rectangle) {
	gl.Viewport(int32(area.Min.X), int32(area.Min.Y), int32(area.Dx()), int32(area.Dy()))
}

// SetScissor implements render.Device.
func (d *Device) SetScissor(area image.Rectangle) {
	gl.Scissor(int32(area.Min.X), int32(area.Min.Y), int32(area.Dx()), int32(area.Dy()))
}

// Clear implements render.Device.
func (d *Device) Clear(mask render.ClearMask, color [4]float32, depth float32, stencil int32) {
	var bits uint32
	if mask&render.ClearColor != 0 {
		gl.ClearColor(color[0], color[1], color[2], color[3])
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&render.ClearDepth != 0 {
		gl.ClearDepth(float64(depth))
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&render.ClearStencil != 0 {
		gl.ClearStencil(stencil)
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

// DrawArrays implements render.Device.
func (d *Device) DrawArrays(mode render.PrimitiveType, first, count int) {
	gl.DrawArrays(glPrimitive(mode), int32(first), int32(count))
}

// DrawElements implements render.Device.
func (d *Device) DrawElements(mode render.PrimitiveType, count int, indexType render.IndexType, first, baseVertex int) {
	gl.DrawElementsBaseVertexWithOffset(
		glPrimitive(mode),
		int32(count),
		glIndexType(indexType),
		uintptr(first*indexType.Size()),
		int32(baseVertex),
	)
}

// glError returns the oldest pending GL error, if any.
func glError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		if code == gl.OUT_OF_MEMORY {
			return errors.New("out of GPU memory")
		}
		return fmt.Errorf("GL error 0x%X", code)
	}
	return nil
}

var _ render.Device = (*Device)(nil)
