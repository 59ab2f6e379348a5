// Package rendertest provides a recording render.Device for tests.
//
// Device keeps every call it receives, a mirror of the fixed-function state
// those calls produce, and the contents of buffer objects in memory. Shader
// reflection is served by a small scanner over GLSL declarations, so tests
// can link real-looking sources without a GPU.
package rendertest

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/go-theft-auto/render"
)

// Call is one recorded Device method invocation.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type shader struct {
	kind   render.ShaderKind
	source string
}

type program struct {
	attributes []render.ActiveVariable
	uniforms   []render.ActiveVariable
}

type texture struct {
	width, height int
	format        render.PixelFormat
}

// Device is a fake render.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	Caps render.Capabilities

	// Failure injection.
	FailCompile  bool // CompileShader fails; sources containing "#error" always fail
	FailLink     bool
	FailValidate bool
	FailAllocate bool // Buffer, texture and framebuffer creation fail

	calls  []Call
	counts map[string]int
	nextID uint32

	buffers      map[uint32][]byte
	bound        [2]uint32 // Indexed by render.BufferTarget
	shaders      map[uint32]shader
	programs     map[uint32]*program
	textures     map[uint32]texture
	framebuffers map[uint32]uint32 // Framebuffer to color texture

	// Mirror of the state the recorded calls established.
	Enabled        map[render.Capability]bool
	CullFace       render.CullMode
	SrcFactor      render.BlendFactor
	DstFactor      render.BlendFactor
	DepthFunc      render.Function
	DepthMask      bool
	ColorMask      [4]bool
	StencilFunc    [2]render.StencilState // Function, Reference and Mask set
	StencilOps     [2]render.StencilState // StencilFail, DepthFail and DepthPass set
	Wireframe      bool
	LineWidth      float32
	Program        uint32
	AttribEnabled  map[int32]bool
	BoundTextures  map[int]uint32
	Framebuffer    uint32
	ClearColor     [4]float32 // Color of the last color clear; ReadPixels returns it
	Viewport       image.Rectangle
	ScissorArea    image.Rectangle
	UniformValues  map[int32][]float32
	UniformInts    map[int32]int32
	TextureFilters map[uint32]render.FilterMode
	Anisotropy     map[uint32]float32
}

// NewDevice returns a device reporting 16 texture units and attributes and
// no optional features.
func NewDevice() *Device {
	return &Device{
		Caps: render.Capabilities{
			Version:             "rendertest",
			MaxTextureUnits:     16,
			MaxVertexAttributes: 16,
		},
		counts:         make(map[string]int),
		buffers:        make(map[uint32][]byte),
		shaders:        make(map[uint32]shader),
		programs:       make(map[uint32]*program),
		textures:       make(map[uint32]texture),
		framebuffers:   make(map[uint32]uint32),
		Enabled:        make(map[render.Capability]bool),
		AttribEnabled:  make(map[int32]bool),
		BoundTextures:  make(map[int]uint32),
		UniformValues:  make(map[int32][]float32),
		UniformInts:    make(map[int32]int32),
		TextureFilters: make(map[uint32]render.FilterMode),
		Anisotropy:     make(map[uint32]float32),
		ColorMask:      [4]bool{true, true, true, true},
		DepthMask:      true,
		LineWidth:      1,
	}
}

func (d *Device) record(name string, args ...any) {
	d.calls = append(d.calls, Call{Name: name, Args: args})
	d.counts[name]++
}

func (d *Device) newID() uint32 {
	d.nextID++
	return d.nextID
}

// Calls returns every call recorded since the last Reset.
func (d *Device) Calls() []Call { return d.calls }

// Count returns how often the named method was called since the last Reset.
func (d *Device) Count(name string) int { return d.counts[name] }

// Total returns the number of calls recorded since the last Reset.
func (d *Device) Total() int { return len(d.calls) }

// Last returns the most recent call of the named method.
func (d *Device) Last(name string) (Call, bool) {
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].Name == name {
			return d.calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets recorded calls. Objects and mirrored state are kept.
func (d *Device) Reset() {
	d.calls = nil
	clear(d.counts)
}

// Capabilities implements render.Device.
func (d *Device) Capabilities() render.Capabilities { return d.Caps }

// SetEnabled implements render.Device.
func (d *Device) SetEnabled(c render.Capability, enabled bool) {
	d.record("SetEnabled", c, enabled)
	d.Enabled[c] = enabled
}

// SetCullFace implements render.Device.
func (d *Device) SetCullFace(mode render.CullMode) {
	d.record("SetCullFace", mode)
	d.CullFace = mode
}

// SetBlendFunc implements render.Device.
func (d *Device) SetBlendFunc(src, dst render.BlendFactor) {
	d.record("SetBlendFunc", src, dst)
	d.SrcFactor, d.DstFactor = src, dst
}

// SetDepthFunc implements render.Device.
func (d *Device) SetDepthFunc(fn render.Function) {
	d.record("SetDepthFunc", fn)
	d.DepthFunc = fn
}

// SetDepthMask implements render.Device.
func (d *Device) SetDepthMask(enabled bool) {
	d.record("SetDepthMask", enabled)
	d.DepthMask = enabled
}

// SetColorMask implements render.Device.
func (d *Device) SetColorMask(r, g, b, a bool) {
	d.record("SetColorMask", r, g, b, a)
	d.ColorMask = [4]bool{r, g, b, a}
}

// SetStencilFunc implements render.Device.
func (d *Device) SetStencilFunc(face render.Face, fn render.Function, ref int32, mask uint32) {
	d.record("SetStencilFunc", face, fn, ref, mask)
	s := &d.StencilFunc[face]
	s.Function, s.Reference, s.Mask = fn, ref, mask
}

// SetStencilOp implements render.Device.
func (d *Device) SetStencilOp(face render.Face, stencilFail, depthFail, depthPass render.StencilOp) {
	d.record("SetStencilOp", face, stencilFail, depthFail, depthPass)
	s := &d.StencilOps[face]
	s.StencilFail, s.DepthFail, s.DepthPass = stencilFail, depthFail, depthPass
}

// SetPolygonMode implements render.Device.
func (d *Device) SetPolygonMode(wireframe bool) {
	d.record("SetPolygonMode", wireframe)
	d.Wireframe = wireframe
}

// SetLineWidth implements render.Device.
func (d *Device) SetLineWidth(width float32) {
	d.record("SetLineWidth", width)
	d.LineWidth = width
}

// CreateBuffer implements render.Device.
func (d *Device) CreateBuffer(target render.BufferTarget, size int, usage render.Usage) (uint32, error) {
	d.record("CreateBuffer", target, size, usage)
	if d.FailAllocate {
		return 0, errors.New("out of memory")
	}
	id := d.newID()
	d.buffers[id] = make([]byte, size)
	d.bound[target] = id
	return id, nil
}

func (d *Device) boundBuffer(op string, target render.BufferTarget) []byte {
	id := d.bound[target]
	data, ok := d.buffers[id]
	if !ok {
		panic(fmt.Sprintf("rendertest: %s with no buffer bound to target %d", op, int(target)))
	}
	return data
}

// BufferSubData implements render.Device.
func (d *Device) BufferSubData(target render.BufferTarget, offset int, data []byte) {
	d.record("BufferSubData", target, offset, len(data))
	buf := d.boundBuffer("BufferSubData", target)
	if offset < 0 || offset+len(data) > len(buf) {
		panic(fmt.Sprintf("rendertest: BufferSubData [%d, %d) outside buffer of %d bytes", offset, offset+len(data), len(buf)))
	}
	copy(buf[offset:], data)
}

// GetBufferSubData implements render.Device.
func (d *Device) GetBufferSubData(target render.BufferTarget, offset int, data []byte) {
	d.record("GetBufferSubData", target, offset, len(data))
	buf := d.boundBuffer("GetBufferSubData", target)
	if offset < 0 || offset+len(data) > len(buf) {
		panic(fmt.Sprintf("rendertest: GetBufferSubData [%d, %d) outside buffer of %d bytes", offset, offset+len(data), len(buf)))
	}
	copy(data, buf[offset:])
}

// OrphanBuffer implements render.Device.
func (d *Device) OrphanBuffer(target render.BufferTarget, size int, usage render.Usage) {
	d.record("OrphanBuffer", target, size, usage)
	d.boundBuffer("OrphanBuffer", target)
	d.buffers[d.bound[target]] = make([]byte, size)
}

// BindBuffer implements render.Device.
func (d *Device) BindBuffer(target render.BufferTarget, buffer uint32) {
	d.record("BindBuffer", target, buffer)
	d.bound[target] = buffer
}

// DeleteBuffer implements render.Device.
func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer", buffer)
	delete(d.buffers, buffer)
	for t, id := range d.bound {
		if id == buffer {
			d.bound[t] = 0
		}
	}
}

// BufferData returns the contents of a live buffer object.
func (d *Device) BufferData(buffer uint32) []byte { return d.buffers[buffer] }

// BoundBuffer returns the buffer bound to target.
func (d *Device) BoundBuffer(target render.BufferTarget) uint32 { return d.bound[target] }

// Buffers returns the number of live buffer objects.
func (d *Device) Buffers() int { return len(d.buffers) }

// CompileShader implements render.Device.
func (d *Device) CompileShader(kind render.ShaderKind, source string) (uint32, error) {
	d.record("CompileShader", kind)
	if d.FailCompile || strings.Contains(source, "#error") {
		return 0, errors.New("0:1(1): error: syntax error")
	}
	id := d.newID()
	d.shaders[id] = shader{kind: kind, source: source}
	return id, nil
}

// DeleteShader implements render.Device.
func (d *Device) DeleteShader(id uint32) {
	d.record("DeleteShader", id)
	delete(d.shaders, id)
}

// LinkProgram implements render.Device.
func (d *Device) LinkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	d.record("LinkProgram", vertexShader, fragmentShader)
	vs, ok := d.shaders[vertexShader]
	if !ok || vs.kind != render.VertexShader {
		return 0, errors.New("error: no vertex shader attached")
	}
	fs, ok := d.shaders[fragmentShader]
	if !ok || fs.kind != render.FragmentShader {
		return 0, errors.New("error: no fragment shader attached")
	}
	if d.FailLink {
		return 0, errors.New("error: linking failed")
	}

	p := &program{}
	for i, v := range scan(vs.source, "in", "attribute") {
		v.Location = int32(i)
		p.attributes = append(p.attributes, v)
	}
	seen := make(map[string]bool)
	for _, src := range []string{vs.source, fs.source} {
		for _, v := range scan(src, "uniform") {
			if seen[v.Name] {
				continue
			}
			seen[v.Name] = true
			v.Location = int32(len(p.uniforms))
			p.uniforms = append(p.uniforms, v)
		}
	}

	id := d.newID()
	d.programs[id] = p
	return id, nil
}

var declaration = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(\w+)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(\[\s*\d+\s*\])?\s*;`)

// scan returns the variables declared with one of the given qualifiers.
func scan(source string, qualifiers ...string) []render.ActiveVariable {
	var vars []render.ActiveVariable
	for _, m := range declaration.FindAllStringSubmatch(source, -1) {
		match := false
		for _, q := range qualifiers {
			if m[1] == q {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		name := m[3]
		if m[4] != "" {
			name += "[0]"
		}
		vars = append(vars, render.ActiveVariable{Name: name, Type: render.ParseType(m[2])})
	}
	return vars
}

// ActiveAttributes implements render.Device.
func (d *Device) ActiveAttributes(id uint32) []render.ActiveVariable {
	d.record("ActiveAttributes", id)
	if p, ok := d.programs[id]; ok {
		return p.attributes
	}
	return nil
}

// ActiveUniforms implements render.Device.
func (d *Device) ActiveUniforms(id uint32) []render.ActiveVariable {
	d.record("ActiveUniforms", id)
	if p, ok := d.programs[id]; ok {
		return p.uniforms
	}
	return nil
}

// ValidateProgram implements render.Device.
func (d *Device) ValidateProgram(id uint32) error {
	d.record("ValidateProgram", id)
	if d.FailValidate {
		return errors.New("validation failed: sampler units conflict")
	}
	return nil
}

// UseProgram implements render.Device.
func (d *Device) UseProgram(id uint32) {
	d.record("UseProgram", id)
	d.Program = id
}

// DeleteProgram implements render.Device.
func (d *Device) DeleteProgram(id uint32) {
	d.record("DeleteProgram", id)
	delete(d.programs, id)
}

// Programs returns the number of live program objects.
func (d *Device) Programs() int { return len(d.programs) }

// SetVertexAttribEnabled implements render.Device.
func (d *Device) SetVertexAttribEnabled(location int32, enabled bool) {
	d.record("SetVertexAttribEnabled", location, enabled)
	d.AttribEnabled[location] = enabled
}

// VertexAttribPointer implements render.Device.
func (d *Device) VertexAttribPointer(location int32, c render.VertexComponent, stride int) {
	d.record("VertexAttribPointer", location, c.Name, c.Offset, stride)
}

// UniformInt implements render.Device.
func (d *Device) UniformInt(location int32, v int32) {
	d.record("UniformInt", location, v)
	d.UniformInts[location] = v
}

// UniformFloats implements render.Device.
func (d *Device) UniformFloats(location int32, t render.Type, v []float32) {
	d.record("UniformFloats", location, t)
	d.UniformValues[location] = append([]float32(nil), v...)
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(width, height int, format render.PixelFormat, pixels []byte) (uint32, error) {
	d.record("CreateTexture", width, height, format)
	if d.FailAllocate {
		return 0, errors.New("out of memory")
	}
	id := d.newID()
	d.textures[id] = texture{width: width, height: height, format: format}
	return id, nil
}

// SetTextureFilter implements render.Device.
func (d *Device) SetTextureFilter(id uint32, filter render.FilterMode) {
	d.record("SetTextureFilter", id, filter)
	d.TextureFilters[id] = filter
}

// SetTextureAnisotropy implements render.Device.
func (d *Device) SetTextureAnisotropy(id uint32, anisotropy float32) {
	d.record("SetTextureAnisotropy", id, anisotropy)
	d.Anisotropy[id] = anisotropy
}

// BindTexture implements render.Device.
func (d *Device) BindTexture(unit int, id uint32) {
	d.record("BindTexture", unit, id)
	d.BoundTextures[unit] = id
}

// DeleteTexture implements render.Device.
func (d *Device) DeleteTexture(id uint32) {
	d.record("DeleteTexture", id)
	delete(d.textures, id)
}

// Textures returns the number of live texture objects.
func (d *Device) Textures() int { return len(d.textures) }

// CreateFramebuffer implements render.Device.
func (d *Device) CreateFramebuffer(colorTexture uint32) (uint32, error) {
	d.record("CreateFramebuffer", colorTexture)
	if d.FailAllocate {
		return 0, errors.New("framebuffer incomplete attachment")
	}
	if _, ok := d.textures[colorTexture]; !ok {
		return 0, errors.New("framebuffer missing attachment")
	}
	id := d.newID()
	d.framebuffers[id] = colorTexture
	return id, nil
}

// BindFramebuffer implements render.Device.
func (d *Device) BindFramebuffer(id uint32) {
	d.record("BindFramebuffer", id)
	d.Framebuffer = id
}

// DeleteFramebuffer implements render.Device.
func (d *Device) DeleteFramebuffer(id uint32) {
	d.record("DeleteFramebuffer", id)
	delete(d.framebuffers, id)
}

// SetViewport implements render.Device.
func (d *Device) SetViewport(area image.Rectangle) {
	d.record("SetViewport", area)
	d.Viewport = area
}

// SetScissor implements render.Device.
func (d *Device) SetScissor(area image.Rectangle) {
	d.record("SetScissor", area)
	d.ScissorArea = area
}

// Clear implements render.Device.
func (d *Device) Clear(mask render.ClearMask, color [4]float32, depth float32, stencil int32) {
	d.record("Clear", mask, color, depth, stencil)
	if mask&render.ClearColor != 0 {
		d.ClearColor = color
	}
}

// ReadPixels implements render.Device. Every pixel has the last clear color.
func (d *Device) ReadPixels(area image.Rectangle, data []byte) {
	d.record("ReadPixels", area)
	var px [4]byte
	for i, c := range d.ClearColor {
		px[i] = byte(min(max(c, 0), 1)*255 + 0.5)
	}
	for i := 0; i+4 <= len(data) && i < area.Dx()*area.Dy()*4; i += 4 {
		copy(data[i:], px[:])
	}
}

// DrawArrays implements render.Device.
func (d *Device) DrawArrays(mode render.PrimitiveType, first, count int) {
	d.record("DrawArrays", mode, first, count)
}

// DrawElements implements render.Device.
func (d *Device) DrawElements(mode render.PrimitiveType, count int, indexType render.IndexType, first, baseVertex int) {
	d.record("DrawElements", mode, count, indexType, first, baseVertex)
}

var _ render.Device = (*Device)(nil)
