package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader is a compiled shader stage, consumed by CreateProgram.
type Shader struct {
	ctx  *Context
	id   uint32
	kind ShaderKind
}

// CreateShader compiles source for the given stage. On failure the
// compiler's diagnostic is logged and returned.
func CreateShader(ctx *Context, kind ShaderKind, source string) (*Shader, error) {
	id, err := ctx.device.CompileShader(kind, source)
	if err != nil {
		logger.Error("shader compilation failed", "stage", kind.String(), "log", err.Error())
		return nil, fmt.Errorf("compile %s shader: %w: %w", kind, ErrCompileFailed, err)
	}
	return &Shader{ctx: ctx, id: id, kind: kind}, nil
}

// Kind returns the stage the shader was compiled for.
func (s *Shader) Kind() ShaderKind { return s.kind }

// Delete releases the shader object. Programs already linked from it are
// unaffected.
func (s *Shader) Delete() {
	if s.id == 0 {
		return
	}
	s.ctx.device.DeleteShader(s.id)
	s.id = 0
}

// SharedID identifies one of the engine-supplied uniforms registered with
// Context.CreateSharedUniform.
type SharedID int

// SharedNone marks a uniform the caller must set for every draw.
const SharedNone SharedID = -1

// Attribute is an active vertex input of a linked program.
type Attribute struct {
	Name     string
	Type     Type
	Location int32
}

// Uniform is an active non-sampler uniform of a linked program.
type Uniform struct {
	Name     string
	Type     Type
	Location int32
	SharedID SharedID // SharedNone unless supplied by SharedProgramState

	program *Program
	removed bool
}

// IsShared reports whether the uniform is supplied by SharedProgramState.
func (u *Uniform) IsShared() bool { return u.SharedID != SharedNone }

// Active reports whether the uniform still exists in its program. A reload
// that drops the declaration deactivates existing handles.
func (u *Uniform) Active() bool { return !u.removed }

func (u *Uniform) usable(t Type) bool {
	if u.removed {
		logger.Error("uniform no longer active in its program", "uniform", u.Name)
		return false
	}
	if u.Type != t {
		logger.Error("uniform type mismatch", "uniform", u.Name, "declared", u.Type.String(), "given", t.String())
		return false
	}
	if u.program.ctx.currentProgram != u.program {
		logger.Error("uniform set while its program is not current", "uniform", u.Name)
		return false
	}
	return true
}

// SetInt sets an int uniform.
func (u *Uniform) SetInt(v int32) {
	if u.usable(TypeInt) {
		u.program.ctx.device.UniformInt(u.Location, v)
	}
}

// SetFloat sets a float uniform.
func (u *Uniform) SetFloat(v float32) {
	if u.usable(TypeFloat) {
		u.program.ctx.device.UniformFloats(u.Location, TypeFloat, []float32{v})
	}
}

// SetVec2 sets a vec2 uniform.
func (u *Uniform) SetVec2(v mgl32.Vec2) {
	if u.usable(TypeVec2) {
		u.program.ctx.device.UniformFloats(u.Location, TypeVec2, v[:])
	}
}

// SetVec3 sets a vec3 uniform.
func (u *Uniform) SetVec3(v mgl32.Vec3) {
	if u.usable(TypeVec3) {
		u.program.ctx.device.UniformFloats(u.Location, TypeVec3, v[:])
	}
}

// SetVec4 sets a vec4 uniform.
func (u *Uniform) SetVec4(v mgl32.Vec4) {
	if u.usable(TypeVec4) {
		u.program.ctx.device.UniformFloats(u.Location, TypeVec4, v[:])
	}
}

// SetMat2 sets a mat2 uniform.
func (u *Uniform) SetMat2(m mgl32.Mat2) {
	if u.usable(TypeMat2) {
		u.program.ctx.device.UniformFloats(u.Location, TypeMat2, m[:])
	}
}

// SetMat3 sets a mat3 uniform.
func (u *Uniform) SetMat3(m mgl32.Mat3) {
	if u.usable(TypeMat3) {
		u.program.ctx.device.UniformFloats(u.Location, TypeMat3, m[:])
	}
}

// SetMat4 sets a mat4 uniform.
func (u *Uniform) SetMat4(m mgl32.Mat4) {
	if u.usable(TypeMat4) {
		u.program.ctx.device.UniformFloats(u.Location, TypeMat4, m[:])
	}
}

// Sampler is an active sampler uniform of a linked program. Texture units
// are assigned in declaration order each time the program is made current.
type Sampler struct {
	Name     string
	Type     Type
	Location int32

	unit    int
	removed bool
}

// Unit returns the texture unit the sampler reads from.
func (s *Sampler) Unit() int { return s.unit }

// Active reports whether the sampler still exists in its program.
func (s *Sampler) Active() bool { return !s.removed }

// Program is a linked shader program together with its reflected
// attributes, uniforms and samplers.
type Program struct {
	ctx        *Context
	id         uint32
	attributes []Attribute
	uniforms   []*Uniform
	samplers   []*Sampler
}

// CreateProgram links a vertex and a fragment shader into a program and
// reflects its interface. On link failure the linker's diagnostic is logged
// and returned.
func CreateProgram(ctx *Context, vs, fs *Shader) (*Program, error) {
	if vs == nil || vs.kind != VertexShader || fs == nil || fs.kind != FragmentShader {
		return nil, fmt.Errorf("create program: need one vertex and one fragment shader: %w", ErrLinkFailed)
	}

	id, err := ctx.device.LinkProgram(vs.id, fs.id)
	if err != nil {
		logger.Error("program linking failed", "log", err.Error())
		return nil, fmt.Errorf("link program: %w: %w", ErrLinkFailed, err)
	}

	p := &Program{ctx: ctx, id: id}
	p.reflect()
	ctx.stats.ProgramCount++
	return p, nil
}

// CreateProgramFromSource compiles both stages and links them. The shader
// objects are released once the program is linked.
func CreateProgramFromSource(ctx *Context, vertexSource, fragmentSource string) (*Program, error) {
	vs, err := CreateShader(ctx, VertexShader, vertexSource)
	if err != nil {
		return nil, err
	}
	defer vs.Delete()

	fs, err := CreateShader(ctx, FragmentShader, fragmentSource)
	if err != nil {
		return nil, err
	}
	defer fs.Delete()

	return CreateProgram(ctx, vs, fs)
}

func (p *Program) reflect() {
	for _, v := range p.ctx.device.ActiveAttributes(p.id) {
		if strings.HasPrefix(v.Name, "gl_") {
			continue
		}
		if !v.Type.IsAttribute() {
			logger.Error("unsupported vertex attribute type", "attribute", v.Name, "type", v.Type.String())
			continue
		}
		p.attributes = append(p.attributes, Attribute{Name: v.Name, Type: v.Type, Location: v.Location})
	}

	for _, v := range p.ctx.device.ActiveUniforms(p.id) {
		// Arrays are reported by their first element.
		name := strings.TrimSuffix(v.Name, "[0]")
		if strings.HasPrefix(name, "gl_") {
			continue
		}

		switch {
		case v.Type.IsSampler():
			p.samplers = append(p.samplers, &Sampler{Name: name, Type: v.Type, Location: v.Location})
		case v.Type.IsUniform():
			p.uniforms = append(p.uniforms, &Uniform{
				Name:     name,
				Type:     v.Type,
				Location: v.Location,
				SharedID: p.ctx.SharedUniformID(name, v.Type),
				program:  p,
			})
		default:
			logger.Error("unsupported uniform type", "uniform", name, "type", v.Type.String())
		}
	}
}

// ID returns the GPU program object name.
func (p *Program) ID() uint32 { return p.id }

// Attributes returns the active vertex inputs.
func (p *Program) Attributes() []Attribute { return p.attributes }

// Attribute looks up an active vertex input by name.
func (p *Program) Attribute(name string) (Attribute, bool) {
	for _, a := range p.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Uniforms returns the active non-sampler uniforms.
func (p *Program) Uniforms() []*Uniform { return p.uniforms }

// Uniform looks up an active uniform by name, returning nil if absent.
func (p *Program) Uniform(name string) *Uniform {
	for _, u := range p.uniforms {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Samplers returns the active samplers.
func (p *Program) Samplers() []*Sampler { return p.samplers }

// Sampler looks up an active sampler by name, returning nil if absent.
func (p *Program) Sampler(name string) *Sampler {
	for _, s := range p.samplers {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// IsValid runs the driver's validation against the current GPU state.
// Failures are logged at error level. Intended for debug builds only.
func (p *Program) IsValid() bool {
	if err := p.ctx.device.ValidateProgram(p.id); err != nil {
		logger.Error("program validation failed", "program", p.id, "log", err.Error())
		return false
	}
	return true
}

// checkFormat verifies that every attribute has a same-named component of
// matching width in format.
func (p *Program) checkFormat(format VertexFormat) error {
	for _, a := range p.attributes {
		c, ok := format.Component(a.Name)
		if !ok {
			return fmt.Errorf("attribute %s missing from vertex format %q: %w", a.Name, format.String(), ErrIncompatibleFormat)
		}
		if c.Count != a.Type.Components() {
			return fmt.Errorf("attribute %s of type %s does not match component %d%c: %w",
				a.Name, a.Type, c.Count, c.Type.code(), ErrIncompatibleFormat)
		}
	}
	return nil
}

// bind makes the program current, enables its attribute arrays and assigns
// texture units to its samplers.
func (p *Program) bind() {
	d := p.ctx.device
	d.UseProgram(p.id)
	for _, a := range p.attributes {
		d.SetVertexAttribEnabled(a.Location, true)
	}
	for i, s := range p.samplers {
		s.unit = i
		d.UniformInt(s.Location, int32(i))
	}
}

// disableAttributes disables the attribute arrays enabled by bind.
func (p *Program) disableAttributes() {
	for _, a := range p.attributes {
		p.ctx.device.SetVertexAttribEnabled(a.Location, false)
	}
}

// setAttributePointers points every attribute at its component in format.
func (p *Program) setAttributePointers(format VertexFormat) {
	for _, a := range p.attributes {
		c, _ := format.Component(a.Name)
		p.ctx.device.VertexAttribPointer(a.Location, c, format.Size())
	}
}

// Delete releases the program object.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	if p.ctx.currentProgram == p {
		p.ctx.SetCurrentProgram(nil)
	}
	p.ctx.device.DeleteProgram(p.id)
	p.ctx.stats.ProgramCount--
	p.id = 0
}
