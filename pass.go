package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Pass bundles everything needed to draw with one material: a program, the
// render state, the textures read by its samplers and the values of its
// non-shared uniforms.
type Pass struct {
	State RenderState

	program  *Program
	textures map[string]*Texture
	values   map[string]func(*Uniform)
}

// NewPass creates a pass for p with the default render state.
func NewPass(p *Program) *Pass {
	return &Pass{
		State:    DefaultRenderState(),
		program:  p,
		textures: make(map[string]*Texture),
		values:   make(map[string]func(*Uniform)),
	}
}

// Program returns the pass's program.
func (ps *Pass) Program() *Program { return ps.program }

// SetSamplerTexture binds t to the named sampler whenever the pass is
// applied.
func (ps *Pass) SetSamplerTexture(name string, t *Texture) error {
	if ps.program.Sampler(name) == nil {
		return fmt.Errorf("pass: program has no sampler %s: %w", name, ErrInterfaceMismatch)
	}
	ps.textures[name] = t
	return nil
}

// SamplerTexture returns the texture set for the named sampler, or nil.
func (ps *Pass) SamplerTexture(name string) *Texture { return ps.textures[name] }

func (ps *Pass) store(name string, t Type, set func(*Uniform)) error {
	u := ps.program.Uniform(name)
	if u == nil || u.Type != t {
		return fmt.Errorf("pass: uniform %s missing or not of type %s: %w", name, t, ErrInterfaceMismatch)
	}
	if u.IsShared() {
		return fmt.Errorf("pass: uniform %s is shared: %w", name, ErrInterfaceMismatch)
	}
	ps.values[name] = set
	return nil
}

// SetInt stores an int uniform value.
func (ps *Pass) SetInt(name string, v int32) error {
	return ps.store(name, TypeInt, func(u *Uniform) { u.SetInt(v) })
}

// SetFloat stores a float uniform value.
func (ps *Pass) SetFloat(name string, v float32) error {
	return ps.store(name, TypeFloat, func(u *Uniform) { u.SetFloat(v) })
}

// SetVec2 stores a vec2 uniform value.
func (ps *Pass) SetVec2(name string, v mgl32.Vec2) error {
	return ps.store(name, TypeVec2, func(u *Uniform) { u.SetVec2(v) })
}

// SetVec3 stores a vec3 uniform value.
func (ps *Pass) SetVec3(name string, v mgl32.Vec3) error {
	return ps.store(name, TypeVec3, func(u *Uniform) { u.SetVec3(v) })
}

// SetVec4 stores a vec4 uniform value.
func (ps *Pass) SetVec4(name string, v mgl32.Vec4) error {
	return ps.store(name, TypeVec4, func(u *Uniform) { u.SetVec4(v) })
}

// SetMat3 stores a mat3 uniform value.
func (ps *Pass) SetMat3(name string, m mgl32.Mat3) error {
	return ps.store(name, TypeMat3, func(u *Uniform) { u.SetMat3(m) })
}

// SetMat4 stores a mat4 uniform value.
func (ps *Pass) SetMat4(name string, m mgl32.Mat4) error {
	return ps.store(name, TypeMat4, func(u *Uniform) { u.SetMat4(m) })
}

// Apply makes the pass current on ctx: its state, program, sampler
// textures and stored uniform values.
func (ps *Pass) Apply(ctx *Context) {
	ctx.SetCurrentRenderState(ps.State)
	ctx.SetCurrentProgram(ps.program)

	for _, s := range ps.program.samplers {
		if t, ok := ps.textures[s.Name]; ok {
			ctx.SetCurrentTexture(s.unit, t)
		}
	}
	for _, u := range ps.program.uniforms {
		if set, ok := ps.values[u.Name]; ok {
			set(u)
		}
	}
}
