package render

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// sharedUniform is a declaration made with CreateSharedUniform.
type sharedUniform struct {
	name string
	typ  Type
	id   SharedID
}

// Context owns one graphics context: its Device, the state cache, the
// current program, textures and render target, the transient vertex pool
// and the frame statistics.
//
// A Context must only be used from the thread that owns the graphics
// context. Nothing in it is safe for concurrent use.
type Context struct {
	device Device
	window Window // nil when rendering offscreen
	caps   Capabilities

	// Configuration
	granularity int
	debug       bool
	clock       func() time.Time

	cache *StateCache
	stats *Stats
	pool  *VertexPool
	state RenderState // Applied lazily at the next Render

	// Bindings
	currentProgram *Program
	boundBuffers   [2]uint32 // Indexed by BufferTarget
	textures       []*Texture
	framebuffer    *Framebuffer
	defaultFB      *Framebuffer
	viewport       image.Rectangle
	scissor        image.Rectangle // Empty when scissoring is off

	shared         *SharedProgramState
	sharedUniforms []sharedUniform

	frameHooks []func()
	closed     bool
}

// NewContext creates a context driving device and presenting to window.
// window may be nil for offscreen use.
func NewContext(device Device, window Window, opts ...ContextOption) *Context {
	if device == nil {
		panic("render: NewContext requires a device")
	}

	c := &Context{
		device: device,
		window: window,
		caps:   device.Capabilities(),
		state:  DefaultRenderState(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.stats = NewStats(c.clock)
	c.cache = NewStateCache(device, c.stats)
	c.pool = NewVertexPool(c, c.granularity)
	c.granularity = c.pool.Granularity()
	if c.shared == nil {
		c.shared = NewSharedProgramState()
	}

	units := c.caps.MaxTextureUnits
	if units <= 0 {
		units = 16
	}
	c.textures = make([]*Texture, units)

	c.defaultFB = &Framebuffer{kind: FramebufferDefault, ctx: c}
	c.framebuffer = c.defaultFB
	c.SetViewportArea(c.defaultFB.Bounds())

	// Pool ranges never outlive a frame.
	c.OnFrameEnd(c.pool.Reset)

	logger.Info("render context created",
		"version", c.caps.Version,
		"anisotropy", c.caps.AnisotropicFiltering,
		"debug", c.debug,
		"poolGranularity", c.granularity)
	return c
}

// Device returns the backend the context drives.
func (c *Context) Device() Device { return c.device }

// Window returns the window the context presents to, or nil.
func (c *Context) Window() Window { return c.window }

// Capabilities returns the driver capabilities queried at creation.
func (c *Context) Capabilities() Capabilities { return c.caps }

// StateCache returns the context's state cache.
func (c *Context) StateCache() *StateCache { return c.cache }

// Stats returns the context's frame and resource statistics.
func (c *Context) Stats() *Stats { return c.stats }

// VertexPool returns the transient vertex pool.
func (c *Context) VertexPool() *VertexPool { return c.pool }

// Debug reports whether programs are validated before each draw.
func (c *Context) Debug() bool { return c.debug }

// SetCurrentRenderState sets the state the next Render applies. Invalid
// enum values panic.
func (c *Context) SetCurrentRenderState(state RenderState) {
	state.mustValidate()
	c.state = state
}

// CurrentRenderState returns the state the next Render applies.
func (c *Context) CurrentRenderState() RenderState {
	return c.state
}

// SetCullingInversion swaps front and back face culling. See
// StateCache.SetCullingInversion.
func (c *Context) SetCullingInversion(inverted bool) {
	c.cache.SetCullingInversion(inverted)
}

// CurrentProgram returns the bound program, or nil.
func (c *Context) CurrentProgram() *Program { return c.currentProgram }

// SetCurrentProgram makes p current. Passing nil unbinds the current program.
func (c *Context) SetCurrentProgram(p *Program) {
	if p == c.currentProgram {
		return
	}
	if c.currentProgram != nil {
		c.currentProgram.disableAttributes()
	}
	c.currentProgram = p
	if p != nil {
		p.bind()
	} else {
		c.device.UseProgram(0)
	}
}

func (c *Context) bindBuffer(target BufferTarget, id uint32) {
	if c.boundBuffers[target] == id {
		return
	}
	c.device.BindBuffer(target, id)
	c.boundBuffers[target] = id
}

// CurrentTexture returns the texture bound to unit, or nil.
func (c *Context) CurrentTexture(unit int) *Texture {
	if unit < 0 || unit >= len(c.textures) {
		return nil
	}
	return c.textures[unit]
}

// SetCurrentTexture binds t to a texture unit. Passing nil unbinds the unit.
func (c *Context) SetCurrentTexture(unit int, t *Texture) {
	if unit < 0 || unit >= len(c.textures) {
		logger.Error("texture unit out of range", "unit", unit, "units", len(c.textures))
		return
	}
	if c.textures[unit] == t {
		return
	}
	var id uint32
	if t != nil {
		id = t.id
	}
	c.device.BindTexture(unit, id)
	c.textures[unit] = t
}

// CurrentFramebuffer returns the bound render target.
func (c *Context) CurrentFramebuffer() *Framebuffer { return c.framebuffer }

// DefaultFramebuffer returns the window's framebuffer.
func (c *Context) DefaultFramebuffer() *Framebuffer { return c.defaultFB }

// SetCurrentFramebuffer binds a render target and resets the viewport to
// cover it. Passing nil selects the default framebuffer.
func (c *Context) SetCurrentFramebuffer(f *Framebuffer) {
	if f == nil {
		f = c.defaultFB
	}
	if f == c.framebuffer {
		return
	}
	c.device.BindFramebuffer(f.id)
	c.framebuffer = f
	c.SetViewportArea(f.Bounds())
}

// Viewport returns the current viewport area.
func (c *Context) Viewport() image.Rectangle { return c.viewport }

// SetViewportArea sets the viewport and updates the shared viewport size.
func (c *Context) SetViewportArea(area image.Rectangle) {
	c.viewport = area
	c.device.SetViewport(area)
	c.shared.SetViewportSize(float32(area.Dx()), float32(area.Dy()))
}

// Scissor returns the scissor area; empty when scissoring is off.
func (c *Context) Scissor() image.Rectangle { return c.scissor }

// SetScissorArea restricts drawing to area. An empty area turns scissoring
// off.
func (c *Context) SetScissorArea(area image.Rectangle) {
	wasOn := !c.scissor.Empty()
	if area.Empty() {
		if wasOn {
			c.device.SetEnabled(CapScissorTest, false)
		}
		c.scissor = image.Rectangle{}
		return
	}
	if !wasOn {
		c.device.SetEnabled(CapScissorTest, true)
	}
	if area != c.scissor {
		c.device.SetScissor(area)
	}
	c.scissor = area
}

// ClearColorBuffer clears the color planes of the current framebuffer.
func (c *Context) ClearColorBuffer(color mgl32.Vec4) {
	c.ClearBuffers(ClearColor, color, 1, 0)
}

// ClearDepthBuffer clears the depth plane to depth.
func (c *Context) ClearDepthBuffer(depth float32) {
	c.ClearBuffers(ClearDepth, mgl32.Vec4{}, depth, 0)
}

// ClearStencilBuffer clears the stencil plane to value.
func (c *Context) ClearStencilBuffer(value int32) {
	c.ClearBuffers(ClearStencil, mgl32.Vec4{}, 1, value)
}

// ClearBuffers clears the planes selected by mask. Write masks the current
// render state disables are enabled around the clear and restored after it,
// so the state cache stays valid.
func (c *Context) ClearBuffers(mask ClearMask, color mgl32.Vec4, depth float32, stencil int32) {
	if mask == 0 {
		return
	}
	c.cache.clearWithWriteMasks(mask&ClearColor != 0, mask&ClearDepth != 0, func() {
		c.device.Clear(mask, color, depth, stencil)
	})
}

// SharedProgramState returns the state shared uniforms are read from.
func (c *Context) SharedProgramState() *SharedProgramState { return c.shared }

// SetSharedProgramState replaces the shared uniform source. Passing nil
// installs a fresh default state.
func (c *Context) SetSharedProgramState(s *SharedProgramState) {
	if s == nil {
		s = NewSharedProgramState()
	}
	c.shared = s
	c.shared.SetViewportSize(float32(c.viewport.Dx()), float32(c.viewport.Dy()))
}

// CreateSharedUniform declares that uniforms named name of type t in
// programs linked from now on are supplied from the SharedProgramState
// under id. Redeclaring a name replaces the earlier declaration.
func (c *Context) CreateSharedUniform(name string, t Type, id SharedID) {
	if id < 0 {
		panic(fmt.Sprintf("render: invalid shared uniform id %d for %s", int(id), name))
	}
	for i, s := range c.sharedUniforms {
		if s.name == name {
			c.sharedUniforms[i] = sharedUniform{name: name, typ: t, id: id}
			return
		}
	}
	c.sharedUniforms = append(c.sharedUniforms, sharedUniform{name: name, typ: t, id: id})
}

// SharedUniformID returns the shared ID declared for name and t, or
// SharedNone. A name declared with a different type does not match.
func (c *Context) SharedUniformID(name string, t Type) SharedID {
	for _, s := range c.sharedUniforms {
		if s.name != name {
			continue
		}
		if s.typ != t {
			logger.Error("shared uniform type mismatch", "uniform", name, "declared", s.typ.String(), "found", t.String())
			return SharedNone
		}
		return s.id
	}
	return SharedNone
}

// AllocateVertices returns a transient range from the vertex pool. The
// range is valid until the end of the frame.
func (c *Context) AllocateVertices(count int, format VertexFormat) (VertexRange, error) {
	return c.pool.Allocate(count, format)
}

// Render draws r with the current program and render state. An empty range
// is logged and skipped. A vertex format the program cannot read is logged
// and the draw skipped. Calling Render without a current program panics.
func (c *Context) Render(r PrimitiveRange) error {
	if r.IsEmpty() {
		logger.Error("empty primitive range, draw skipped", "type", r.Type.String())
		return ErrEmptyRange
	}
	p := c.currentProgram
	if p == nil {
		panic("render: Render called without a current program")
	}
	if !r.Type.valid() {
		panic(fmt.Sprintf("render: invalid primitive type %d", int(r.Type)))
	}
	if err := c.checkRange(r); err != nil {
		logger.Error("primitive range out of bounds, draw skipped", "error", err)
		return err
	}

	vb := r.VertexBuffer
	c.bindBuffer(TargetVertex, vb.id)
	if r.IndexBuffer != nil {
		c.bindBuffer(TargetIndex, r.IndexBuffer.id)
	}

	if err := p.checkFormat(vb.format); err != nil {
		logger.Error("vertex format does not match program, draw skipped", "error", err)
		return err
	}
	p.setAttributePointers(vb.format)

	for _, u := range p.uniforms {
		if u.IsShared() {
			c.shared.UpdateTo(u)
		}
	}

	if renderVerbose() {
		for _, s := range p.samplers {
			if c.CurrentTexture(s.unit) == nil {
				logger.Debug("sampler has no texture bound", "sampler", s.Name, "unit", s.unit)
			}
		}
	}

	if c.debug && !p.IsValid() {
		return fmt.Errorf("render program %d: %w", p.id, ErrValidationFailed)
	}

	c.cache.Apply(c.state)

	if r.IndexBuffer != nil {
		c.device.DrawElements(r.Type, r.Count, r.IndexBuffer.typ, r.Start, r.Base)
	} else {
		c.device.DrawArrays(r.Type, r.Start, r.Count)
	}
	c.stats.addPrimitives(r.Type, r.Count)
	return nil
}

func (c *Context) checkRange(r PrimitiveRange) error {
	if r.VertexBuffer.id == 0 {
		return fmt.Errorf("vertex buffer deleted: %w", ErrOutOfRange)
	}
	limit := r.VertexBuffer.count
	if r.IndexBuffer != nil {
		if r.IndexBuffer.id == 0 {
			return fmt.Errorf("index buffer deleted: %w", ErrOutOfRange)
		}
		limit = r.IndexBuffer.count
	}
	if r.Start < 0 || r.Count < 0 || r.Start+r.Count > limit {
		return fmt.Errorf("elements [%d, %d) exceed buffer of %d: %w", r.Start, r.Start+r.Count, limit, ErrOutOfRange)
	}
	return nil
}

// OnFrameEnd registers fn to run at every EndFrame, after buffers are
// swapped. Hooks run in registration order.
func (c *Context) OnFrameEnd(fn func()) {
	c.frameHooks = append(c.frameHooks, fn)
}

// EndFrame presents the frame, runs the frame hooks, releases per-frame
// bindings and closes the frame's statistics.
func (c *Context) EndFrame() {
	if c.window != nil {
		c.window.SwapBuffers()
	}
	for _, fn := range c.frameHooks {
		fn()
	}

	c.SetCurrentProgram(nil)
	for unit := range c.textures {
		c.SetCurrentTexture(unit, nil)
	}
	c.bindBuffer(TargetVertex, 0)
	c.bindBuffer(TargetIndex, 0)

	frame := c.stats.CurrentFrame()
	c.stats.AddFrame()
	if renderVerbose() {
		logger.Debug("frame ended",
			"frame", c.stats.FrameCount(),
			"operations", frame.Operations,
			"stateChanges", frame.StateChanges,
			"triangles", frame.Triangles)
	}
}

// Close releases the pool and every binding. Resources created by the caller
// (buffers, programs, textures, framebuffers) must be deleted by the caller.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.SetCurrentProgram(nil)
	for unit := range c.textures {
		c.SetCurrentTexture(unit, nil)
	}
	c.SetCurrentFramebuffer(nil)
	c.pool.Delete()
	c.closed = true
}
