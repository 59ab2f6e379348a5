package render

// StateCache tracks the fixed-function state last applied to a Device and
// emits only the calls needed to move to a newly requested RenderState.
//
// A cache starts out dirty: its baseline is unknown until the first Apply,
// which falls back to Force. Anything that changes GPU state behind the
// cache's back must call Invalidate.
//
// The cache is owned by one Context and is not safe for concurrent use.
type StateCache struct {
	device          Device
	stats           *Stats
	cache           RenderState // Last applied state; CullFace is stored after inversion
	dirty           bool
	cullingInverted bool
}

// NewStateCache creates a dirty cache driving the given device. stats may be
// nil.
func NewStateCache(device Device, stats *Stats) *StateCache {
	return &StateCache{
		device: device,
		stats:  stats,
		dirty:  true,
	}
}

// Invalidate marks the baseline as unknown. The next Apply performs a Force.
func (c *StateCache) Invalidate() {
	c.dirty = true
}

// Dirty reports whether the next Apply will force the full state.
func (c *StateCache) Dirty() bool {
	return c.dirty
}

// Current returns the last applied state. It is meaningless while Dirty.
func (c *StateCache) Current() RenderState {
	return c.cache
}

// IsCullingInverted reports whether front and back culling are swapped.
func (c *StateCache) IsCullingInverted() bool {
	return c.cullingInverted
}

// SetCullingInversion swaps front and back face culling for subsequent
// applies. Enable it while rendering through a mirroring transform.
func (c *StateCache) SetCullingInversion(inverted bool) {
	c.cullingInverted = inverted
}

func (c *StateCache) resolveCullMode(mode CullMode) CullMode {
	if c.cullingInverted {
		return mode.inverted()
	}
	return mode
}

// Apply transitions the device to state, emitting calls only for the axes
// that differ from the cached baseline. Invalid enum values panic.
func (c *StateCache) Apply(state RenderState) {
	state.mustValidate()

	if c.stats != nil {
		c.stats.addStateChange()
	}

	if c.dirty {
		c.force(state)
		return
	}

	d := c.device

	cullMode := c.resolveCullMode(state.CullFace)
	if cullMode != c.cache.CullFace {
		if (cullMode == CullNone) != (c.cache.CullFace == CullNone) {
			d.SetEnabled(CapCullFace, cullMode != CullNone)
		}
		if cullMode != CullNone {
			d.SetCullFace(cullMode)
		}
		c.cache.CullFace = cullMode
	}

	if state.SrcFactor != c.cache.SrcFactor || state.DstFactor != c.cache.DstFactor {
		wanted := blending(state.SrcFactor, state.DstFactor)
		if wanted != blending(c.cache.SrcFactor, c.cache.DstFactor) {
			d.SetEnabled(CapBlend, wanted)
		}
		if wanted {
			d.SetBlendFunc(state.SrcFactor, state.DstFactor)
		}
		c.cache.SrcFactor = state.SrcFactor
		c.cache.DstFactor = state.DstFactor
	}

	c.applyDepth(state)

	if state.ColorWriting != c.cache.ColorWriting {
		w := state.ColorWriting
		d.SetColorMask(w, w, w, w)
		c.cache.ColorWriting = w
	}

	if state.StencilTesting != c.cache.StencilTesting {
		d.SetEnabled(CapStencilTest, state.StencilTesting)
		c.cache.StencilTesting = state.StencilTesting
	}
	if state.StencilTesting {
		for face := FaceFront; face <= FaceBack; face++ {
			want, have := state.Stencil[face], c.cache.Stencil[face]
			if !want.sameFunction(have) {
				d.SetStencilFunc(face, want.Function, want.Reference, want.Mask)
			}
			if !want.sameOps(have) {
				d.SetStencilOp(face, want.StencilFail, want.DepthFail, want.DepthPass)
			}
			c.cache.Stencil[face] = want
		}
	}

	if state.Wireframe != c.cache.Wireframe {
		d.SetPolygonMode(state.Wireframe)
		c.cache.Wireframe = state.Wireframe
	}

	if state.LineSmoothing != c.cache.LineSmoothing {
		d.SetEnabled(CapLineSmooth, state.LineSmoothing)
		c.cache.LineSmoothing = state.LineSmoothing
	}

	if state.Multisampling != c.cache.Multisampling {
		d.SetEnabled(CapMultisample, state.Multisampling)
		c.cache.Multisampling = state.Multisampling
	}

	if state.LineWidth != c.cache.LineWidth {
		d.SetLineWidth(state.LineWidth)
		c.cache.LineWidth = state.LineWidth
	}
}

// applyDepth handles depth testing and writing together: the GPU only
// writes depth while the depth test is enabled, so the test stays enabled
// whenever either flag is set. Writing without testing uses FuncAlways.
func (c *StateCache) applyDepth(state RenderState) {
	d := c.device
	wasActive := c.cache.DepthTesting || c.cache.DepthWriting

	// The mask is tracked even while the test is off so that re-enabling the
	// test never inherits a stale write mask.
	if state.DepthWriting != c.cache.DepthWriting {
		d.SetDepthMask(state.DepthWriting)
	}

	if state.DepthTesting || state.DepthWriting {
		fn := state.DepthFunction
		if !state.DepthTesting {
			fn = FuncAlways
		}
		if fn != c.cache.DepthFunction {
			d.SetDepthFunc(fn)
			c.cache.DepthFunction = fn
		}

		if !wasActive {
			d.SetEnabled(CapDepthTest, true)
		}
	} else if wasActive {
		d.SetEnabled(CapDepthTest, false)
	}

	c.cache.DepthTesting = state.DepthTesting
	c.cache.DepthWriting = state.DepthWriting
}

// clearWithWriteMasks runs clearFn with the color and depth write masks
// enabled as requested, then puts back the masks of the cached baseline.
// Masks the baseline already has enabled cost no calls. A dirty cache has
// no baseline, so the masks stay enabled until the next Force.
func (c *StateCache) clearWithWriteMasks(color, depth bool, clearFn func()) {
	d := c.device
	color = color && (c.dirty || !c.cache.ColorWriting)
	depth = depth && (c.dirty || !c.cache.DepthWriting)
	if color {
		d.SetColorMask(true, true, true, true)
	}
	if depth {
		d.SetDepthMask(true)
	}
	clearFn()
	if c.dirty {
		return
	}
	if color {
		d.SetColorMask(false, false, false, false)
	}
	if depth {
		d.SetDepthMask(false)
	}
}

// Force emits every state call regardless of the cached baseline, then
// stores state as the new baseline and clears the dirty flag.
func (c *StateCache) Force(state RenderState) {
	state.mustValidate()
	if c.stats != nil {
		c.stats.addStateChange()
	}
	c.force(state)
}

func (c *StateCache) force(state RenderState) {
	d := c.device

	state.CullFace = c.resolveCullMode(state.CullFace)
	d.SetEnabled(CapCullFace, state.CullFace != CullNone)
	if state.CullFace != CullNone {
		d.SetCullFace(state.CullFace)
	}

	d.SetEnabled(CapBlend, blending(state.SrcFactor, state.DstFactor))
	d.SetBlendFunc(state.SrcFactor, state.DstFactor)

	d.SetDepthMask(state.DepthWriting)
	d.SetEnabled(CapDepthTest, state.DepthTesting || state.DepthWriting)
	if state.DepthWriting && !state.DepthTesting {
		state.DepthFunction = FuncAlways
	}
	d.SetDepthFunc(state.DepthFunction)

	w := state.ColorWriting
	d.SetColorMask(w, w, w, w)

	d.SetEnabled(CapStencilTest, state.StencilTesting)
	for face := FaceFront; face <= FaceBack; face++ {
		st := state.Stencil[face]
		d.SetStencilFunc(face, st.Function, st.Reference, st.Mask)
		d.SetStencilOp(face, st.StencilFail, st.DepthFail, st.DepthPass)
	}

	d.SetPolygonMode(state.Wireframe)
	d.SetEnabled(CapLineSmooth, state.LineSmoothing)
	d.SetEnabled(CapMultisample, state.Multisampling)
	d.SetLineWidth(state.LineWidth)

	c.cache = state
	c.dirty = false
}
