package render

import "fmt"

// CullMode selects which polygon faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
	CullBoth
)

var cullModeNames = [...]string{"none", "front", "back", "both"}

func (m CullMode) valid() bool { return m >= CullNone && m <= CullBoth }

func (m CullMode) String() string {
	if !m.valid() {
		return fmt.Sprintf("CullMode(%d)", int(m))
	}
	return cullModeNames[m]
}

// inverted swaps front and back. Used when rendering through a mirroring
// transform, which flips the winding order.
func (m CullMode) inverted() CullMode {
	switch m {
	case CullFront:
		return CullBack
	case CullBack:
		return CullFront
	}
	return m
}

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
)

var blendFactorNames = [...]string{
	"zero", "one",
	"src color", "one minus src color",
	"dst color", "one minus dst color",
	"src alpha", "one minus src alpha",
	"dst alpha", "one minus dst alpha",
	"constant color", "one minus constant color",
}

func (f BlendFactor) valid() bool { return f >= BlendZero && f <= BlendOneMinusConstantColor }

func (f BlendFactor) String() string {
	if !f.valid() {
		return fmt.Sprintf("BlendFactor(%d)", int(f))
	}
	return blendFactorNames[f]
}

// blending reports whether a src/dst pair requires the blend stage.
// {One, Zero} writes the source unchanged, so blending can stay disabled.
func blending(src, dst BlendFactor) bool {
	return src != BlendOne || dst != BlendZero
}

// Function is a depth or stencil comparison function.
type Function int

const (
	FuncNever Function = iota
	FuncAlways
	FuncEqual
	FuncNotEqual
	FuncLess
	FuncLessEqual
	FuncGreater
	FuncGreaterEqual
)

var functionNames = [...]string{"never", "always", "equal", "not equal", "less", "less equal", "greater", "greater equal"}

func (f Function) valid() bool { return f >= FuncNever && f <= FuncGreaterEqual }

func (f Function) String() string {
	if !f.valid() {
		return fmt.Sprintf("Function(%d)", int(f))
	}
	return functionNames[f]
}

// StencilOp is the action taken on the stencil buffer for a test outcome.
type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrease
	StencilDecrease
	StencilInvert
	StencilIncreaseWrap
	StencilDecreaseWrap
)

var stencilOpNames = [...]string{"keep", "zero", "replace", "increase", "decrease", "invert", "increase wrap", "decrease wrap"}

func (op StencilOp) valid() bool { return op >= StencilKeep && op <= StencilDecreaseWrap }

func (op StencilOp) String() string {
	if !op.valid() {
		return fmt.Sprintf("StencilOp(%d)", int(op))
	}
	return stencilOpNames[op]
}

// Face selects the front or back polygon face for per-face stencil state.
type Face int

const (
	FaceFront Face = iota
	FaceBack
)

func (f Face) String() string {
	switch f {
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// StencilState is the stencil configuration for one polygon face.
type StencilState struct {
	Function    Function
	Reference   int32
	Mask        uint32
	StencilFail StencilOp // Stencil test fails
	DepthFail   StencilOp // Stencil test passes, depth test fails
	DepthPass   StencilOp // Both tests pass
}

// DefaultStencilState returns a stencil state that always passes and keeps
// the stored value.
func DefaultStencilState() StencilState {
	return StencilState{
		Function:    FuncAlways,
		Mask:        ^uint32(0),
		StencilFail: StencilKeep,
		DepthFail:   StencilKeep,
		DepthPass:   StencilKeep,
	}
}

func (s StencilState) sameFunction(o StencilState) bool {
	return s.Function == o.Function && s.Reference == o.Reference && s.Mask == o.Mask
}

func (s StencilState) sameOps(o StencilState) bool {
	return s.StencilFail == o.StencilFail && s.DepthFail == o.DepthFail && s.DepthPass == o.DepthPass
}

// RenderState is the complete fixed-function state used by a draw.
// It is a plain value: copy it, compare it, store it in a Pass.
type RenderState struct {
	DepthTesting   bool
	DepthWriting   bool
	ColorWriting   bool
	StencilTesting bool
	Wireframe      bool
	LineSmoothing  bool
	Multisampling  bool
	LineWidth      float32
	CullFace       CullMode
	SrcFactor      BlendFactor
	DstFactor      BlendFactor
	DepthFunction  Function
	Stencil        [2]StencilState // Indexed by Face
}

// DefaultRenderState returns the state a freshly created context starts with:
// opaque, depth tested and written, back faces culled.
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTesting:  true,
		DepthWriting:  true,
		ColorWriting:  true,
		Multisampling: true,
		LineWidth:     1,
		CullFace:      CullBack,
		SrcFactor:     BlendOne,
		DstFactor:     BlendZero,
		DepthFunction: FuncLess,
		Stencil:       [2]StencilState{DefaultStencilState(), DefaultStencilState()},
	}
}

// SetStencil applies the same stencil state to both faces.
func (s *RenderState) SetStencil(st StencilState) {
	s.Stencil[FaceFront] = st
	s.Stencil[FaceBack] = st
}

// mustValidate panics if any enum field holds a value outside its range.
// A corrupt RenderState is a programming error; applying it would leave the
// GPU in an undefined state.
func (s *RenderState) mustValidate() {
	if !s.CullFace.valid() {
		panic(fmt.Sprintf("render: invalid cull mode %d", int(s.CullFace)))
	}
	if !s.SrcFactor.valid() {
		panic(fmt.Sprintf("render: invalid source blend factor %d", int(s.SrcFactor)))
	}
	if !s.DstFactor.valid() {
		panic(fmt.Sprintf("render: invalid destination blend factor %d", int(s.DstFactor)))
	}
	if !s.DepthFunction.valid() {
		panic(fmt.Sprintf("render: invalid depth function %d", int(s.DepthFunction)))
	}
	for face, st := range s.Stencil {
		if !st.Function.valid() {
			panic(fmt.Sprintf("render: invalid %s stencil function %d", Face(face), int(st.Function)))
		}
		for _, op := range [...]StencilOp{st.StencilFail, st.DepthFail, st.DepthPass} {
			if !op.valid() {
				panic(fmt.Sprintf("render: invalid %s stencil operation %d", Face(face), int(op)))
			}
		}
	}
}
