package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/render"
)

// Anisotropic filtering enums from EXT_texture_filter_anisotropic, which the
// core profile bindings do not export.
const (
	textureMaxAnisotropy    = 0x84FE
	maxTextureMaxAnisotropy = 0x84FF
)

// Conversions from render enums to GL enums. A value with no mapping is a
// programming error and panics.

func glCapability(c render.Capability) uint32 {
	switch c {
	case render.CapCullFace:
		return gl.CULL_FACE
	case render.CapBlend:
		return gl.BLEND
	case render.CapDepthTest:
		return gl.DEPTH_TEST
	case render.CapStencilTest:
		return gl.STENCIL_TEST
	case render.CapLineSmooth:
		return gl.LINE_SMOOTH
	case render.CapMultisample:
		return gl.MULTISAMPLE
	case render.CapScissorTest:
		return gl.SCISSOR_TEST
	}
	panic(fmt.Sprintf("opengl: invalid capability %d", int(c)))
}

func glCullMode(m render.CullMode) uint32 {
	switch m {
	case render.CullFront:
		return gl.FRONT
	case render.CullBack:
		return gl.BACK
	case render.CullBoth:
		return gl.FRONT_AND_BACK
	}
	panic(fmt.Sprintf("opengl: invalid cull mode %s", m))
}

func glBlendFactor(f render.BlendFactor) uint32 {
	switch f {
	case render.BlendZero:
		return gl.ZERO
	case render.BlendOne:
		return gl.ONE
	case render.BlendSrcColor:
		return gl.SRC_COLOR
	case render.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case render.BlendDstColor:
		return gl.DST_COLOR
	case render.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case render.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case render.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case render.BlendDstAlpha:
		return gl.DST_ALPHA
	case render.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case render.BlendConstantColor:
		return gl.CONSTANT_COLOR
	case render.BlendOneMinusConstantColor:
		return gl.ONE_MINUS_CONSTANT_COLOR
	}
	panic(fmt.Sprintf("opengl: invalid blend factor %d", int(f)))
}

func glFunction(f render.Function) uint32 {
	switch f {
	case render.FuncNever:
		return gl.NEVER
	case render.FuncAlways:
		return gl.ALWAYS
	case render.FuncEqual:
		return gl.EQUAL
	case render.FuncNotEqual:
		return gl.NOTEQUAL
	case render.FuncLess:
		return gl.LESS
	case render.FuncLessEqual:
		return gl.LEQUAL
	case render.FuncGreater:
		return gl.GREATER
	case render.FuncGreaterEqual:
		return gl.GEQUAL
	}
	panic(fmt.Sprintf("opengl: invalid comparison function %d", int(f)))
}

func glStencilOp(op render.StencilOp) uint32 {
	switch op {
	case render.StencilKeep:
		return gl.KEEP
	case render.StencilZero:
		return gl.ZERO
	case render.StencilReplace:
		return gl.REPLACE
	case render.StencilIncrease:
		return gl.INCR
	case render.StencilDecrease:
		return gl.DECR
	case render.StencilInvert:
		return gl.INVERT
	case render.StencilIncreaseWrap:
		return gl.INCR_WRAP
	case render.StencilDecreaseWrap:
		return gl.DECR_WRAP
	}
	panic(fmt.Sprintf("opengl: invalid stencil operation %d", int(op)))
}

func glFace(f render.Face) uint32 {
	switch f {
	case render.FaceFront:
		return gl.FRONT
	case render.FaceBack:
		return gl.BACK
	}
	panic(fmt.Sprintf("opengl: invalid face %d", int(f)))
}

func glPrimitive(p render.PrimitiveType) uint32 {
	switch p {
	case render.PointList:
		return gl.POINTS
	case render.LineList:
		return gl.LINES
	case render.LineStrip:
		return gl.LINE_STRIP
	case render.LineLoop:
		return gl.LINE_LOOP
	case render.TriangleList:
		return gl.TRIANGLES
	case render.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case render.TriangleFan:
		return gl.TRIANGLE_FAN
	}
	panic(fmt.Sprintf("opengl: invalid primitive type %d", int(p)))
}

func glIndexType(t render.IndexType) uint32 {
	switch t {
	case render.IndexUint8:
		return gl.UNSIGNED_BYTE
	case render.IndexUint16:
		return gl.UNSIGNED_SHORT
	case render.IndexUint32:
		return gl.UNSIGNED_INT
	}
	panic(fmt.Sprintf("opengl: invalid index type %d", int(t)))
}

func glUsage(u render.Usage) uint32 {
	switch u {
	case render.UsageStatic:
		return gl.STATIC_DRAW
	case render.UsageStream:
		return gl.STREAM_DRAW
	case render.UsageDynamic:
		return gl.DYNAMIC_DRAW
	}
	panic(fmt.Sprintf("opengl: invalid buffer usage %d", int(u)))
}

func glTarget(t render.BufferTarget) uint32 {
	switch t {
	case render.TargetVertex:
		return gl.ARRAY_BUFFER
	case render.TargetIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	}
	panic(fmt.Sprintf("opengl: invalid buffer target %d", int(t)))
}

func glShaderKind(k render.ShaderKind) uint32 {
	switch k {
	case render.VertexShader:
		return gl.VERTEX_SHADER
	case render.FragmentShader:
		return gl.FRAGMENT_SHADER
	}
	panic(fmt.Sprintf("opengl: invalid shader kind %d", int(k)))
}

// glPixelFormat returns the internal format and the client format.
func glPixelFormat(f render.PixelFormat) (int32, uint32) {
	switch f {
	case render.PixelR8:
		return gl.R8, gl.RED
	case render.PixelRGBA8:
		return gl.RGBA8, gl.RGBA
	}
	panic(fmt.Sprintf("opengl: invalid pixel format %d", int(f)))
}

// renderType maps a GL uniform or attribute type to a render.Type. Types the
// package does not handle map to TypeUnknown.
func renderType(t uint32) render.Type {
	switch t {
	case gl.INT, gl.BOOL:
		return render.TypeInt
	case gl.FLOAT:
		return render.TypeFloat
	case gl.FLOAT_VEC2:
		return render.TypeVec2
	case gl.FLOAT_VEC3:
		return render.TypeVec3
	case gl.FLOAT_VEC4:
		return render.TypeVec4
	case gl.FLOAT_MAT2:
		return render.TypeMat2
	case gl.FLOAT_MAT3:
		return render.TypeMat3
	case gl.FLOAT_MAT4:
		return render.TypeMat4
	case gl.SAMPLER_1D:
		return render.TypeSampler1D
	case gl.SAMPLER_2D:
		return render.TypeSampler2D
	case gl.SAMPLER_3D:
		return render.TypeSampler3D
	case gl.SAMPLER_2D_RECT:
		return render.TypeSamplerRect
	case gl.SAMPLER_CUBE:
		return render.TypeSamplerCube
	}
	return render.TypeUnknown
}
