package render

import "fmt"

// Type is a GLSL variable type as reported by program reflection.
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeFloat
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
	TypeSampler1D
	TypeSampler2D
	TypeSampler3D
	TypeSamplerRect
	TypeSamplerCube
)

var typeNames = [...]string{
	"unknown", "int", "float", "vec2", "vec3", "vec4", "mat2", "mat3", "mat4",
	"sampler1D", "sampler2D", "sampler3D", "sampler2DRect", "samplerCube",
}

// String returns the GLSL spelling of the type.
func (t Type) String() string {
	if t < TypeUnknown || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType maps a GLSL type name to a Type. Unrecognized names map to
// TypeUnknown.
func ParseType(name string) Type {
	for i, n := range typeNames {
		if i > 0 && n == name {
			return Type(i)
		}
	}
	return TypeUnknown
}

// IsSampler reports whether t is one of the sampler types.
func (t Type) IsSampler() bool {
	return t >= TypeSampler1D && t <= TypeSamplerCube
}

// IsAttribute reports whether t is usable as a vertex attribute.
func (t Type) IsAttribute() bool {
	return t >= TypeFloat && t <= TypeVec4
}

// IsUniform reports whether t is a plain (non-sampler) uniform type.
func (t Type) IsUniform() bool {
	return t >= TypeInt && t <= TypeMat4
}

// Components returns the number of scalar components of an attribute type,
// or 0 for non-attribute types.
func (t Type) Components() int {
	if !t.IsAttribute() {
		return 0
	}
	return int(t-TypeFloat) + 1
}

// PrimitiveType is the topology used to assemble vertices.
type PrimitiveType int

const (
	PointList PrimitiveType = iota
	LineList
	LineStrip
	LineLoop
	TriangleList
	TriangleStrip
	TriangleFan
)

var primitiveTypeNames = [...]string{"point list", "line list", "line strip", "line loop", "triangle list", "triangle strip", "triangle fan"}

func (p PrimitiveType) valid() bool { return p >= PointList && p <= TriangleFan }

func (p PrimitiveType) String() string {
	if !p.valid() {
		return fmt.Sprintf("PrimitiveType(%d)", int(p))
	}
	return primitiveTypeNames[p]
}

// IndexType is the element type of an index buffer.
type IndexType int

const (
	IndexUint8 IndexType = iota
	IndexUint16
	IndexUint32
)

// Size returns the size in bytes of one index.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	case IndexUint32:
		return 4
	}
	panic(fmt.Sprintf("render: invalid index type %d", int(t)))
}

func (t IndexType) String() string {
	switch t {
	case IndexUint8:
		return "uint8"
	case IndexUint16:
		return "uint16"
	case IndexUint32:
		return "uint32"
	}
	return fmt.Sprintf("IndexType(%d)", int(t))
}

// Usage is the update-frequency hint given to the driver at buffer creation.
type Usage int

const (
	UsageStatic Usage = iota
	UsageStream
	UsageDynamic
)

func (u Usage) String() string {
	switch u {
	case UsageStatic:
		return "static"
	case UsageStream:
		return "stream"
	case UsageDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("Usage(%d)", int(u))
}

// BufferTarget selects the binding point of a buffer object.
type BufferTarget int

const (
	TargetVertex BufferTarget = iota
	TargetIndex
)

// Capability is a boolean GPU state toggled with enable/disable.
type Capability int

const (
	CapCullFace Capability = iota
	CapBlend
	CapDepthTest
	CapStencilTest
	CapLineSmooth
	CapMultisample
	CapScissorTest
)

var capabilityNames = [...]string{"cull face", "blend", "depth test", "stencil test", "line smooth", "multisample", "scissor test"}

func (c Capability) String() string {
	if c < CapCullFace || c > CapScissorTest {
		return fmt.Sprintf("Capability(%d)", int(c))
	}
	return capabilityNames[c]
}

// ShaderKind is the pipeline stage a shader is compiled for.
type ShaderKind int

const (
	VertexShader ShaderKind = iota
	FragmentShader
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return fmt.Sprintf("ShaderKind(%d)", int(k))
}

// PixelFormat is the texel layout of a texture.
type PixelFormat int

const (
	PixelR8 PixelFormat = iota
	PixelRGBA8
)

// Size returns the size in bytes of one texel.
func (f PixelFormat) Size() int {
	switch f {
	case PixelR8:
		return 1
	case PixelRGBA8:
		return 4
	}
	panic(fmt.Sprintf("render: invalid pixel format %d", int(f)))
}

// FilterMode is a texture sampling filter.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
	FilterTrilinear
)

// ClearMask selects the framebuffer planes cleared by Device.Clear.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
)
