package render

import (
	"fmt"
	"strconv"
	"strings"
)

// ComponentType is the storage type of a vertex component.
type ComponentType int

const (
	ComponentFloat32   ComponentType = iota // 'f'
	ComponentUint8Norm                      // 'b', normalized to [0, 1]
)

// Size returns the size in bytes of one scalar of the type.
func (t ComponentType) Size() int {
	switch t {
	case ComponentFloat32:
		return 4
	case ComponentUint8Norm:
		return 1
	}
	panic(fmt.Sprintf("render: invalid vertex component type %d", int(t)))
}

func (t ComponentType) code() byte {
	if t == ComponentUint8Norm {
		return 'b'
	}
	return 'f'
}

// VertexComponent is one named attribute slot in a vertex layout.
type VertexComponent struct {
	Name   string
	Type   ComponentType
	Count  int // 1 to 4
	Offset int // Bytes from the start of the vertex
}

// Size returns the size in bytes of the component.
func (c VertexComponent) Size() int {
	return c.Type.Size() * c.Count
}

// VertexFormat describes the memory layout of one vertex. Components are
// tightly packed in declaration order. The zero value is an empty format.
type VertexFormat struct {
	components []VertexComponent
	size       int
}

// ParseVertexFormat parses a description such as
//
//	"3f:position 2f:texcoord 4b:color"
//
// Each component is a count (1-4), a type code ('f' float32, 'b' normalized
// uint8), a colon and a name.
func ParseVertexFormat(desc string) (VertexFormat, error) {
	var f VertexFormat
	for _, field := range strings.Fields(desc) {
		head, name, ok := strings.Cut(field, ":")
		if !ok || name == "" || len(head) < 2 {
			return VertexFormat{}, fmt.Errorf("vertex format %q: malformed component %q", desc, field)
		}

		count, err := strconv.Atoi(head[:len(head)-1])
		if err != nil || count < 1 || count > 4 {
			return VertexFormat{}, fmt.Errorf("vertex format %q: invalid component count in %q", desc, field)
		}

		var typ ComponentType
		switch head[len(head)-1] {
		case 'f':
			typ = ComponentFloat32
		case 'b':
			typ = ComponentUint8Norm
		default:
			return VertexFormat{}, fmt.Errorf("vertex format %q: invalid component type in %q", desc, field)
		}

		if _, dup := f.Component(name); dup {
			return VertexFormat{}, fmt.Errorf("vertex format %q: duplicate component %q", desc, name)
		}

		c := VertexComponent{Name: name, Type: typ, Count: count, Offset: f.size}
		f.components = append(f.components, c)
		f.size += c.Size()
	}
	return f, nil
}

// MustParseVertexFormat is like ParseVertexFormat but panics on error.
// It is intended for formats written as literals.
func MustParseVertexFormat(desc string) VertexFormat {
	f, err := ParseVertexFormat(desc)
	if err != nil {
		panic(err)
	}
	return f
}

// Size returns the size in bytes of one vertex.
func (f VertexFormat) Size() int {
	return f.size
}

// Components returns the components in declaration order.
func (f VertexFormat) Components() []VertexComponent {
	return f.components
}

// Component looks up a component by name.
func (f VertexFormat) Component(name string) (VertexComponent, bool) {
	for _, c := range f.components {
		if c.Name == name {
			return c, true
		}
	}
	return VertexComponent{}, false
}

// Equal reports whether two formats have identical layouts.
func (f VertexFormat) Equal(other VertexFormat) bool {
	if f.size != other.size || len(f.components) != len(other.components) {
		return false
	}
	for i, c := range f.components {
		if c != other.components[i] {
			return false
		}
	}
	return true
}

// String returns the format in the syntax accepted by ParseVertexFormat.
func (f VertexFormat) String() string {
	var sb strings.Builder
	for i, c := range f.components {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(c.Count))
		sb.WriteByte(c.Type.code())
		sb.WriteByte(':')
		sb.WriteString(c.Name)
	}
	return sb.String()
}
