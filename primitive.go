package render

// PrimitiveRange describes one draw: a topology plus the vertices, and
// optionally indices, to assemble. It holds no GPU resources of its own.
type PrimitiveRange struct {
	Type         PrimitiveType
	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer // nil for non-indexed draws
	Start        int          // First vertex, or first index when indexed
	Count        int          // Number of vertices, or indices when indexed
	Base         int          // Added to every index; indexed draws only
}

// NewPrimitiveRange returns a non-indexed range drawing the vertices of r.
func NewPrimitiveRange(t PrimitiveType, r VertexRange) PrimitiveRange {
	return PrimitiveRange{
		Type:         t,
		VertexBuffer: r.Buffer(),
		Start:        r.Start(),
		Count:        r.Count(),
	}
}

// NewIndexedPrimitiveRange returns a range drawing the indices of r from vb.
func NewIndexedPrimitiveRange(t PrimitiveType, vb *VertexBuffer, r IndexRange, base int) PrimitiveRange {
	return PrimitiveRange{
		Type:         t,
		VertexBuffer: vb,
		IndexBuffer:  r.Buffer(),
		Start:        r.Start(),
		Count:        r.Count(),
		Base:         base,
	}
}

// IsEmpty reports whether drawing the range would produce nothing.
func (p PrimitiveRange) IsEmpty() bool {
	return p.VertexBuffer == nil || p.Count == 0
}
