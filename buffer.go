package render

import (
	"fmt"
	"unsafe"
)

// Bytes reinterprets a slice of fixed-size values (vertex structs, indices)
// as raw bytes without copying. T must not contain pointers.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(s[0])))
}

// buffer is the state shared by vertex and index buffers: one GPU buffer
// object holding count elements of stride bytes each.
type buffer struct {
	ctx    *Context
	id     uint32
	target BufferTarget
	count  int
	stride int
	usage  Usage
}

func createBuffer(ctx *Context, target BufferTarget, count, stride int, usage Usage) (buffer, error) {
	if count <= 0 {
		return buffer{}, fmt.Errorf("create buffer: invalid element count %d: %w", count, ErrAllocationFailed)
	}

	id, err := ctx.device.CreateBuffer(target, count*stride, usage)
	if err != nil {
		return buffer{}, fmt.Errorf("create buffer of %d bytes: %w: %w", count*stride, ErrAllocationFailed, err)
	}
	ctx.boundBuffers[target] = id
	ctx.stats.addBuffer(target, count*stride)

	return buffer{
		ctx:    ctx,
		id:     id,
		target: target,
		count:  count,
		stride: stride,
		usage:  usage,
	}, nil
}

// ID returns the GPU buffer object name. It is 0 after Delete.
func (b *buffer) ID() uint32 { return b.id }

// Count returns the number of elements the buffer holds.
func (b *buffer) Count() int { return b.count }

// Size returns the size of the buffer in bytes.
func (b *buffer) Size() int { return b.count * b.stride }

// Usage returns the usage hint the buffer was created with.
func (b *buffer) Usage() Usage { return b.usage }

func (b *buffer) checkRange(op string, dataLen, count, start int) error {
	if b.id == 0 {
		return fmt.Errorf("%s: buffer deleted: %w", op, ErrOutOfRange)
	}
	if start < 0 || count < 0 || start+count > b.count {
		return fmt.Errorf("%s: elements [%d, %d) exceed buffer of %d: %w", op, start, start+count, b.count, ErrOutOfRange)
	}
	if dataLen < count*b.stride {
		return fmt.Errorf("%s: %d bytes given for %d elements of %d bytes: %w", op, dataLen, count, b.stride, ErrOutOfRange)
	}
	return nil
}

// CopyFrom uploads count elements from data into the buffer starting at
// element start. An out-of-range request logs an error and changes nothing.
func (b *buffer) CopyFrom(data []byte, count, start int) error {
	if err := b.checkRange("copy to gpu", len(data), count, start); err != nil {
		logger.Error("buffer copy failed", "error", err)
		return err
	}
	if count == 0 {
		return nil
	}
	b.ctx.bindBuffer(b.target, b.id)
	b.ctx.device.BufferSubData(b.target, start*b.stride, data[:count*b.stride])
	return nil
}

// CopyTo reads count elements starting at element start back into data.
// Read-back may stall until the GPU has finished with the buffer.
func (b *buffer) CopyTo(data []byte, count, start int) error {
	if err := b.checkRange("copy from gpu", len(data), count, start); err != nil {
		logger.Error("buffer read-back failed", "error", err)
		return err
	}
	if count == 0 {
		return nil
	}
	b.ctx.bindBuffer(b.target, b.id)
	b.ctx.device.GetBufferSubData(b.target, start*b.stride, data[:count*b.stride])
	return nil
}

// Discard re-specifies the buffer's storage with undefined contents so it
// can be refilled without waiting for draws still reading the old data.
func (b *buffer) Discard() {
	if b.id == 0 {
		return
	}
	b.ctx.bindBuffer(b.target, b.id)
	b.ctx.device.OrphanBuffer(b.target, b.Size(), b.usage)
}

// Delete releases the GPU buffer. Ranges referring to the buffer become
// invalid. Calling Delete twice is a no-op.
func (b *buffer) Delete() {
	if b.id == 0 {
		return
	}
	if b.ctx.boundBuffers[b.target] == b.id {
		b.ctx.boundBuffers[b.target] = 0
	}
	b.ctx.device.DeleteBuffer(b.id)
	b.ctx.stats.removeBuffer(b.target, b.Size())
	b.id = 0
}

// VertexBuffer is a GPU buffer of vertices in a single VertexFormat.
type VertexBuffer struct {
	buffer
	format VertexFormat
}

// CreateVertexBuffer allocates a zeroed vertex buffer for count vertices.
// Failure is logged and returned; the caller decides whether to continue.
func CreateVertexBuffer(ctx *Context, count int, format VertexFormat, usage Usage) (*VertexBuffer, error) {
	if format.Size() == 0 {
		err := fmt.Errorf("create vertex buffer: empty vertex format: %w", ErrAllocationFailed)
		logger.Error("vertex buffer creation failed", "error", err)
		return nil, err
	}
	b, err := createBuffer(ctx, TargetVertex, count, format.Size(), usage)
	if err != nil {
		logger.Error("vertex buffer creation failed", "count", count, "format", format.String(), "error", err)
		return nil, err
	}
	return &VertexBuffer{buffer: b, format: format}, nil
}

// Format returns the vertex layout of the buffer.
func (vb *VertexBuffer) Format() VertexFormat { return vb.format }

// Range returns a range covering the whole buffer.
func (vb *VertexBuffer) Range() VertexRange {
	return VertexRange{buffer: vb, start: 0, count: vb.count}
}

// IndexBuffer is a GPU buffer of vertex indices.
type IndexBuffer struct {
	buffer
	typ IndexType
}

// CreateIndexBuffer allocates a zeroed index buffer for count indices.
func CreateIndexBuffer(ctx *Context, count int, typ IndexType, usage Usage) (*IndexBuffer, error) {
	b, err := createBuffer(ctx, TargetIndex, count, typ.Size(), usage)
	if err != nil {
		logger.Error("index buffer creation failed", "count", count, "type", typ.String(), "error", err)
		return nil, err
	}
	return &IndexBuffer{buffer: b, typ: typ}, nil
}

// Type returns the index element type.
func (ib *IndexBuffer) Type() IndexType { return ib.typ }

// Range returns a range covering the whole buffer.
func (ib *IndexBuffer) Range() IndexRange {
	return IndexRange{buffer: ib, start: 0, count: ib.count}
}

// VertexRange is a non-owning view of consecutive vertices in a
// VertexBuffer. The zero value is the empty range. A range must not be used
// after its buffer has been deleted.
type VertexRange struct {
	buffer *VertexBuffer
	start  int
	count  int
}

// NewVertexRange returns a view of count vertices starting at start. An out
// of bounds request is logged and yields the empty range.
func NewVertexRange(vb *VertexBuffer, start, count int) VertexRange {
	if vb == nil || start < 0 || count < 0 || start+count > vb.count {
		logger.Error("invalid vertex range", "start", start, "count", count)
		return VertexRange{}
	}
	return VertexRange{buffer: vb, start: start, count: count}
}

// Buffer returns the underlying buffer, or nil for the empty range.
func (r VertexRange) Buffer() *VertexBuffer { return r.buffer }

// Start returns the index of the first vertex.
func (r VertexRange) Start() int { return r.start }

// Count returns the number of vertices.
func (r VertexRange) Count() int { return r.count }

// IsEmpty reports whether the range covers no vertices.
func (r VertexRange) IsEmpty() bool { return r.buffer == nil || r.count == 0 }

// CopyFrom uploads Count vertices from data into the range.
func (r VertexRange) CopyFrom(data []byte) error {
	if r.buffer == nil {
		return fmt.Errorf("copy to empty vertex range: %w", ErrOutOfRange)
	}
	return r.buffer.CopyFrom(data, r.count, r.start)
}

// CopyTo reads the range's vertices back into data.
func (r VertexRange) CopyTo(data []byte) error {
	if r.buffer == nil {
		return fmt.Errorf("copy from empty vertex range: %w", ErrOutOfRange)
	}
	return r.buffer.CopyTo(data, r.count, r.start)
}

// IndexRange is a non-owning view of consecutive indices in an IndexBuffer.
// The zero value is the empty range.
type IndexRange struct {
	buffer *IndexBuffer
	start  int
	count  int
}

// NewIndexRange returns a view of count indices starting at start. An out of
// bounds request is logged and yields the empty range.
func NewIndexRange(ib *IndexBuffer, start, count int) IndexRange {
	if ib == nil || start < 0 || count < 0 || start+count > ib.count {
		logger.Error("invalid index range", "start", start, "count", count)
		return IndexRange{}
	}
	return IndexRange{buffer: ib, start: start, count: count}
}

// Buffer returns the underlying buffer, or nil for the empty range.
func (r IndexRange) Buffer() *IndexBuffer { return r.buffer }

// Start returns the position of the first index.
func (r IndexRange) Start() int { return r.start }

// Count returns the number of indices.
func (r IndexRange) Count() int { return r.count }

// IsEmpty reports whether the range covers no indices.
func (r IndexRange) IsEmpty() bool { return r.buffer == nil || r.count == 0 }

// CopyFrom uploads Count indices from data into the range.
func (r IndexRange) CopyFrom(data []byte) error {
	if r.buffer == nil {
		return fmt.Errorf("copy to empty index range: %w", ErrOutOfRange)
	}
	return r.buffer.CopyFrom(data, r.count, r.start)
}

// CopyTo reads the range's indices back into data.
func (r IndexRange) CopyTo(data []byte) error {
	if r.buffer == nil {
		return fmt.Errorf("copy from empty index range: %w", ErrOutOfRange)
	}
	return r.buffer.CopyTo(data, r.count, r.start)
}
