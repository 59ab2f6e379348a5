package render

import "fmt"

// DefaultPoolGranularity is the vertex count pool slots are rounded up to.
const DefaultPoolGranularity = 16384

// poolSlot is one dynamic vertex buffer the pool carves ranges out of.
type poolSlot struct {
	buffer    *VertexBuffer
	available int
}

// VertexPool hands out transient vertex ranges for immediate-mode drawing.
// Ranges are valid until the next Reset, which the owning Context performs
// at every frame boundary. Callers must not keep a range across frames.
type VertexPool struct {
	ctx         *Context
	granularity int
	slots       []*poolSlot
}

// NewVertexPool creates an empty pool. Slots are sized to multiples of
// granularity vertices.
func NewVertexPool(ctx *Context, granularity int) *VertexPool {
	if granularity <= 0 {
		granularity = DefaultPoolGranularity
	}
	return &VertexPool{ctx: ctx, granularity: granularity}
}

// Granularity returns the slot size multiple in vertices.
func (p *VertexPool) Granularity() int {
	return p.granularity
}

// Allocate returns a range of count vertices of the given format. An
// existing slot with enough room is used when one exists; otherwise a new
// slot is created. On allocation failure the empty range is returned along
// with the error.
func (p *VertexPool) Allocate(count int, format VertexFormat) (VertexRange, error) {
	if count <= 0 {
		return VertexRange{}, fmt.Errorf("allocate %d vertices: %w", count, ErrOutOfRange)
	}

	var slot *poolSlot
	for _, s := range p.slots {
		if s.buffer.Format().Equal(format) && s.available >= count {
			slot = s
			break
		}
	}

	if slot == nil {
		capacity := (count + p.granularity - 1) / p.granularity * p.granularity
		vb, err := CreateVertexBuffer(p.ctx, capacity, format, UsageDynamic)
		if err != nil {
			logger.Error("vertex pool slot allocation failed", "vertices", capacity, "format", format.String(), "error", err)
			return VertexRange{}, err
		}
		slot = &poolSlot{buffer: vb, available: capacity}
		p.slots = append(p.slots, slot)
		if renderVerbose() {
			logger.Debug("vertex pool slot created", "vertices", capacity, "format", format.String(), "slots", len(p.slots))
		}
	}

	start := slot.buffer.Count() - slot.available
	slot.available -= count
	return VertexRange{buffer: slot.buffer, start: start, count: count}, nil
}

// Reset makes every slot fully available again and orphans its storage so
// the next frame's uploads do not wait on the previous frame's draws.
func (p *VertexPool) Reset() {
	for _, s := range p.slots {
		s.available = s.buffer.Count()
		s.buffer.Discard()
	}
}

// Slots returns the number of buffers the pool owns.
func (p *VertexPool) Slots() int {
	return len(p.slots)
}

// Delete releases every slot buffer.
func (p *VertexPool) Delete() {
	for _, s := range p.slots {
		s.buffer.Delete()
	}
	p.slots = nil
}
