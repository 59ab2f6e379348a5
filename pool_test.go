package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
)

func TestVertexPool_ReusesSlotForSameFormat(t *testing.T) {
	ctx, device := newTestContext(t, render.WithPoolGranularity(64))
	pool := ctx.VertexPool()
	assert.Equal(t, 64, pool.Granularity())

	a, err := ctx.AllocateVertices(10, colorFormat)
	require.NoError(t, err)
	b, err := ctx.AllocateVertices(20, colorFormat)
	require.NoError(t, err)

	assert.Equal(t, 1, pool.Slots())
	assert.Equal(t, 1, device.Count("CreateBuffer"))
	assert.Same(t, a.Buffer(), b.Buffer())
	assert.Equal(t, 0, a.Start())
	assert.Equal(t, 10, b.Start())
	assert.Equal(t, 20, b.Count())
}

func TestVertexPool_RoundsToGranularity(t *testing.T) {
	ctx, device := newTestContext(t, render.WithPoolGranularity(64))

	r, err := ctx.AllocateVertices(65, colorFormat)
	require.NoError(t, err)

	assert.Equal(t, 128, r.Buffer().Count())
	call, ok := device.Last("CreateBuffer")
	require.True(t, ok)
	assert.Equal(t, []any{render.TargetVertex, 128 * colorFormat.Size(), render.UsageDynamic}, call.Args)
}

func TestVertexPool_SeparatesFormats(t *testing.T) {
	ctx, _ := newTestContext(t, render.WithPoolGranularity(64))
	other := render.MustParseVertexFormat("2f:position")

	a, err := ctx.AllocateVertices(4, colorFormat)
	require.NoError(t, err)
	b, err := ctx.AllocateVertices(4, other)
	require.NoError(t, err)

	assert.NotSame(t, a.Buffer(), b.Buffer())
	assert.True(t, b.Buffer().Format().Equal(other))
	assert.Equal(t, 2, ctx.VertexPool().Slots())
}

func TestVertexPool_FullSlotAddsAnother(t *testing.T) {
	ctx, _ := newTestContext(t, render.WithPoolGranularity(64))

	_, err := ctx.AllocateVertices(60, colorFormat)
	require.NoError(t, err)
	r, err := ctx.AllocateVertices(10, colorFormat)
	require.NoError(t, err)

	assert.Equal(t, 2, ctx.VertexPool().Slots())
	assert.Equal(t, 0, r.Start())

	// The remaining room in the first slot is still used.
	r, err = ctx.AllocateVertices(4, colorFormat)
	require.NoError(t, err)
	assert.Equal(t, 60, r.Start())
}

func TestVertexPool_ResetAtFrameEnd(t *testing.T) {
	ctx, device := newTestContext(t, render.WithPoolGranularity(64))

	first, err := ctx.AllocateVertices(64, colorFormat)
	require.NoError(t, err)
	ctx.EndFrame()

	assert.Equal(t, 1, device.Count("OrphanBuffer"))

	r, err := ctx.AllocateVertices(64, colorFormat)
	require.NoError(t, err)
	assert.Same(t, first.Buffer(), r.Buffer())
	assert.Equal(t, 0, r.Start())
	assert.Equal(t, 1, ctx.VertexPool().Slots())
}

func TestVertexPool_Errors(t *testing.T) {
	ctx, device := newTestContext(t)

	r, err := ctx.AllocateVertices(0, colorFormat)
	assert.ErrorIs(t, err, render.ErrOutOfRange)
	assert.True(t, r.IsEmpty())

	device.FailAllocate = true
	r, err = ctx.AllocateVertices(3, colorFormat)
	assert.ErrorIs(t, err, render.ErrAllocationFailed)
	assert.True(t, r.IsEmpty())
	assert.Zero(t, ctx.VertexPool().Slots())
}

func TestVertexPool_DefaultGranularity(t *testing.T) {
	ctx, _ := newTestContext(t, render.WithPoolGranularity(0))
	assert.Equal(t, render.DefaultPoolGranularity, ctx.VertexPool().Granularity())
}
