package render_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-theft-auto/render"
)

func TestStats_PrimitiveCounts(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb, err := render.CreateVertexBuffer(ctx, 12, colorFormat, render.UsageStatic)
	if err != nil {
		t.Fatal(err)
	}
	defer vb.Delete()
	ctx.SetCurrentProgram(p)

	draws := []struct {
		mode  render.PrimitiveType
		count int
	}{
		{render.PointList, 5},
		{render.LineList, 6},
		{render.LineStrip, 4},
		{render.LineLoop, 4},
		{render.TriangleList, 12},
		{render.TriangleStrip, 6},
		{render.TriangleFan, 5},
	}
	for _, d := range draws {
		if err := ctx.Render(render.NewPrimitiveRange(d.mode, render.NewVertexRange(vb, 0, d.count))); err != nil {
			t.Fatalf("%s: %v", d.mode, err)
		}
	}

	f := ctx.Stats().CurrentFrame()
	assert.Equal(t, 7, f.Operations)
	assert.Equal(t, 42, f.Vertices)
	assert.Equal(t, 5, f.Points)
	assert.Equal(t, 3+3+4, f.Lines)
	assert.Equal(t, 4+4+3, f.Triangles)
}

func TestStats_FrameHistory(t *testing.T) {
	now := time.Unix(100, 0)
	stats := render.NewStats(func() time.Time { return now })
	assert.Zero(t, stats.FrameRate())
	assert.Equal(t, render.Frame{}, stats.LastFrame())

	for range 100 {
		now = now.Add(10 * time.Millisecond)
		stats.AddFrame()
	}

	assert.Equal(t, uint64(100), stats.FrameCount())
	assert.Equal(t, 10*time.Millisecond, stats.LastFrame().Duration)
	assert.InDelta(t, 100, stats.FrameRate(), 0.001)
}
