package render_test

import (
	"image"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
	"github.com/go-theft-auto/render/rendertest"
)

// newTriangle returns a vertex buffer holding three color vertices.
func newTriangle(t *testing.T, ctx *render.Context) *render.VertexBuffer {
	t.Helper()
	vb, err := render.CreateVertexBuffer(ctx, 3, colorFormat, render.UsageStatic)
	require.NoError(t, err)
	t.Cleanup(vb.Delete)
	require.NoError(t, vb.Range().CopyFrom(render.Bytes([]colorVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	})))
	return vb
}

func TestNewContext(t *testing.T) {
	device := rendertest.NewDevice()
	window := rendertest.NewWindow(800, 600)
	ctx := render.NewContext(device, window, render.WithDebug(true), render.WithPoolGranularity(32))
	defer ctx.Close()

	assert.Same(t, device, ctx.Device())
	assert.Equal(t, "rendertest", ctx.Capabilities().Version)
	assert.True(t, ctx.Debug())
	assert.Equal(t, 32, ctx.VertexPool().Granularity())
	assert.True(t, ctx.StateCache().Dirty())
	assert.Equal(t, render.DefaultRenderState(), ctx.CurrentRenderState())
	assert.Equal(t, image.Rect(0, 0, 800, 600), ctx.Viewport())
	assert.Equal(t, image.Rect(0, 0, 800, 600), device.Viewport)
	assert.Same(t, ctx.DefaultFramebuffer(), ctx.CurrentFramebuffer())
	assert.Equal(t, render.FramebufferDefault, ctx.CurrentFramebuffer().Kind())
	assert.Nil(t, ctx.CurrentProgram())

	assert.Panics(t, func() { render.NewContext(nil, window) })
}

func TestContext_FirstRenderForcesBaselineOnce(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	device.Reset()

	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range())))

	assert.Equal(t, 6, device.Count("SetEnabled"))
	assert.Equal(t, 2, device.Count("SetStencilFunc"))
	assert.Equal(t, 1, device.Count("SetLineWidth"))
	assert.Equal(t, 1, device.Count("DrawArrays"))
	assert.False(t, ctx.StateCache().Dirty())

	device.Reset()
	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range())))

	assert.Zero(t, device.Count("SetEnabled"))
	assert.Zero(t, device.Count("SetLineWidth"))
	assert.Equal(t, 1, device.Count("DrawArrays"))
	assert.Equal(t, 2, ctx.Stats().CurrentFrame().StateChanges)
}

func TestContext_RenderNonIndexed(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	device.Reset()

	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, render.NewVertexRange(vb, 0, 3))))

	call, ok := device.Last("DrawArrays")
	require.True(t, ok)
	assert.Equal(t, []any{render.TriangleList, 0, 3}, call.Args)
	assert.Equal(t, 2, device.Count("VertexAttribPointer"))

	pos, ok := device.Last("VertexAttribPointer")
	require.True(t, ok)
	assert.Equal(t, []any{int32(1), "color", 12, 16}, pos.Args)

	frame := ctx.Stats().CurrentFrame()
	assert.Equal(t, 1, frame.Operations)
	assert.Equal(t, 3, frame.Vertices)
	assert.Equal(t, 1, frame.Triangles)
}

func TestContext_RenderIndexed(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ib, err := render.CreateIndexBuffer(ctx, 6, render.IndexUint16, render.UsageStatic)
	require.NoError(t, err)
	defer ib.Delete()
	require.NoError(t, ib.Range().CopyFrom(render.Bytes([]uint16{0, 1, 2, 2, 1, 0})))
	ctx.SetCurrentProgram(p)
	device.Reset()

	r := render.NewIndexedPrimitiveRange(render.TriangleList, vb, render.NewIndexRange(ib, 3, 3), 0)
	require.NoError(t, ctx.Render(r))

	call, ok := device.Last("DrawElements")
	require.True(t, ok)
	assert.Equal(t, []any{render.TriangleList, 3, render.IndexUint16, 3, 0}, call.Args)
	assert.Equal(t, vb.ID(), device.BoundBuffer(render.TargetVertex))
	assert.Equal(t, ib.ID(), device.BoundBuffer(render.TargetIndex))
	assert.Zero(t, device.Count("DrawArrays"))
}

func TestContext_RenderUpdatesSharedUniforms(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)

	shared := ctx.SharedProgramState()
	shared.SetModelMatrix(mgl32.Translate3D(1, 2, 3))
	shared.SetProjectionMatrix(mgl32.Scale3D(2, 2, 2))
	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range())))

	want := mgl32.Scale3D(2, 2, 2).Mul4(mgl32.Translate3D(1, 2, 3))
	loc := p.Uniform("modelViewProjection").Location
	assert.Equal(t, want[:], device.UniformValues[loc])
}

func TestContext_RenderEmptyRange(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	device.Reset()

	err := ctx.Render(render.PrimitiveRange{Type: render.TriangleList, VertexBuffer: vb})
	assert.ErrorIs(t, err, render.ErrEmptyRange)
	err = ctx.Render(render.NewPrimitiveRange(render.TriangleList, render.VertexRange{}))
	assert.ErrorIs(t, err, render.ErrEmptyRange)

	assert.Zero(t, device.Total())
	assert.Zero(t, ctx.Stats().CurrentFrame().Operations)
}

func TestContext_RenderOutOfRange(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	device.Reset()

	err := ctx.Render(render.PrimitiveRange{Type: render.TriangleList, VertexBuffer: vb, Start: 1, Count: 3})
	assert.ErrorIs(t, err, render.ErrOutOfRange)
	assert.Zero(t, device.Count("DrawArrays"))

	vb.Delete()
	err = ctx.Render(render.PrimitiveRange{Type: render.TriangleList, VertexBuffer: vb, Count: 3})
	assert.ErrorIs(t, err, render.ErrOutOfRange)
}

func TestContext_RenderFormatMismatch(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb, err := render.CreateVertexBuffer(ctx, 3, render.MustParseVertexFormat("2f:position 4b:color"), render.UsageStatic)
	require.NoError(t, err)
	defer vb.Delete()
	ctx.SetCurrentProgram(p)
	device.Reset()

	err = ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range()))

	assert.ErrorIs(t, err, render.ErrIncompatibleFormat)
	assert.Contains(t, err.Error(), "position")
	assert.Zero(t, device.Count("DrawArrays"))
	assert.Zero(t, device.Count("VertexAttribPointer"))
}

func TestContext_RenderWithoutProgramPanics(t *testing.T) {
	ctx, _ := newTestContext(t)
	vb := newTriangle(t, ctx)

	assert.Panics(t, func() {
		_ = ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range()))
	})

	p := newColorProgram(t, ctx)
	ctx.SetCurrentProgram(p)
	assert.Panics(t, func() {
		_ = ctx.Render(render.NewPrimitiveRange(render.PrimitiveType(42), vb.Range()))
	})
}

func TestContext_DebugValidation(t *testing.T) {
	ctx, device := newTestContext(t, render.WithDebug(true))
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	r := render.NewPrimitiveRange(render.TriangleList, vb.Range())

	require.NoError(t, ctx.Render(r))
	assert.Equal(t, 1, device.Count("ValidateProgram"))

	device.FailValidate = true
	device.Reset()
	assert.ErrorIs(t, ctx.Render(r), render.ErrValidationFailed)
	assert.Zero(t, device.Count("DrawArrays"))
}

func TestContext_SetCurrentRenderStateValidates(t *testing.T) {
	ctx, _ := newTestContext(t)
	state := render.DefaultRenderState()
	state.CullFace = render.CullMode(7)

	assert.Panics(t, func() { ctx.SetCurrentRenderState(state) })
	assert.Equal(t, render.DefaultRenderState(), ctx.CurrentRenderState())
}

func TestContext_CullingInversion(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	r := render.NewPrimitiveRange(render.TriangleList, vb.Range())

	ctx.SetCullingInversion(true)
	require.NoError(t, ctx.Render(r))
	assert.Equal(t, render.CullFront, device.CullFace)

	ctx.SetCullingInversion(false)
	require.NoError(t, ctx.Render(r))
	assert.Equal(t, render.CullBack, device.CullFace)
}

// callNames lists the recorded device calls in order.
func callNames(device *rendertest.Device) []string {
	var names []string
	for _, c := range device.Calls() {
		names = append(names, c.Name)
	}
	return names
}

func TestContext_ClearRestoresWriteMasks(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	state := render.DefaultRenderState()
	state.ColorWriting = false
	state.DepthWriting = false
	ctx.SetCurrentRenderState(state)
	r := render.NewPrimitiveRange(render.TriangleList, vb.Range())
	require.NoError(t, ctx.Render(r))
	require.False(t, device.DepthMask)

	device.Reset()
	ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{0, 0, 0, 1}, 1, 0)

	assert.Equal(t, []string{"SetColorMask", "SetDepthMask", "Clear", "SetColorMask", "SetDepthMask"}, callNames(device))
	call, ok := device.Last("Clear")
	require.True(t, ok)
	assert.Equal(t, render.ClearColor|render.ClearDepth, call.Args[0])
	assert.Equal(t, [4]float32{0, 0, 0, 1}, call.Args[1])
	assert.False(t, ctx.StateCache().Dirty())
	assert.False(t, device.DepthMask)
	assert.Equal(t, [4]bool{}, device.ColorMask)

	// The cache is still accurate, so the next draw changes nothing.
	device.Reset()
	require.NoError(t, ctx.Render(r))
	assert.Zero(t, device.Count("SetColorMask"))
	assert.Zero(t, device.Count("SetDepthMask"))
	assert.Zero(t, device.Count("SetEnabled"))
}

func TestContext_ClearWithWritableMasksIsOneCall(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	ctx.SetCurrentProgram(p)
	r := render.NewPrimitiveRange(render.TriangleList, vb.Range())
	require.NoError(t, ctx.Render(r))

	device.Reset()
	ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{}, 1, 0)
	assert.Equal(t, []string{"Clear"}, callNames(device))

	device.Reset()
	require.NoError(t, ctx.Render(r))
	assert.Equal(t, 1, device.Count("DrawArrays"))
	assert.Zero(t, device.Count("SetEnabled"), "no baseline force after a clear")
}

func TestContext_ClearBeforeFirstRender(t *testing.T) {
	ctx, device := newTestContext(t)
	require.True(t, ctx.StateCache().Dirty())

	ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{}, 1, 0)

	// Without a baseline the masks are left enabled for the first Force.
	assert.Equal(t, []string{"SetColorMask", "SetDepthMask", "Clear"}, callNames(device))
	assert.True(t, device.DepthMask)
	assert.True(t, ctx.StateCache().Dirty())
}

func TestContext_ClearVariants(t *testing.T) {
	ctx, device := newTestContext(t)

	ctx.ClearColorBuffer(mgl32.Vec4{1, 1, 1, 1})
	ctx.ClearDepthBuffer(0.5)
	ctx.ClearStencilBuffer(3)
	assert.Equal(t, 3, device.Count("Clear"))
	call, _ := device.Last("Clear")
	assert.Equal(t, []any{render.ClearStencil, [4]float32{}, float32(1), int32(3)}, call.Args)

	device.Reset()
	ctx.ClearBuffers(0, mgl32.Vec4{}, 1, 0)
	assert.Zero(t, device.Total())
}

func TestContext_Scissor(t *testing.T) {
	ctx, device := newTestContext(t)
	area := image.Rect(10, 10, 100, 50)

	ctx.SetScissorArea(area)
	assert.True(t, device.Enabled[render.CapScissorTest])
	assert.Equal(t, area, device.ScissorArea)
	assert.Equal(t, area, ctx.Scissor())

	device.Reset()
	ctx.SetScissorArea(area)
	assert.Zero(t, device.Total())

	ctx.SetScissorArea(image.Rectangle{})
	assert.False(t, device.Enabled[render.CapScissorTest])
	assert.True(t, ctx.Scissor().Empty())
}

func TestContext_Textures(t *testing.T) {
	ctx, device := newTestContext(t)

	tex, err := render.CreateTexture(ctx, 4, 2, render.PixelRGBA8, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, 32, ctx.Stats().TextureSize)

	ctx.SetCurrentTexture(3, tex)
	ctx.SetCurrentTexture(3, tex)
	assert.Equal(t, 1, device.Count("BindTexture"))
	assert.Same(t, tex, ctx.CurrentTexture(3))
	assert.Equal(t, tex.ID(), device.BoundTextures[3])

	ctx.SetCurrentTexture(99, tex)
	assert.Nil(t, ctx.CurrentTexture(99))

	tex.Delete()
	assert.Nil(t, ctx.CurrentTexture(3))
	assert.Zero(t, device.BoundTextures[3])
	assert.Zero(t, device.Textures())
	assert.Zero(t, ctx.Stats().TextureCount)
}

func TestTexture_CreateErrors(t *testing.T) {
	ctx, device := newTestContext(t)

	_, err := render.CreateTexture(ctx, 0, 4, render.PixelR8, nil)
	assert.ErrorIs(t, err, render.ErrAllocationFailed)
	_, err = render.CreateTexture(ctx, 2, 2, render.PixelRGBA8, make([]byte, 4))
	assert.ErrorIs(t, err, render.ErrOutOfRange)

	device.FailAllocate = true
	_, err = render.CreateTexture(ctx, 2, 2, render.PixelR8, nil)
	assert.ErrorIs(t, err, render.ErrAllocationFailed)
}

func TestTexture_Filtering(t *testing.T) {
	ctx, device := newTestContext(t)
	tex, err := render.CreateTexture(ctx, 2, 2, render.PixelR8, nil)
	require.NoError(t, err)
	defer tex.Delete()
	assert.Equal(t, render.FilterLinear, tex.Filter())

	tex.SetFilter(render.FilterLinear)
	assert.Zero(t, device.Count("SetTextureFilter"))
	tex.SetFilter(render.FilterNearest)
	assert.Equal(t, render.FilterNearest, device.TextureFilters[tex.ID()])

	// No anisotropy support: the level stays 1 and the device is not asked.
	tex.SetMaxAnisotropy(8)
	assert.Equal(t, float32(1), tex.MaxAnisotropy())
	assert.Zero(t, device.Count("SetTextureAnisotropy"))
}

func TestTexture_AnisotropyClamped(t *testing.T) {
	device := rendertest.NewDevice()
	device.Caps.AnisotropicFiltering = true
	device.Caps.MaxAnisotropy = 16
	ctx := render.NewContext(device, nil)
	defer ctx.Close()

	tex, err := render.CreateTexture(ctx, 2, 2, render.PixelRGBA8, nil)
	require.NoError(t, err)
	defer tex.Delete()

	tex.SetMaxAnisotropy(64)
	assert.Equal(t, float32(16), tex.MaxAnisotropy())
	assert.Equal(t, float32(16), device.Anisotropy[tex.ID()])

	tex.SetMaxAnisotropy(0)
	assert.Equal(t, float32(1), tex.MaxAnisotropy())
	assert.Equal(t, 2, device.Count("SetTextureAnisotropy"))
}

func TestContext_TextureFramebuffer(t *testing.T) {
	ctx, device := newTestContext(t)
	color, err := render.CreateTexture(ctx, 128, 64, render.PixelRGBA8, nil)
	require.NoError(t, err)
	defer color.Delete()

	fb, err := render.NewTextureFramebuffer(ctx, color)
	require.NoError(t, err)
	assert.Equal(t, render.FramebufferTexture, fb.Kind())
	assert.Same(t, color, fb.ColorTexture())

	ctx.SetCurrentFramebuffer(fb)
	assert.Equal(t, fb.ID(), device.Framebuffer)
	assert.Equal(t, image.Rect(0, 0, 128, 64), ctx.Viewport())

	fb.Delete()
	assert.Same(t, ctx.DefaultFramebuffer(), ctx.CurrentFramebuffer())
	assert.Zero(t, device.Framebuffer)
	assert.Equal(t, image.Rect(0, 0, 640, 480), ctx.Viewport())
	assert.Equal(t, 1, device.Count("DeleteFramebuffer"))

	ctx.DefaultFramebuffer().Delete()
	assert.Equal(t, 1, device.Count("DeleteFramebuffer"))

	_, err = render.NewTextureFramebuffer(ctx, nil)
	assert.ErrorIs(t, err, render.ErrIncompleteFramebuffer)
	device.FailAllocate = true
	_, err = render.NewTextureFramebuffer(ctx, color)
	assert.ErrorIs(t, err, render.ErrIncompleteFramebuffer)
}

func TestContext_ViewportUpdatesSharedState(t *testing.T) {
	ctx, _ := newTestContext(t)
	render.RegisterSharedUniforms(ctx)
	const fragment = `
#version 410 core
out vec4 FragColor;
uniform float viewportWidth;
uniform float viewportHeight;
void main() {
    FragColor = vec4(viewportWidth, viewportHeight, 0.0, 1.0);
}
`
	p, err := render.CreateProgramFromSource(ctx, colorVertexShader, fragment)
	require.NoError(t, err)
	defer p.Delete()
	vb := newTriangle(t, ctx)

	ctx.SetViewportArea(image.Rect(0, 0, 320, 200))
	ctx.SetCurrentProgram(p)
	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range())))

	device := ctx.Device().(*rendertest.Device)
	assert.Equal(t, []float32{320}, device.UniformValues[p.Uniform("viewportWidth").Location])
	assert.Equal(t, []float32{200}, device.UniformValues[p.Uniform("viewportHeight").Location])
}

func TestContext_EndFrame(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	device := rendertest.NewDevice()
	window := rendertest.NewWindow(640, 480)
	ctx := render.NewContext(device, window, render.WithClock(clock))
	defer ctx.Close()

	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	tex, err := render.CreateTexture(ctx, 1, 1, render.PixelRGBA8, nil)
	require.NoError(t, err)
	defer tex.Delete()

	var order []string
	ctx.OnFrameEnd(func() { order = append(order, "first") })
	ctx.OnFrameEnd(func() { order = append(order, "second") })

	ctx.SetCurrentProgram(p)
	ctx.SetCurrentTexture(0, tex)
	require.NoError(t, ctx.Render(render.NewPrimitiveRange(render.TriangleList, vb.Range())))
	now = now.Add(20 * time.Millisecond)
	ctx.EndFrame()

	assert.Equal(t, 1, window.Swaps)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Nil(t, ctx.CurrentProgram())
	assert.Zero(t, device.Program)
	assert.Nil(t, ctx.CurrentTexture(0))
	assert.Zero(t, device.BoundBuffer(render.TargetVertex))

	stats := ctx.Stats()
	assert.Equal(t, uint64(1), stats.FrameCount())
	assert.Equal(t, 1, stats.LastFrame().Operations)
	assert.Equal(t, 1, stats.LastFrame().Triangles)
	assert.Equal(t, 20*time.Millisecond, stats.LastFrame().Duration)
	assert.InDelta(t, 50, stats.FrameRate(), 0.001)
	assert.Zero(t, stats.CurrentFrame().Operations)
}

func TestContext_Close(t *testing.T) {
	device := rendertest.NewDevice()
	ctx := render.NewContext(device, nil, render.WithPoolGranularity(8))
	_, err := ctx.AllocateVertices(4, colorFormat)
	require.NoError(t, err)
	require.Equal(t, 1, device.Buffers())

	ctx.Close()
	ctx.Close()

	assert.Zero(t, device.Buffers())
	assert.Equal(t, 1, device.Count("DeleteBuffer"))
	assert.Equal(t, image.Rectangle{}, ctx.Viewport())
}

func TestFramebuffer_ReadPixels(t *testing.T) {
	ctx, device := newTestContext(t)
	color, err := render.CreateTexture(ctx, 4, 3, render.PixelRGBA8, nil)
	require.NoError(t, err)
	defer color.Delete()
	fb, err := render.NewTextureFramebuffer(ctx, color)
	require.NoError(t, err)
	defer fb.Delete()

	ctx.SetCurrentFramebuffer(fb)
	ctx.ClearColorBuffer(mgl32.Vec4{1, 0, 0, 1})
	ctx.SetCurrentFramebuffer(nil)

	img := fb.ReadPixels()

	assert.Same(t, fb, ctx.CurrentFramebuffer())
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	call, ok := device.Last("ReadPixels")
	require.True(t, ok)
	assert.Equal(t, []any{image.Rect(0, 0, 4, 3)}, call.Args)
	r, g, b, a := img.At(3, 2).RGBA()
	assert.Equal(t, [4]uint32{0xFFFF, 0, 0, 0xFFFF}, [4]uint32{r, g, b, a})

	empty := render.NewContext(rendertest.NewDevice(), nil)
	defer empty.Close()
	assert.True(t, empty.DefaultFramebuffer().ReadPixels().Bounds().Empty())
}
