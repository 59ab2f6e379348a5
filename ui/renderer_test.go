package ui_test

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
	"github.com/go-theft-auto/render/rendertest"
	"github.com/go-theft-auto/render/ui"
)

func newRenderer(t *testing.T) (*render.Context, *rendertest.Device, *ui.Renderer) {
	t.Helper()
	device := rendertest.NewDevice()
	ctx := render.NewContext(device, rendertest.NewWindow(640, 480), render.WithPoolGranularity(256))
	t.Cleanup(ctx.Close)

	r, err := ui.NewRenderer(ctx)
	require.NoError(t, err)
	t.Cleanup(r.Delete)
	device.Reset()
	return ctx, device, r
}

func TestNewRenderer(t *testing.T) {
	_, _, r := newRenderer(t)

	p := r.Program()
	assert.NoError(t, ui.Interface.Check(p))
	assert.True(t, p.Uniform("modelViewProjection").IsShared())
}

func TestNewRenderer_CompileFailure(t *testing.T) {
	device := rendertest.NewDevice()
	device.FailCompile = true
	ctx := render.NewContext(device, nil)
	defer ctx.Close()

	_, err := ui.NewRenderer(ctx)
	assert.ErrorIs(t, err, render.ErrCompileFailed)
}

func TestRenderer_Render(t *testing.T) {
	ctx, device, r := newRenderer(t)
	glyphs, err := render.CreateTexture(ctx, 8, 8, render.PixelR8, nil)
	require.NoError(t, err)
	defer glyphs.Delete()

	sceneShared := ctx.SharedProgramState()
	sceneState := render.DefaultRenderState()
	sceneState.Wireframe = true
	ctx.SetCurrentRenderState(sceneState)

	dl := ui.NewDrawList()
	dl.AddRect(0, 0, 100, 100, ui.RGBA(255, 0, 0, 255))
	dl.PushClipRect(ui.Rect{X1: 10, Y1: 20, X2: 110, Y2: 70})
	dl.AddImage(glyphs, 10, 20, 8, 8, ui.RGBA(255, 255, 255, 255))
	dl.PopClipRect()

	require.NoError(t, r.Render(dl))

	assert.Equal(t, 2, device.Count("DrawArrays"))
	var draws [][]any
	for _, c := range device.Calls() {
		if c.Name == "DrawArrays" {
			draws = append(draws, c.Args)
		}
	}
	assert.Equal(t, []any{render.TriangleList, 0, 6}, draws[0])
	assert.Equal(t, []any{render.TriangleList, 6, 6}, draws[1])

	scissor, ok := device.Last("SetScissor")
	require.True(t, ok)
	assert.Equal(t, image.Rect(10, 410, 110, 460), scissor.Args[0])

	p := r.Program()
	assert.Equal(t, int32(1), device.UniformInts[p.Uniform("alphaOnly").Location], "R8 textures draw alpha only")
	want := mgl32.Ortho(0, 640, 480, 0, -1, 1)
	assert.Equal(t, want[:], device.UniformValues[p.Uniform("modelViewProjection").Location])
	assert.False(t, device.Enabled[render.CapDepthTest])
	assert.True(t, device.Enabled[render.CapBlend])

	// The caller's bindings are restored.
	assert.Nil(t, ctx.CurrentProgram())
	assert.Equal(t, sceneState, ctx.CurrentRenderState())
	assert.Same(t, sceneShared, ctx.SharedProgramState())
	assert.True(t, ctx.Scissor().Empty())
	assert.False(t, device.Enabled[render.CapScissorTest])
}

func TestRenderer_EmptyList(t *testing.T) {
	_, device, r := newRenderer(t)

	require.NoError(t, r.Render(ui.NewDrawList()))
	require.NoError(t, r.Render(nil))
	assert.Zero(t, device.Total())
}

func TestRenderer_ClippedAwayCommandSkipped(t *testing.T) {
	_, device, r := newRenderer(t)

	dl := ui.NewDrawList()
	dl.PushClipRect(ui.Rect{X1: 700, Y1: 0, X2: 800, Y2: 10})
	dl.AddRect(700, 0, 10, 10, ui.RGBA(255, 255, 255, 255))
	dl.PopClipRect()

	require.NoError(t, r.Render(dl))
	assert.Zero(t, device.Count("DrawArrays"))
}
