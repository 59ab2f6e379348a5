package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
)

func TestPass_Apply(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	diffuse, err := render.CreateTexture(ctx, 1, 1, render.PixelRGBA8, nil)
	require.NoError(t, err)
	defer diffuse.Delete()
	detail, err := render.CreateTexture(ctx, 1, 1, render.PixelR8, nil)
	require.NoError(t, err)
	defer detail.Delete()

	pass := render.NewPass(p)
	pass.State.Wireframe = true
	require.NoError(t, pass.SetVec4("tint", mgl32.Vec4{1, 0.5, 0.25, 1}))
	require.NoError(t, pass.SetFloat("intensity", 2))
	require.NoError(t, pass.SetSamplerTexture("diffuse", diffuse))
	require.NoError(t, pass.SetSamplerTexture("detail", detail))
	assert.Same(t, detail, pass.SamplerTexture("detail"))
	assert.Same(t, p, pass.Program())

	pass.Apply(ctx)

	assert.Same(t, p, ctx.CurrentProgram())
	assert.True(t, ctx.CurrentRenderState().Wireframe)
	assert.Same(t, diffuse, ctx.CurrentTexture(p.Sampler("diffuse").Unit()))
	assert.Same(t, detail, ctx.CurrentTexture(p.Sampler("detail").Unit()))
	assert.Equal(t, []float32{1, 0.5, 0.25, 1}, device.UniformValues[p.Uniform("tint").Location])
	assert.Equal(t, []float32{2}, device.UniformValues[p.Uniform("intensity").Location])
}

func TestPass_RejectsInvalidValues(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := newColorProgram(t, ctx)
	pass := render.NewPass(p)

	assert.ErrorIs(t, pass.SetVec3("tint", mgl32.Vec3{}), render.ErrInterfaceMismatch)
	assert.ErrorIs(t, pass.SetInt("missing", 1), render.ErrInterfaceMismatch)
	assert.ErrorIs(t, pass.SetMat4("modelViewProjection", mgl32.Ident4()), render.ErrInterfaceMismatch)
	assert.ErrorIs(t, pass.SetSamplerTexture("normals", nil), render.ErrInterfaceMismatch)
	assert.ErrorIs(t, pass.SetVec2("tint", mgl32.Vec2{}), render.ErrInterfaceMismatch)
	assert.ErrorIs(t, pass.SetMat3("tint", mgl32.Ident3()), render.ErrInterfaceMismatch)
}

func TestPass_SwitchingPassesDiffsState(t *testing.T) {
	ctx, device := newTestContext(t)
	p := newColorProgram(t, ctx)
	vb := newTriangle(t, ctx)
	r := render.NewPrimitiveRange(render.TriangleList, vb.Range())

	opaque := render.NewPass(p)
	blended := render.NewPass(p)
	blended.State.SrcFactor = render.BlendSrcAlpha
	blended.State.DstFactor = render.BlendOneMinusSrcAlpha
	blended.State.DepthWriting = false

	opaque.Apply(ctx)
	require.NoError(t, ctx.Render(r))
	device.Reset()

	blended.Apply(ctx)
	require.NoError(t, ctx.Render(r))

	assert.Equal(t, 1, device.Count("SetBlendFunc"))
	assert.Equal(t, 1, device.Count("SetDepthMask"))
	assert.Equal(t, 1, device.Count("SetEnabled"), "only blending toggles: %v", device.Calls())
	assert.Zero(t, device.Count("UseProgram"), "same program stays bound")
}
