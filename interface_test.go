package render_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
)

func TestProgramInterface_Matches(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := newColorProgram(t, ctx)

	pi := &render.ProgramInterface{}
	pi.AddUniform("tint", render.TypeVec4)
	pi.AddUniform("modelViewProjection", render.TypeMat4)
	pi.AddSampler("diffuse", render.TypeSampler2D)
	pi.AddAttribute("position", render.TypeVec3)
	pi.AddAttribute("color", render.TypeVec4)

	assert.NoError(t, pi.Check(p))
	assert.True(t, pi.Matches(p, false))
	assert.True(t, pi.MatchesFormat(colorFormat, false))
}

func TestProgramInterface_UniformTypeMismatch(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := newColorProgram(t, ctx)

	var buf bytes.Buffer
	render.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer render.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	pi := &render.ProgramInterface{}
	pi.AddUniform("tint", render.TypeVec3)

	assert.False(t, pi.Matches(p, true))
	assert.Contains(t, buf.String(), "tint")
	assert.Contains(t, buf.String(), "vec3")

	err := pi.Check(p)
	assert.ErrorIs(t, err, render.ErrInterfaceMismatch)
	assert.Contains(t, err.Error(), "uniform tint")
	assert.Contains(t, err.Error(), "vec3")
}

func TestProgramInterface_MissingEntries(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := newColorProgram(t, ctx)

	tests := []struct {
		name  string
		build func(*render.ProgramInterface)
		want  string
	}{
		{"uniform", func(pi *render.ProgramInterface) { pi.AddUniform("fog", render.TypeFloat) }, "uniform fog"},
		{"sampler", func(pi *render.ProgramInterface) { pi.AddSampler("normals", render.TypeSampler2D) }, "sampler normals"},
		{"sampler type", func(pi *render.ProgramInterface) { pi.AddSampler("diffuse", render.TypeSamplerCube) }, "sampler diffuse"},
		{"attribute", func(pi *render.ProgramInterface) { pi.AddAttribute("normal", render.TypeVec3) }, "attribute normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := &render.ProgramInterface{}
			tt.build(pi)
			err := pi.Check(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.False(t, pi.Matches(p, false))
		})
	}
}

func TestProgramInterface_CheckFormat(t *testing.T) {
	pi := &render.ProgramInterface{}
	pi.AddAttribute("position", render.TypeVec3)
	pi.AddAttribute("texcoord", render.TypeVec2)

	assert.NoError(t, pi.CheckFormat(render.MustParseVertexFormat("3f:position 2f:texcoord 4b:color")))

	err := pi.CheckFormat(render.MustParseVertexFormat("3f:position"))
	assert.ErrorIs(t, err, render.ErrInterfaceMismatch)
	assert.Contains(t, err.Error(), "texcoord")

	assert.False(t, pi.MatchesFormat(render.MustParseVertexFormat("2f:position 2f:texcoord"), false))
}
