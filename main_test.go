package render_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/go-theft-auto/render"
	"github.com/go-theft-auto/render/rendertest"
)

func TestMain(m *testing.M) {
	if os.Getenv("RENDER_TEST_LOG") == "" {
		render.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	os.Exit(m.Run())
}

// newTestContext returns a context over a fresh recording device with a
// 640x480 window. Calls made while creating the context are forgotten.
func newTestContext(t *testing.T, opts ...render.ContextOption) (*render.Context, *rendertest.Device) {
	t.Helper()
	device := rendertest.NewDevice()
	ctx := render.NewContext(device, rendertest.NewWindow(640, 480), opts...)
	t.Cleanup(ctx.Close)
	device.Reset()
	return ctx, device
}

const colorVertexShader = `
#version 410 core
in vec3 position;
in vec4 color;

out vec4 Color;

uniform mat4 modelViewProjection;

void main() {
    gl_Position = modelViewProjection * vec4(position, 1.0);
    Color = color;
}
`

const colorFragmentShader = `
#version 410 core
in vec4 Color;

out vec4 FragColor;

uniform vec4 tint;
uniform float intensity;
uniform sampler2D diffuse;
uniform sampler2D detail;

void main() {
    FragColor = Color * tint * intensity * texture(diffuse, vec2(0.0)) * texture(detail, vec2(0.0));
}
`

var colorFormat = render.MustParseVertexFormat("3f:position 4b:color")

type colorVertex struct {
	Position [3]float32
	Color    uint32
}

// newColorProgram links the color program on ctx with the default shared
// uniforms registered.
func newColorProgram(t *testing.T, ctx *render.Context) *render.Program {
	t.Helper()
	render.RegisterSharedUniforms(ctx)
	p, err := render.CreateProgramFromSource(ctx, colorVertexShader, colorFragmentShader)
	if err != nil {
		t.Fatalf("CreateProgramFromSource: %v", err)
	}
	t.Cleanup(p.Delete)
	return p
}
