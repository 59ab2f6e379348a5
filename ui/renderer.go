package ui

import (
	"fmt"
	"image"

	"github.com/go-theft-auto/render"
)

const vertexShaderSource = `
#version 410 core
in vec2 position;
in vec2 texcoord;
in vec4 color;

out vec2 TexCoord;
out vec4 Color;

uniform mat4 modelViewProjection;

void main() {
    gl_Position = modelViewProjection * vec4(position, 0.0, 1.0);
    TexCoord = texcoord;
    Color = color;
}
`

// Alpha-only textures carry coverage in the red channel and take their
// color from the vertex; RGBA textures are modulated by it.
const fragmentShaderSource = `
#version 410 core
in vec2 TexCoord;
in vec4 Color;

out vec4 FragColor;

uniform sampler2D tex;
uniform int alphaOnly;

void main() {
    vec4 texColor = texture(tex, TexCoord);
    if (alphaOnly != 0) {
        FragColor = vec4(Color.rgb, Color.a * texColor.r);
    } else {
        FragColor = texColor * Color;
    }
}
`

// Interface is what the UI program must expose.
var Interface = func() *render.ProgramInterface {
	pi := &render.ProgramInterface{}
	pi.AddAttribute("position", render.TypeVec2)
	pi.AddAttribute("texcoord", render.TypeVec2)
	pi.AddAttribute("color", render.TypeVec4)
	pi.AddUniform("modelViewProjection", render.TypeMat4)
	pi.AddUniform("alphaOnly", render.TypeInt)
	pi.AddSampler("tex", render.TypeSampler2D)
	return pi
}()

// Renderer submits DrawLists to a render.Context.
type Renderer struct {
	ctx       *render.Context
	program   *render.Program
	sampler   *render.Sampler
	alphaOnly *render.Uniform
	white     *render.Texture
	shared    *render.SharedProgramState
	state     render.RenderState
}

// NewRenderer compiles the UI program and creates its resources.
func NewRenderer(ctx *render.Context) (*Renderer, error) {
	ctx.CreateSharedUniform("modelViewProjection", render.TypeMat4, render.SharedModelViewProjection)

	program, err := render.CreateProgramFromSource(ctx, vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create ui program: %w", err)
	}
	if err := Interface.Check(program); err != nil {
		program.Delete()
		return nil, fmt.Errorf("ui program: %w", err)
	}
	if err := Interface.CheckFormat(VertexFormat); err != nil {
		program.Delete()
		return nil, fmt.Errorf("ui vertex format: %w", err)
	}

	white, err := render.CreateTexture(ctx, 1, 1, render.PixelRGBA8, []byte{255, 255, 255, 255})
	if err != nil {
		program.Delete()
		return nil, fmt.Errorf("failed to create ui texture: %w", err)
	}

	state := render.DefaultRenderState()
	state.DepthTesting = false
	state.DepthWriting = false
	state.CullFace = render.CullNone
	state.SrcFactor = render.BlendSrcAlpha
	state.DstFactor = render.BlendOneMinusSrcAlpha

	return &Renderer{
		ctx:       ctx,
		program:   program,
		sampler:   program.Sampler("tex"),
		alphaOnly: program.Uniform("alphaOnly"),
		white:     white,
		shared:    render.NewSharedProgramState(),
		state:     state,
	}, nil
}

// Program returns the UI program.
func (r *Renderer) Program() *render.Program { return r.program }

// Render draws dl over the current framebuffer. The context's program,
// render state, scissor and shared program state are restored afterwards.
func (r *Renderer) Render(dl *DrawList) error {
	if dl == nil || len(dl.Vertices) == 0 {
		return nil
	}
	ctx := r.ctx

	prevProgram := ctx.CurrentProgram()
	prevState := ctx.CurrentRenderState()
	prevShared := ctx.SharedProgramState()
	prevScissor := ctx.Scissor()
	defer func() {
		ctx.SetScissorArea(prevScissor)
		ctx.SetSharedProgramState(prevShared)
		ctx.SetCurrentRenderState(prevState)
		ctx.SetCurrentProgram(prevProgram)
	}()

	viewport := ctx.Viewport()
	r.shared.SetOrthoProjection(float32(viewport.Dx()), float32(viewport.Dy()))
	ctx.SetSharedProgramState(r.shared)
	ctx.SetCurrentRenderState(r.state)
	ctx.SetCurrentProgram(r.program)

	vr, err := ctx.AllocateVertices(len(dl.Vertices), VertexFormat)
	if err != nil {
		return fmt.Errorf("ui vertices: %w", err)
	}
	if err := vr.CopyFrom(render.Bytes(dl.Vertices)); err != nil {
		return fmt.Errorf("ui vertices: %w", err)
	}

	for _, cmd := range dl.Commands {
		if cmd.Count == 0 {
			continue
		}
		if cmd.Clipped {
			area := scissorArea(cmd.Clip, viewport)
			if area.Empty() {
				continue
			}
			ctx.SetScissorArea(area)
		} else {
			ctx.SetScissorArea(image.Rectangle{})
		}

		tex := cmd.Texture
		if tex == nil {
			tex = r.white
		}
		ctx.SetCurrentTexture(r.sampler.Unit(), tex)
		if tex.Format() == render.PixelR8 {
			r.alphaOnly.SetInt(1)
		} else {
			r.alphaOnly.SetInt(0)
		}

		err := ctx.Render(render.PrimitiveRange{
			Type:         render.TriangleList,
			VertexBuffer: vr.Buffer(),
			Start:        vr.Start() + cmd.First,
			Count:        cmd.Count,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// scissorArea converts a top-left origin clip rectangle into a bottom-left
// origin scissor area within viewport.
func scissorArea(clip Rect, viewport image.Rectangle) image.Rectangle {
	h := viewport.Dy()
	area := image.Rect(
		int(clip.X1), h-int(clip.Y2),
		int(clip.X2), h-int(clip.Y1),
	).Add(viewport.Min)
	return area.Intersect(viewport)
}

// Delete releases the renderer's program and texture.
func (r *Renderer) Delete() {
	r.program.Delete()
	r.white.Delete()
}
