// Command gen renders sample scenes offscreen, reads the pixels back and
// saves JPEG screenshots to doc/imgs/.
//
// Usage:
//
//	devbox shell
//	go run ./doc/gen/
package main

import (
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/render"
	"github.com/go-theft-auto/render/backend/opengl"
	"github.com/go-theft-auto/render/ui"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const vertexShader = `
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

const fragmentShader = `
#version 410 core
in vec4 Color;
out vec4 FragColor;

void main() {
    FragColor = Color;
}
`

type vertex struct {
	Position [3]float32
	Color    uint32
}

var vertexFormat = render.MustParseVertexFormat("3f:position 4b:color")

// screenshot defines a single image to capture.
type screenshot struct {
	name   string // filename without extension
	width  int
	height int
	draw   func(s *studio) error
}

// studio holds the resources shared by every screenshot.
type studio struct {
	ctx      *render.Context
	overlay  *ui.Renderer
	dl       *ui.DrawList
	scene    *render.Pass
	triangle render.PrimitiveRange
}

func run() error {
	cfg := render.DefaultConfig()
	cfg.Window.Title = "screenshot-gen"
	cfg.Window.Width, cfg.Window.Height = 800, 600
	cfg.Window.Hidden = true
	cfg.Window.Resizable = false

	window, err := opengl.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	device, err := opengl.NewDevice()
	if err != nil {
		return err
	}
	defer device.Delete()

	ctx := render.NewContext(device, window, render.WithConfig(cfg))
	defer ctx.Close()
	render.RegisterSharedUniforms(ctx)

	s, err := newStudio(ctx)
	if err != nil {
		return err
	}

	outDir := filepath.Join("doc", "imgs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	shots := buildScreenshots()
	for _, shot := range shots {
		if err := capture(s, shot, outDir); err != nil {
			return fmt.Errorf("capture %s: %w", shot.name, err)
		}
		fmt.Printf("  %s.jpg (%dx%d)\n", shot.name, shot.width, shot.height)
	}

	stats := ctx.Stats()
	slog.Info("screenshots generated",
		"count", len(shots),
		"dir", outDir,
		"programs", stats.ProgramCount,
		"textures", stats.TextureCount)
	return nil
}

func newStudio(ctx *render.Context) (*studio, error) {
	overlay, err := ui.NewRenderer(ctx)
	if err != nil {
		return nil, err
	}

	program, err := render.CreateProgramFromSource(ctx, vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}

	vb, err := render.CreateVertexBuffer(ctx, 3, vertexFormat, render.UsageStatic)
	if err != nil {
		return nil, err
	}
	err = vb.Range().CopyFrom(render.Bytes([]vertex{
		{Position: [3]float32{-0.8, -0.6, 0}, Color: ui.RGBA(230, 60, 60, 255)},
		{Position: [3]float32{0.8, -0.6, 0}, Color: ui.RGBA(60, 230, 60, 255)},
		{Position: [3]float32{0, 0.8, 0}, Color: ui.RGBA(60, 60, 230, 255)},
	}))
	if err != nil {
		return nil, err
	}

	scene := render.NewPass(program)
	scene.State.CullFace = render.CullNone

	// Resources live until the process exits.
	return &studio{
		ctx:      ctx,
		overlay:  overlay,
		dl:       ui.NewDrawList(),
		scene:    scene,
		triangle: render.NewPrimitiveRange(render.TriangleList, vb.Range()),
	}, nil
}

// capture renders shot into an offscreen target of its size and writes the
// result as JPEG.
func capture(s *studio, shot screenshot, outDir string) error {
	ctx := s.ctx

	color, err := render.CreateTexture(ctx, shot.width, shot.height, render.PixelRGBA8, nil)
	if err != nil {
		return err
	}
	defer color.Delete()
	fb, err := render.NewTextureFramebuffer(ctx, color)
	if err != nil {
		return err
	}
	defer fb.Delete()

	ctx.SetCurrentFramebuffer(fb)
	ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{0.12, 0.12, 0.14, 1}, 1, 0)
	s.dl.Clear()
	if err := shot.draw(s); err != nil {
		return err
	}
	img := fb.ReadPixels()
	ctx.EndFrame()

	path := filepath.Join(outDir, shot.name+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// drawTriangle draws the scene triangle with a perspective camera.
func (s *studio) drawTriangle(state render.RenderState, angle float32) error {
	w, h := s.ctx.CurrentFramebuffer().Size()
	shared := s.ctx.SharedProgramState()
	shared.SetModelMatrix(mgl32.HomogRotate3DY(angle))
	shared.SetViewMatrix(mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	shared.SetPerspectiveProjection(60, float32(w)/float32(h), 0.1, 100)

	s.scene.State = state
	s.scene.Apply(s.ctx)
	return s.ctx.Render(s.triangle)
}

// buildScreenshots returns every screenshot to generate.
func buildScreenshots() []screenshot {
	white := ui.RGBA(255, 255, 255, 255)
	gold := ui.RGBA(200, 170, 60, 255)

	return []screenshot{
		{
			name: "shapes", width: 400, height: 200,
			draw: func(s *studio) error {
				s.dl.AddRect(12, 12, 120, 80, ui.RGBA(60, 120, 200, 255))
				s.dl.AddRectOutline(144, 12, 120, 80, gold, 2)
				s.dl.AddTriangle(276, 92, 336, 12, 388, 92, ui.RGBA(90, 200, 90, 255))
				s.dl.AddCircle(72, 150, 36, ui.RGBA(200, 90, 90, 255), 32)
				s.dl.AddLine(144, 120, 388, 188, white, 3)
				return s.overlay.Render(s.dl)
			},
		},
		{
			name: "blending", width: 300, height: 200,
			draw: func(s *studio) error {
				s.dl.AddRect(20, 20, 160, 120, ui.RGBA(230, 60, 60, 160))
				s.dl.AddRect(80, 50, 160, 120, ui.RGBA(60, 230, 60, 160))
				s.dl.AddRect(140, 80, 140, 100, ui.RGBA(60, 60, 230, 160))
				return s.overlay.Render(s.dl)
			},
		},
		{
			name: "clipping", width: 300, height: 200,
			draw: func(s *studio) error {
				s.dl.AddRectOutline(50, 40, 200, 120, gold, 1)
				s.dl.PushClipRect(ui.Rect{X1: 50, Y1: 40, X2: 250, Y2: 160})
				for i := range 6 {
					x := float32(30 + i*50)
					s.dl.AddCircle(x, 100, 40, ui.RGBA(uint8(40*i), 120, 200, 220), 32)
				}
				s.dl.PopClipRect()
				return s.overlay.Render(s.dl)
			},
		},
		{
			name: "triangle", width: 320, height: 240,
			draw: func(s *studio) error {
				return s.drawTriangle(render.DefaultRenderState(), 0.4)
			},
		},
		{
			name: "wireframe", width: 320, height: 240,
			draw: func(s *studio) error {
				state := render.DefaultRenderState()
				state.Wireframe = true
				state.LineWidth = 2
				if err := s.drawTriangle(state, -0.4); err != nil {
					return err
				}
				s.dl.AddRect(8, 8, 96, 24, ui.RGBA(20, 20, 24, 200))
				s.dl.AddRectOutline(8, 8, 96, 24, gold, 1)
				return s.overlay.Render(s.dl)
			},
		},
	}
}
