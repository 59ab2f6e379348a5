// Example draws a spinning triangle with a 2D overlay.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell              # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/         # run this example
//
// Settings are read from an optional TOML file (-config). With hot_reload
// enabled and shader_dir pointing at example/shaders, editing a shader
// relinks it while the example runs.
package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/render"
	"github.com/go-theft-auto/render/backend/opengl"
	"github.com/go-theft-auto/render/ui"
)

//go:embed shaders
var shaders embed.FS

type sceneVertex struct {
	Position [3]float32
	Color    uint32
}

var sceneFormat = render.MustParseVertexFormat("3f:position 4b:color")

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (render.Config, error) {
	if path == "" {
		return render.DefaultConfig(), nil
	}
	return render.LoadConfig(path)
}

func run(configPath string, verbose bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	render.SetVerbose(verbose || cfg.Render.Verbose)

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

	program, watcher, err := loadSceneProgram(ctx, cfg.Render)
	if err != nil {
		return err
	}
	defer program.Delete()
	if watcher != nil {
		defer watcher.Close()
	}

	vb, ib, err := createTriangle(ctx)
	if err != nil {
		return err
	}
	defer vb.Delete()
	defer ib.Delete()

	pass := render.NewPass(program)
	pass.State.CullFace = render.CullNone
	if err := pass.SetVec4("tint", mgl32.Vec4{1, 0.9, 0.8, 1}); err != nil {
		return err
	}

	// The scene is also rendered into a small offscreen target shown by
	// the overlay.
	preview, err := render.CreateTexture(ctx, 256, 256, render.PixelRGBA8, nil)
	if err != nil {
		return err
	}
	defer preview.Delete()
	previewFB, err := render.NewTextureFramebuffer(ctx, preview)
	if err != nil {
		return err
	}
	defer previewFB.Delete()

	overlay, err := ui.NewRenderer(ctx)
	if err != nil {
		return err
	}
	defer overlay.Delete()
	dl := ui.NewDrawList()

	triangle := render.NewIndexedPrimitiveRange(render.TriangleList, vb, ib.Range(), 0)
	shared := ctx.SharedProgramState()
	shared.SetViewMatrix(mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	shared.SetCameraProperties(mgl32.Vec3{0, 0, 3}, 60, 1, 0.1, 100)

	for window.PollEvents() {
		if watcher != nil {
			watcher.Poll()
		}

		t := float32(window.Time())
		shared.SetTime(t)
		shared.SetModelMatrix(mgl32.HomogRotate3DY(t))

		drawScene := func(fb *render.Framebuffer) error {
			ctx.SetCurrentFramebuffer(fb)
			w, h := fb.Size()
			if w == 0 || h == 0 {
				return nil
			}
			// The window may have been resized since the target was bound.
			ctx.SetViewportArea(fb.Bounds())
			shared.SetPerspectiveProjection(60, float32(w)/float32(h), 0.1, 100)
			ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{0.12, 0.12, 0.14, 1}, 1, 0)
			pass.Apply(ctx)
			return ctx.Render(triangle)
		}
		if err := drawScene(previewFB); err != nil {
			return err
		}
		if err := drawScene(ctx.DefaultFramebuffer()); err != nil {
			return err
		}

		w, h := ctx.DefaultFramebuffer().Size()
		dl.Clear()
		dl.AddRect(16, 16, 280, 280, ui.RGBA(20, 20, 24, 200))
		dl.AddImage(preview, 28, 28, 256, 256, ui.RGBA(255, 255, 255, 255))
		dl.AddRectOutline(16, 16, 280, 280, ui.RGBA(200, 170, 60, 255), 2)
		dl.AddLine(0, float32(h)-1, float32(w), float32(h)-1, ui.RGBA(200, 170, 60, 255), 2)
		dl.AddCircle(float32(w)-32, 32, 12, ui.RGBA(90, 200, 90, 255), 24)
		if err := overlay.Render(dl); err != nil {
			return err
		}

		ctx.EndFrame()

		if stats := ctx.Stats(); stats.FrameCount()%300 == 0 {
			last := stats.LastFrame()
			slog.Info("frame stats",
				"fps", fmt.Sprintf("%.1f", stats.FrameRate()),
				"operations", last.Operations,
				"stateChanges", last.StateChanges,
				"triangles", last.Triangles,
				"vertexBuffers", stats.VertexBufferCount)
		}
	}
	return nil
}

// loadSceneProgram reads the scene program from disk when hot reload is
// enabled and from the embedded copy otherwise.
func loadSceneProgram(ctx *render.Context, cfg render.RenderConfig) (*render.Program, *render.ProgramWatcher, error) {
	if cfg.HotReload {
		if _, err := os.Stat(cfg.ShaderDir); err == nil {
			watcher, err := render.NewProgramWatcher(ctx, cfg.ShaderDir)
			if err != nil {
				return nil, nil, err
			}
			program, err := watcher.Load("scene.vert", "scene.frag")
			if err != nil {
				watcher.Close()
				return nil, nil, err
			}
			return program, watcher, nil
		}
		slog.Warn("shader directory not found, hot reload disabled", "dir", cfg.ShaderDir)
	}

	sub, err := fs.Sub(shaders, "shaders")
	if err != nil {
		return nil, nil, err
	}
	program, err := render.ReadProgram(ctx, sub, "scene.vert", "scene.frag")
	return program, nil, err
}

func createTriangle(ctx *render.Context) (*render.VertexBuffer, *render.IndexBuffer, error) {
	vertices := []sceneVertex{
		{Position: [3]float32{-0.8, -0.6, 0}, Color: ui.RGBA(230, 60, 60, 255)},
		{Position: [3]float32{0.8, -0.6, 0}, Color: ui.RGBA(60, 230, 60, 255)},
		{Position: [3]float32{0, 0.8, 0}, Color: ui.RGBA(60, 60, 230, 255)},
	}
	indices := []uint16{0, 1, 2}

	vb, err := render.CreateVertexBuffer(ctx, len(vertices), sceneFormat, render.UsageStatic)
	if err != nil {
		return nil, nil, err
	}
	if err := vb.Range().CopyFrom(render.Bytes(vertices)); err != nil {
		vb.Delete()
		return nil, nil, err
	}

	ib, err := render.CreateIndexBuffer(ctx, len(indices), render.IndexUint16, render.UsageStatic)
	if err != nil {
		vb.Delete()
		return nil, nil, err
	}
	if err := ib.Range().CopyFrom(render.Bytes(indices)); err != nil {
		vb.Delete()
		ib.Delete()
		return nil, nil, err
	}
	return vb, ib, nil
}
