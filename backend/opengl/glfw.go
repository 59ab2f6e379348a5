package opengl

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/render"
)

// Window is a GLFW window with an OpenGL 4.1 core context.
// GLFW requires NewWindow and every Window method to run on the main thread;
// call runtime.LockOSThread from an init function.
type Window struct {
	window *glfw.Window
}

// NewWindow initializes GLFW, opens a window configured by cfg and makes its
// context current.
func NewWindow(cfg render.WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, cfg.Samples)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)
	visible := glfw.True
	if cfg.Hidden {
		visible = glfw.False
	}
	glfw.WindowHint(glfw.Visible, visible)

	w, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	w.MakeContextCurrent()
	glfw.SwapInterval(cfg.SwapInterval)

	return &Window{window: w}, nil
}

// GLFW returns the underlying GLFW window for input handling.
func (w *Window) GLFW() *glfw.Window { return w.window }

// FramebufferSize implements render.Window.
func (w *Window) FramebufferSize() (int, int) { return w.window.GetFramebufferSize() }

// SetSwapInterval implements render.Window.
func (w *Window) SetSwapInterval(interval int) { glfw.SwapInterval(interval) }

// SwapBuffers implements render.Window.
func (w *Window) SwapBuffers() { w.window.SwapBuffers() }

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.window.ShouldClose() }

// PollEvents processes pending window events and reports whether the window
// should stay open. Escape requests closing.
func (w *Window) PollEvents() bool {
	glfw.PollEvents()
	if w.window.GetKey(glfw.KeyEscape) == glfw.Press {
		w.window.SetShouldClose(true)
	}
	return !w.window.ShouldClose()
}

// Time returns seconds since GLFW was initialized.
func (w *Window) Time() float64 { return glfw.GetTime() }

// ExtensionSupported reports whether the current context supports the named
// GL extension.
func (w *Window) ExtensionSupported(name string) bool { return glfw.ExtensionSupported(name) }

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}

var _ render.Window = (*Window)(nil)
