package rendertest

import "github.com/go-theft-auto/render"

// Window is a fake render.Window with a fixed framebuffer size.
type Window struct {
	Width, Height int
	Interval      int
	Swaps         int
}

// NewWindow returns a window of the given size.
func NewWindow(width, height int) *Window {
	return &Window{Width: width, Height: height}
}

// FramebufferSize implements render.Window.
func (w *Window) FramebufferSize() (int, int) { return w.Width, w.Height }

// SetSwapInterval implements render.Window.
func (w *Window) SetSwapInterval(interval int) { w.Interval = interval }

// SwapBuffers implements render.Window.
func (w *Window) SwapBuffers() { w.Swaps++ }

var _ render.Window = (*Window)(nil)
