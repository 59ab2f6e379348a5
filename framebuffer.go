package render

import (
	"fmt"
	"image"
)

// FramebufferKind distinguishes the window's framebuffer from offscreen ones.
type FramebufferKind int

const (
	FramebufferDefault FramebufferKind = iota // The window's framebuffer
	FramebufferTexture                        // Renders into a color texture
)

func (k FramebufferKind) String() string {
	switch k {
	case FramebufferDefault:
		return "default"
	case FramebufferTexture:
		return "texture"
	}
	return fmt.Sprintf("FramebufferKind(%d)", int(k))
}

// Framebuffer is a render target. The default framebuffer belongs to the
// window and is sized by it; texture framebuffers are sized by their color
// texture.
type Framebuffer struct {
	kind  FramebufferKind
	ctx   *Context
	id    uint32
	color *Texture
}

// NewTextureFramebuffer creates an offscreen target drawing into color.
func NewTextureFramebuffer(ctx *Context, color *Texture) (*Framebuffer, error) {
	if color == nil || color.id == 0 {
		return nil, fmt.Errorf("create framebuffer: no color texture: %w", ErrIncompleteFramebuffer)
	}
	id, err := ctx.device.CreateFramebuffer(color.id)
	if err != nil {
		logger.Error("framebuffer creation failed", "texture", color.id, "error", err)
		return nil, fmt.Errorf("create framebuffer: %w: %w", ErrIncompleteFramebuffer, err)
	}
	return &Framebuffer{kind: FramebufferTexture, ctx: ctx, id: id, color: color}, nil
}

// Kind returns which variant the framebuffer is.
func (f *Framebuffer) Kind() FramebufferKind { return f.kind }

// ID returns the GPU framebuffer object name; 0 for the default framebuffer.
func (f *Framebuffer) ID() uint32 { return f.id }

// ColorTexture returns the texture a texture framebuffer draws into, or nil
// for the default framebuffer.
func (f *Framebuffer) ColorTexture() *Texture { return f.color }

// Size returns the framebuffer size in pixels.
func (f *Framebuffer) Size() (width, height int) {
	switch f.kind {
	case FramebufferTexture:
		return f.color.width, f.color.height
	default:
		if f.ctx.window == nil {
			return 0, 0
		}
		return f.ctx.window.FramebufferSize()
	}
}

// Bounds returns the full drawable area.
func (f *Framebuffer) Bounds() image.Rectangle {
	w, h := f.Size()
	return image.Rect(0, 0, w, h)
}

// Delete releases a texture framebuffer. The color texture is not deleted.
// Deleting the default framebuffer is a no-op.
func (f *Framebuffer) Delete() {
	if f.kind == FramebufferDefault || f.id == 0 {
		return
	}
	if f.ctx.framebuffer == f {
		f.ctx.SetCurrentFramebuffer(nil)
	}
	f.ctx.device.DeleteFramebuffer(f.id)
	f.id = 0
}

// ReadPixels binds f and returns a copy of its color contents, top row
// first. This stalls until the GPU has finished drawing into f.
func (f *Framebuffer) ReadPixels() *image.RGBA {
	w, h := f.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img
	}
	f.ctx.SetCurrentFramebuffer(f)
	f.ctx.device.ReadPixels(img.Rect, img.Pix)
	flipRows(img.Pix, img.Stride)
	return img
}

// flipRows reverses the order of the stride-byte rows in pix.
func flipRows(pix []byte, stride int) {
	tmp := make([]byte, stride)
	rows := len(pix) / stride
	for y := 0; y < rows/2; y++ {
		top := pix[y*stride : (y+1)*stride]
		bottom := pix[(rows-1-y)*stride : (rows-y)*stride]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}
