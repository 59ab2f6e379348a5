package render

import "fmt"

// Texture is a 2D texture owned by a Context.
type Texture struct {
	ctx        *Context
	id         uint32
	width      int
	height     int
	format     PixelFormat
	filter     FilterMode
	anisotropy float32
}

// CreateTexture uploads a width by height image. pixels may be nil for an
// uninitialized texture; otherwise it must hold exactly one image of format.
func CreateTexture(ctx *Context, width, height int, format PixelFormat, pixels []byte) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("create texture: invalid size %dx%d: %w", width, height, ErrAllocationFailed)
	}
	size := width * height * format.Size()
	if pixels != nil && len(pixels) != size {
		return nil, fmt.Errorf("create texture: %d bytes given for %dx%d image of %d: %w",
			len(pixels), width, height, size, ErrOutOfRange)
	}

	id, err := ctx.device.CreateTexture(width, height, format, pixels)
	if err != nil {
		logger.Error("texture creation failed", "width", width, "height", height, "error", err)
		return nil, fmt.Errorf("create texture: %w: %w", ErrAllocationFailed, err)
	}
	ctx.stats.addTexture(size)

	return &Texture{
		ctx:        ctx,
		id:         id,
		width:      width,
		height:     height,
		format:     format,
		filter:     FilterLinear,
		anisotropy: 1,
	}, nil
}

// ID returns the GPU texture object name.
func (t *Texture) ID() uint32 { return t.id }

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the texel layout.
func (t *Texture) Format() PixelFormat { return t.format }

// Size returns the storage size in bytes.
func (t *Texture) Size() int { return t.width * t.height * t.format.Size() }

// Filter returns the sampling filter.
func (t *Texture) Filter() FilterMode { return t.filter }

// SetFilter changes the sampling filter.
func (t *Texture) SetFilter(filter FilterMode) {
	if t.id == 0 || filter == t.filter {
		return
	}
	t.ctx.device.SetTextureFilter(t.id, filter)
	t.filter = filter
}

// MaxAnisotropy returns the anisotropy level in effect.
func (t *Texture) MaxAnisotropy() float32 { return t.anisotropy }

// SetMaxAnisotropy sets the anisotropic filtering level, clamped to what the
// driver supports. Without anisotropic filtering support the level stays 1.
func (t *Texture) SetMaxAnisotropy(level float32) {
	if t.id == 0 {
		return
	}
	caps := t.ctx.caps
	if !caps.AnisotropicFiltering {
		if level > 1 && renderVerbose() {
			logger.Debug("anisotropic filtering unsupported, clamping to 1", "texture", t.id, "requested", level)
		}
		t.anisotropy = 1
		return
	}

	level = max(1, min(level, caps.MaxAnisotropy))
	if level == t.anisotropy {
		return
	}
	t.ctx.device.SetTextureAnisotropy(t.id, level)
	t.anisotropy = level
}

// Delete releases the texture, unbinding it from any unit first. Calling
// Delete twice is a no-op.
func (t *Texture) Delete() {
	if t.id == 0 {
		return
	}
	for unit, bound := range t.ctx.textures {
		if bound == t {
			t.ctx.SetCurrentTexture(unit, nil)
		}
	}
	t.ctx.device.DeleteTexture(t.id)
	t.ctx.stats.removeTexture(t.Size())
	t.id = 0
}
