// Package ui draws immediate-mode 2D shapes through a render.Context.
//
// Shapes are collected into a DrawList each frame and submitted with a
// Renderer, which streams the vertices through the context's vertex pool.
// Coordinates are in framebuffer pixels with the origin at the top left.
package ui

import (
	"github.com/chewxy/math32"

	"github.com/go-theft-auto/render"
)

// Vertex is one corner of a UI triangle.
type Vertex struct {
	Pos      [2]float32
	TexCoord [2]float32
	Color    uint32 // 0xAABBGGRR
}

// VertexFormat describes Vertex to the render package.
var VertexFormat = render.MustParseVertexFormat("2f:position 2f:texcoord 4b:color")

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// Intersect returns the overlap of two rectangles.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{max(r.X1, o.X1), max(r.Y1, o.Y1), min(r.X2, o.X2), min(r.Y2, o.Y2)}
}

// DrawCmd is a run of consecutive triangles sharing a texture and clip.
type DrawCmd struct {
	Texture *render.Texture // nil draws untextured
	Clip    Rect
	Clipped bool // Clip applies
	First   int  // First vertex
	Count   int  // Vertex count, a multiple of 3
}

// DrawList accumulates triangles for one frame, batched by texture and
// clip rectangle.
type DrawList struct {
	Vertices []Vertex
	Commands []DrawCmd

	clipStack []Rect
	clip      Rect
	clipped   bool
	texture   *render.Texture
}

// NewDrawList returns an empty list.
func NewDrawList() *DrawList {
	return &DrawList{
		Vertices: make([]Vertex, 0, 1024),
		Commands: make([]DrawCmd, 0, 16),
	}
}

// Clear resets the list for a new frame, keeping its capacity.
func (dl *DrawList) Clear() {
	dl.Vertices = dl.Vertices[:0]
	dl.Commands = dl.Commands[:0]
	dl.clipStack = dl.clipStack[:0]
	dl.clipped = false
	dl.texture = nil
}

// PushClipRect restricts subsequent shapes to r intersected with the
// current clip.
func (dl *DrawList) PushClipRect(r Rect) {
	dl.clipStack = append(dl.clipStack, dl.clip)
	if dl.clipped {
		r = r.Intersect(dl.clip)
	}
	dl.clip = r
	dl.clipped = true
}

// PopClipRect restores the clip active before the matching PushClipRect.
func (dl *DrawList) PopClipRect() {
	n := len(dl.clipStack)
	if n == 0 {
		return
	}
	dl.clip = dl.clipStack[n-1]
	dl.clipStack = dl.clipStack[:n-1]
	dl.clipped = n > 1
}

// SetTexture sets the texture sampled by subsequent shapes; nil selects
// untextured drawing.
func (dl *DrawList) SetTexture(t *render.Texture) {
	dl.texture = t
}

// command returns the command new vertices belong to, starting a new one
// when texture or clip changed.
func (dl *DrawList) command() *DrawCmd {
	if n := len(dl.Commands); n > 0 {
		last := &dl.Commands[n-1]
		if last.Texture == dl.texture && last.Clipped == dl.clipped && (!dl.clipped || last.Clip == dl.clip) {
			return last
		}
	}
	dl.Commands = append(dl.Commands, DrawCmd{
		Texture: dl.texture,
		Clip:    dl.clip,
		Clipped: dl.clipped,
		First:   len(dl.Vertices),
	})
	return &dl.Commands[len(dl.Commands)-1]
}

func (dl *DrawList) addTriangles(verts ...Vertex) {
	cmd := dl.command()
	dl.Vertices = append(dl.Vertices, verts...)
	cmd.Count += len(verts)
}

func (dl *DrawList) addQuad(a, b, c, d Vertex) {
	dl.addTriangles(a, b, c, a, c, d)
}

func visible(color uint32) bool { return color&0xFF000000 != 0 }

// AddRect draws a filled rectangle.
func (dl *DrawList) AddRect(x, y, w, h float32, color uint32) {
	if !visible(color) || w <= 0 || h <= 0 {
		return
	}
	dl.addQuad(
		Vertex{Pos: [2]float32{x, y}, Color: color},
		Vertex{Pos: [2]float32{x + w, y}, Color: color},
		Vertex{Pos: [2]float32{x + w, y + h}, Color: color},
		Vertex{Pos: [2]float32{x, y + h}, Color: color},
	)
}

// AddRectOutline draws the border of a rectangle.
func (dl *DrawList) AddRectOutline(x, y, w, h float32, color uint32, thickness float32) {
	if !visible(color) {
		return
	}
	dl.AddRect(x, y, w, thickness, color)
	dl.AddRect(x, y+h-thickness, w, thickness, color)
	dl.AddRect(x, y+thickness, thickness, h-2*thickness, color)
	dl.AddRect(x+w-thickness, y+thickness, thickness, h-2*thickness, color)
}

// AddLine draws a line between two points as a quad of the given
// thickness.
func (dl *DrawList) AddLine(x1, y1, x2, y2 float32, color uint32, thickness float32) {
	if !visible(color) {
		return
	}
	dx, dy := x2-x1, y2-y1
	length := math32.Hypot(dx, dy)
	if length == 0 {
		return
	}

	// Half-thickness normal.
	nx := -dy / length * thickness * 0.5
	ny := dx / length * thickness * 0.5

	dl.addQuad(
		Vertex{Pos: [2]float32{x1 + nx, y1 + ny}, Color: color},
		Vertex{Pos: [2]float32{x2 + nx, y2 + ny}, Color: color},
		Vertex{Pos: [2]float32{x2 - nx, y2 - ny}, Color: color},
		Vertex{Pos: [2]float32{x1 - nx, y1 - ny}, Color: color},
	)
}

// AddTriangle draws a filled triangle.
func (dl *DrawList) AddTriangle(x1, y1, x2, y2, x3, y3 float32, color uint32) {
	if !visible(color) {
		return
	}
	dl.addTriangles(
		Vertex{Pos: [2]float32{x1, y1}, Color: color},
		Vertex{Pos: [2]float32{x2, y2}, Color: color},
		Vertex{Pos: [2]float32{x3, y3}, Color: color},
	)
}

// AddCircle draws a filled circle approximated by segments triangles.
func (dl *DrawList) AddCircle(cx, cy, radius float32, color uint32, segments int) {
	if !visible(color) || radius <= 0 {
		return
	}
	segments = max(segments, 3)
	step := 2 * math32.Pi / float32(segments)
	px, py := cx+radius, cy
	for i := 1; i <= segments; i++ {
		s, c := math32.Sincos(step * float32(i))
		x, y := cx+radius*c, cy+radius*s
		dl.addTriangles(
			Vertex{Pos: [2]float32{cx, cy}, Color: color},
			Vertex{Pos: [2]float32{px, py}, Color: color},
			Vertex{Pos: [2]float32{x, y}, Color: color},
		)
		px, py = x, y
	}
}

// AddImage draws t stretched over a rectangle, tinted by color.
func (dl *DrawList) AddImage(t *render.Texture, x, y, w, h float32, color uint32) {
	if !visible(color) || w <= 0 || h <= 0 {
		return
	}
	prev := dl.texture
	dl.SetTexture(t)
	dl.addQuad(
		Vertex{Pos: [2]float32{x, y}, TexCoord: [2]float32{0, 0}, Color: color},
		Vertex{Pos: [2]float32{x + w, y}, TexCoord: [2]float32{1, 0}, Color: color},
		Vertex{Pos: [2]float32{x + w, y + h}, TexCoord: [2]float32{1, 1}, Color: color},
		Vertex{Pos: [2]float32{x, y + h}, TexCoord: [2]float32{0, 1}, Color: color},
	)
	dl.SetTexture(prev)
}

// RGBA packs a color into the Vertex color layout.
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}
