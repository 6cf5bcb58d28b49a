package canvas

import "math"

// Path accumulates geometry for one stroke/fill batch. Circle returns the
// Path for further geometry; Stroke, Fill and Draw finish the batch and hand
// back the owning Context.
type Path struct {
	ctx *Context
}

// Circle appends a full circle sub-path centred at (x, y)
func (p *Path) Circle(x, y, radius float64) *Path {
	p.ctx.surface.Arc(x, y, radius, 0, 2*math.Pi, false)
	return p
}

// Stroke outlines the accumulated geometry
func (p *Path) Stroke(width float64, style string) *Context {
	s := p.ctx.surface
	s.SetLineWidth(width)
	s.SetStrokeStyle(style)
	s.Stroke()
	return p.ctx
}

// Fill paints the interior of the accumulated geometry
func (p *Path) Fill(style string) *Context {
	s := p.ctx.surface
	s.SetFillStyle(style)
	s.Fill()
	return p.ctx
}

// Draw strokes and then fills the accumulated geometry
func (p *Path) Draw(width float64, strokeStyle, fillStyle string) *Context {
	p.Stroke(width, strokeStyle)
	return p.Fill(fillStyle)
}
