package canvas

import "math"

// Context wraps a Surface for the lifetime of one overlay and exposes a
// chainable drawing API. Width and Height are captured at construction.
type Context struct {
	surface Surface
	Width   float64
	Height  float64
}

// NewContext binds a Context to a surface of the given size
func NewContext(s Surface, width, height int) *Context {
	return &Context{
		surface: s,
		Width:   float64(width),
		Height:  float64(height),
	}
}

// Surface returns the wrapped drawing surface
func (c *Context) Surface() Surface {
	return c.surface
}

// Clear resets the transform and wipes the whole surface
func (c *Context) Clear() *Context {
	c.ResetTransform()
	c.surface.ClearRect(0, 0, c.Width, c.Height)
	return c
}

// ResetTransform sets the identity transform
func (c *Context) ResetTransform() *Context {
	c.surface.SetTransform(1, 0, 0, 1, 0, 0)
	return c
}

// Translate moves the origin by (x, y) in the current coordinate space
func (c *Context) Translate(x, y float64) *Context {
	c.surface.Translate(x, y)
	return c
}

// Rotate turns the coordinate space clockwise by degrees
func (c *Context) Rotate(degrees float64) *Context {
	c.surface.Rotate(math.Pi * degrees / 180)
	return c
}

// Opacity sets the global alpha for subsequent drawing. Values are passed
// through as is.
func (c *Context) Opacity(opacity float64) *Context {
	c.surface.SetGlobalAlpha(opacity)
	return c
}

// Path starts a new geometry batch. An unfinished previous batch is dropped.
func (c *Context) Path() *Path {
	c.surface.BeginPath()
	return &Path{ctx: c}
}
